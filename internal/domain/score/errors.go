package score

import (
	"errors"
	"fmt"
)

// Kind classifies a scoring failure so callers can branch without string matching.
type Kind int

// Failure kinds produced by the scoring packages.
const (
	KindValidation Kind = iota + 1
	KindMissingBaseline
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMissingBaseline:
		return "missing_baseline"
	default:
		return "unknown"
	}
}

// Sentinel kinds. errors.Is(err, ErrValidation) holds for every *Error of that kind.
var (
	ErrValidation      = errors.New("validation error")
	ErrMissingBaseline = errors.New("missing baseline")
)

// Range descriptions used in validation messages.
const (
	RangeUnit        = "between 0.0 and 1.0"
	RangeNonNegative = "a non-negative finite number"
)

// Error is the single error type returned by score constructors, calculators
// and the engine. It names the offending field, its value and the legal range.
type Error struct {
	Kind   Kind
	Field  string
	Value  any
	Range  string
	Detail string
}

// Error implements error.
func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingBaseline:
		if e.Detail != "" {
			return fmt.Sprintf("missing baseline %s: %s", e.Field, e.Detail)
		}
		return "missing baseline " + e.Field
	default:
		msg := fmt.Sprintf("%s must be %s, got %v", e.Field, e.Range, e.Value)
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		return msg
	}
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrMissingBaseline:
		return e.Kind == KindMissingBaseline
	}
	return false
}

// Invalid builds a validation error for field.
func Invalid(field string, value any, legal string) *Error {
	return &Error{Kind: KindValidation, Field: field, Value: value, Range: legal}
}

// MissingBaseline builds a missing-baseline error for field.
func MissingBaseline(field, detail string) *Error {
	return &Error{Kind: KindMissingBaseline, Field: field, Detail: detail}
}

// KindOf extracts the failure kind from err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsMissingBaseline reports whether err is a missing-baseline failure.
func IsMissingBaseline(err error) bool { return errors.Is(err, ErrMissingBaseline) }
