package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/okian/flps/internal/domain/score"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// SpecBaseline holds the spec/role averages mechanical inputs are normalized against.
type SpecBaseline struct {
	DeathsPerAttempt   float64
	AvoidableDamagePct float64
}

// RaiderInput is everything the engine needs to score one raider for one item.
type RaiderInput struct {
	ID      string `validate:"required"`
	Name    string `validate:"required"`
	GuildID string `validate:"required"`
	Role    Role   `validate:"oneof=dps tank healer"`

	// AttendancePercent is a whole percentage, 0-100.
	AttendancePercent int `validate:"gte=0,lte=100"`
	// AttendanceFraction is the exact attended share of raids, 0-1. When set it
	// takes precedence over AttendancePercent.
	AttendanceFraction *float64 `validate:"omitempty,gte=0,lte=1"`

	DeathsPerAttempt   float64 `validate:"gte=0"`
	AvoidableDamagePct float64 `validate:"gte=0,lte=100"`
	// Baseline is nil when no spec average is known for the raider.
	Baseline *SpecBaseline

	VaultSlots          int     `validate:"gte=0"`
	CrestUsageRatio     float64 `validate:"gte=0,lte=1"`
	HeroicBossesCleared int     `validate:"gte=0"`

	TierPiecesOwned    int `validate:"gte=0"`
	SimulatedGain      float64
	SpecBaselineOutput float64

	// ActivityScore feeds the activity eligibility threshold, 0-1.
	ActivityScore float64 `validate:"gte=0,lte=1"`

	RecentAwards []LootAward
	Bans         []LootBan
}

// Validate checks field domains. Every failure is a score validation error;
// several failures are joined.
func (in *RaiderInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate raider input: %w", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, score.Invalid(fe.Field(), fe.Value(), legalRange(fe)))
	}
	return errors.Join(errs...)
}

func legalRange(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "present"
	case "gte":
		return "at least " + fe.Param()
	case "lte":
		return "at most " + fe.Param()
	case "oneof":
		return "one of " + fe.Param()
	default:
		return fe.Tag() + " " + fe.Param()
	}
}
