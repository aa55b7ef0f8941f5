// Package score defines the validated scalar types the FLPS model is built from.
//
// Every type is a struct around an unexported float so the NewX constructor is
// the only way to obtain a non-zero instance. Constructors reject out-of-range
// input and never clamp; only the composite calculators clamp their sums.
package score

import "math"

func unit(field string, v float64) (float64, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, Invalid(field, v, RangeUnit)
	}
	return v, nil
}

func nonNegative(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, Invalid(field, v, RangeNonNegative)
	}
	return v, nil
}

// Clamp01 bounds v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// AttendanceCommitment is the ACS input to the merit score.
type AttendanceCommitment struct{ v float64 }

// NewAttendanceCommitment validates v in [0, 1].
func NewAttendanceCommitment(v float64) (AttendanceCommitment, error) {
	v, err := unit("attendance commitment score", v)
	return AttendanceCommitment{v}, err
}

// Value returns the underlying score.
func (s AttendanceCommitment) Value() float64 { return s.v }

// MechanicalAdherence is the MAS input to the merit score.
type MechanicalAdherence struct{ v float64 }

// NewMechanicalAdherence validates v in [0, 1].
func NewMechanicalAdherence(v float64) (MechanicalAdherence, error) {
	v, err := unit("mechanical adherence score", v)
	return MechanicalAdherence{v}, err
}

// Value returns the underlying score.
func (s MechanicalAdherence) Value() float64 { return s.v }

// ExternalPreparation is the EPS input to the merit score.
type ExternalPreparation struct{ v float64 }

// NewExternalPreparation validates v in [0, 1].
func NewExternalPreparation(v float64) (ExternalPreparation, error) {
	v, err := unit("external preparation score", v)
	return ExternalPreparation{v}, err
}

// Value returns the underlying score.
func (s ExternalPreparation) Value() float64 { return s.v }

// RaiderMerit is the RMS composite.
type RaiderMerit struct{ v float64 }

// NewRaiderMerit validates v in [0, 1].
func NewRaiderMerit(v float64) (RaiderMerit, error) {
	v, err := unit("raider merit score", v)
	return RaiderMerit{v}, err
}

// Value returns the underlying score.
func (s RaiderMerit) Value() float64 { return s.v }

// UpgradeValue is the UV contribution to the item priority index.
type UpgradeValue struct{ v float64 }

// NewUpgradeValue validates v as a non-negative finite number.
func NewUpgradeValue(v float64) (UpgradeValue, error) {
	v, err := nonNegative("upgrade value", v)
	return UpgradeValue{v}, err
}

// Value returns the underlying score.
func (s UpgradeValue) Value() float64 { return s.v }

// TierBonus is the TB contribution to the item priority index. It may exceed 1.
type TierBonus struct{ v float64 }

// NewTierBonus validates v as a non-negative finite number.
func NewTierBonus(v float64) (TierBonus, error) {
	v, err := nonNegative("tier bonus", v)
	return TierBonus{v}, err
}

// Value returns the underlying score.
func (s TierBonus) Value() float64 { return s.v }

// RoleMultiplier is the RM contribution to the item priority index. It may exceed 1.
type RoleMultiplier struct{ v float64 }

// NewRoleMultiplier validates v as a non-negative finite number.
func NewRoleMultiplier(v float64) (RoleMultiplier, error) {
	v, err := nonNegative("role multiplier", v)
	return RoleMultiplier{v}, err
}

// Value returns the underlying score.
func (s RoleMultiplier) Value() float64 { return s.v }

// ItemPriority is the IPI composite.
type ItemPriority struct{ v float64 }

// NewItemPriority validates v in [0, 1].
func NewItemPriority(v float64) (ItemPriority, error) {
	v, err := unit("item priority index", v)
	return ItemPriority{v}, err
}

// Value returns the underlying score.
func (s ItemPriority) Value() float64 { return s.v }

// RecencyDecay is the RDF multiplier; 1.0 means no decay.
type RecencyDecay struct{ v float64 }

// NewRecencyDecay validates v in [0, 1].
func NewRecencyDecay(v float64) (RecencyDecay, error) {
	v, err := unit("recency decay factor", v)
	return RecencyDecay{v}, err
}

// NoDecay is the factor for a raider without recent awards.
func NoDecay() RecencyDecay { return RecencyDecay{1} }

// Value returns the underlying score.
func (s RecencyDecay) Value() float64 { return s.v }

// Flps is the final loot priority score.
type Flps struct{ v float64 }

// NewFlps validates v in [0, 1].
func NewFlps(v float64) (Flps, error) {
	v, err := unit("FLPS score", v)
	return Flps{v}, err
}

// Combine multiplies the three composites into the final score.
// With all inputs in [0, 1] the product is already in range; the clamp only
// guards against rounding above 1.
func Combine(rms RaiderMerit, ipi ItemPriority, rdf RecencyDecay) Flps {
	return Flps{Clamp01(rms.v * ipi.v * rdf.v)}
}

// Value returns the underlying score.
func (s Flps) Value() float64 { return s.v }
