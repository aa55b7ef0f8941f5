package model

import "github.com/okian/flps/internal/domain/score"

// FlpsBreakdown is the engine output for one raider. It is a plain value; a
// fresh one is produced on every evaluation.
type FlpsBreakdown struct {
	RaiderID   string
	RaiderName string
	Role       Role

	ACS score.AttendanceCommitment
	MAS score.MechanicalAdherence
	EPS score.ExternalPreparation
	RMS score.RaiderMerit

	UV  score.UpgradeValue
	TB  score.TierBonus
	RM  score.RoleMultiplier
	IPI score.ItemPriority

	RDF  score.RecencyDecay
	FLPS score.Flps

	Eligible bool
	// Ineligibility lists the failed gate checks; empty when Eligible.
	Ineligibility []Reason
}
