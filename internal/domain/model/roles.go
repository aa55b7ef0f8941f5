// Package model contains the records and value types passed between the
// scoring packages and their collaborators.
package model

import (
	"strings"

	"github.com/okian/flps/internal/domain/score"
)

// Role is a raider's combat role.
type Role string

// Supported roles.
const (
	RoleDPS    Role = "dps"
	RoleTank   Role = "tank"
	RoleHealer Role = "healer"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleDPS, RoleTank, RoleHealer:
		return r, nil
	}
	return "", score.Invalid("role", s, "one of dps, tank, healer")
}

// Tier is the significance tier of an awarded item.
type Tier string

// Award significance tiers, A being the most significant.
const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// ParseTier accepts a tier letter in any case.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case TierA, TierB, TierC:
		return t, nil
	}
	return "", score.Invalid("tier", s, "one of A, B, C")
}

// Reason names a failed eligibility check.
type Reason string

// Eligibility failure reasons.
const (
	ReasonBanned        Reason = "banned"
	ReasonLowAttendance Reason = "low_attendance"
	ReasonLowActivity   Reason = "low_activity"
)
