// Package guild defines the per-guild FLPS configuration: weights,
// thresholds, multipliers and recency parameters.
//
// A Configuration is immutable for the duration of a calculation. Guilds
// without explicit settings use Default() verbatim.
package guild

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/score"
)

// Default values.
const (
	DefaultAttendanceWeight  = 0.4
	DefaultMechanicalWeight  = 0.4
	DefaultPreparationWeight = 0.2

	DefaultUpgradeWeight = 0.45
	DefaultTierWeight    = 0.35
	DefaultRoleWeight    = 0.20

	DefaultDPSMultiplier    = 1.0
	DefaultTankMultiplier   = 0.8
	DefaultHealerMultiplier = 0.7

	DefaultMinAttendance = 0.8
	DefaultMinActivity   = 0.0

	DefaultAttendanceWindowDays = 90

	DefaultDecayFactor       = 0.9
	DefaultWindowDays        = 14
	DefaultMaxRevocationDays = 7

	DefaultTierAPenalty   = 0.8
	DefaultTierBPenalty   = 0.9
	DefaultTierCPenalty   = 1.0
	DefaultRecoveryPerDay = 0.1

	DefaultVaultSlotTarget  = 3
	DefaultHeroicBossTarget = 8

	DefaultTierSetSize      = 5
	DefaultTierBonusCeiling = 1.2
)

const day = 24 * time.Hour

// RMSWeights weight the merit components. They need not sum to 1.
type RMSWeights struct {
	Attendance  float64 `koanf:"attendance" yaml:"attendance"`
	Mechanical  float64 `koanf:"mechanical" yaml:"mechanical"`
	Preparation float64 `koanf:"preparation" yaml:"preparation"`
}

// IPIWeights weight the item priority components. They need not sum to 1.
type IPIWeights struct {
	Upgrade float64 `koanf:"upgrade" yaml:"upgrade"`
	Tier    float64 `koanf:"tier" yaml:"tier"`
	Role    float64 `koanf:"role" yaml:"role"`
}

// RoleMultipliers map roles to their RM contribution.
type RoleMultipliers struct {
	DPS    float64 `koanf:"dps" yaml:"dps"`
	Tank   float64 `koanf:"tank" yaml:"tank"`
	Healer float64 `koanf:"healer" yaml:"healer"`
}

// Eligibility holds the gate thresholds, both in [0, 1].
type Eligibility struct {
	MinAttendance float64 `koanf:"min_attendance" yaml:"min_attendance"`
	MinActivity   float64 `koanf:"min_activity" yaml:"min_activity"`
}

// Attendance bounds the stored history attendance statistics are taken from.
type Attendance struct {
	WindowDays int `koanf:"window_days" yaml:"window_days"`
}

// Window returns the attendance window as a duration.
func (a Attendance) Window() time.Duration { return time.Duration(a.WindowDays) * day }

// Recency configures award-count decay and the revocation window.
type Recency struct {
	DecayFactor       float64 `koanf:"decay_factor" yaml:"decay_factor"`
	WindowDays        int     `koanf:"window_days" yaml:"window_days"`
	MaxRevocationDays int     `koanf:"max_revocation_days" yaml:"max_revocation_days"`
}

// Window returns the recency window as a duration.
func (r Recency) Window() time.Duration { return time.Duration(r.WindowDays) * day }

// RevocationWindow returns the revocation window as a duration.
func (r Recency) RevocationWindow() time.Duration { return time.Duration(r.MaxRevocationDays) * day }

// TierPenalties are per-tier recency penalties with a daily recovery rate.
// They are carried as configuration only; the decay factor does not read them.
type TierPenalties struct {
	A              float64 `koanf:"a" yaml:"a"`
	B              float64 `koanf:"b" yaml:"b"`
	C              float64 `koanf:"c" yaml:"c"`
	RecoveryPerDay float64 `koanf:"recovery_per_day" yaml:"recovery_per_day"`
}

// For returns the penalty configured for tier. Unknown tiers carry no penalty.
func (p TierPenalties) For(tier model.Tier) float64 {
	switch tier {
	case model.TierA:
		return p.A
	case model.TierB:
		return p.B
	case model.TierC:
		return p.C
	}
	return 1
}

// Preparation holds the targets preparation signals are normalized against.
type Preparation struct {
	VaultSlotTarget  int `koanf:"vault_slot_target" yaml:"vault_slot_target"`
	HeroicBossTarget int `koanf:"heroic_boss_target" yaml:"heroic_boss_target"`
}

// TierSet describes the tier set used to scale the tier bonus.
type TierSet struct {
	Size         int     `koanf:"size" yaml:"size"`
	BonusCeiling float64 `koanf:"bonus_ceiling" yaml:"bonus_ceiling"`
}

// Configuration is one guild's FLPS settings.
type Configuration struct {
	RMS           RMSWeights      `koanf:"rms" yaml:"rms"`
	IPI           IPIWeights      `koanf:"ipi" yaml:"ipi"`
	Roles         RoleMultipliers `koanf:"roles" yaml:"roles"`
	Eligibility   Eligibility     `koanf:"eligibility" yaml:"eligibility"`
	Attendance    Attendance      `koanf:"attendance" yaml:"attendance"`
	Recency       Recency         `koanf:"recency" yaml:"recency"`
	TierPenalties TierPenalties   `koanf:"tier_penalties" yaml:"tier_penalties"`
	Preparation   Preparation     `koanf:"preparation" yaml:"preparation"`
	TierSet       TierSet         `koanf:"tier_set" yaml:"tier_set"`
}

// Default returns the documented defaults.
func Default() Configuration {
	return Configuration{
		RMS: RMSWeights{
			Attendance:  DefaultAttendanceWeight,
			Mechanical:  DefaultMechanicalWeight,
			Preparation: DefaultPreparationWeight,
		},
		IPI: IPIWeights{
			Upgrade: DefaultUpgradeWeight,
			Tier:    DefaultTierWeight,
			Role:    DefaultRoleWeight,
		},
		Roles: RoleMultipliers{
			DPS:    DefaultDPSMultiplier,
			Tank:   DefaultTankMultiplier,
			Healer: DefaultHealerMultiplier,
		},
		Eligibility: Eligibility{
			MinAttendance: DefaultMinAttendance,
			MinActivity:   DefaultMinActivity,
		},
		Attendance: Attendance{
			WindowDays: DefaultAttendanceWindowDays,
		},
		Recency: Recency{
			DecayFactor:       DefaultDecayFactor,
			WindowDays:        DefaultWindowDays,
			MaxRevocationDays: DefaultMaxRevocationDays,
		},
		TierPenalties: TierPenalties{
			A:              DefaultTierAPenalty,
			B:              DefaultTierBPenalty,
			C:              DefaultTierCPenalty,
			RecoveryPerDay: DefaultRecoveryPerDay,
		},
		Preparation: Preparation{
			VaultSlotTarget:  DefaultVaultSlotTarget,
			HeroicBossTarget: DefaultHeroicBossTarget,
		},
		TierSet: TierSet{
			Size:         DefaultTierSetSize,
			BonusCeiling: DefaultTierBonusCeiling,
		},
	}
}

// RoleMultiplier returns the configured multiplier for role.
func (c Configuration) RoleMultiplier(role model.Role) (score.RoleMultiplier, error) {
	switch role {
	case model.RoleDPS:
		return score.NewRoleMultiplier(c.Roles.DPS)
	case model.RoleTank:
		return score.NewRoleMultiplier(c.Roles.Tank)
	case model.RoleHealer:
		return score.NewRoleMultiplier(c.Roles.Healer)
	}
	return score.RoleMultiplier{}, score.Invalid("role", role, "one of dps, tank, healer")
}

// Validate reports every out-of-domain setting. Weight sums are not checked.
func (c Configuration) Validate() error {
	var errs []error
	nonNegative := func(field string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			errs = append(errs, score.Invalid(field, v, score.RangeNonNegative))
		}
	}
	unit := func(field string, v float64) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			errs = append(errs, score.Invalid(field, v, score.RangeUnit))
		}
	}
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, score.Invalid(field, v, "a positive integer"))
		}
	}

	nonNegative("rms.attendance weight", c.RMS.Attendance)
	nonNegative("rms.mechanical weight", c.RMS.Mechanical)
	nonNegative("rms.preparation weight", c.RMS.Preparation)
	nonNegative("ipi.upgrade weight", c.IPI.Upgrade)
	nonNegative("ipi.tier weight", c.IPI.Tier)
	nonNegative("ipi.role weight", c.IPI.Role)
	nonNegative("roles.dps multiplier", c.Roles.DPS)
	nonNegative("roles.tank multiplier", c.Roles.Tank)
	nonNegative("roles.healer multiplier", c.Roles.Healer)
	unit("eligibility.min_attendance", c.Eligibility.MinAttendance)
	unit("eligibility.min_activity", c.Eligibility.MinActivity)
	positive("attendance.window_days", c.Attendance.WindowDays)
	unit("recency.decay_factor", c.Recency.DecayFactor)
	positive("recency.window_days", c.Recency.WindowDays)
	positive("recency.max_revocation_days", c.Recency.MaxRevocationDays)
	unit("tier_penalties.a", c.TierPenalties.A)
	unit("tier_penalties.b", c.TierPenalties.B)
	unit("tier_penalties.c", c.TierPenalties.C)
	unit("tier_penalties.recovery_per_day", c.TierPenalties.RecoveryPerDay)
	positive("preparation.vault_slot_target", c.Preparation.VaultSlotTarget)
	positive("preparation.heroic_boss_target", c.Preparation.HeroicBossTarget)
	positive("tier_set.size", c.TierSet.Size)
	nonNegative("tier_set.bonus_ceiling", c.TierSet.BonusCeiling)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("guild configuration: %w", errors.Join(errs...))
}
