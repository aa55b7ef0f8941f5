// Package engine derives component scores from a RaiderInput and composes
// them into an FlpsBreakdown.
//
// The engine is a pure function of its inputs. It holds no mutable state,
// performs no I/O and takes "now" explicitly, so one Engine may be shared by
// any number of goroutines.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/flps/internal/domain/eligibility"
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/merit"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/priority"
	"github.com/okian/flps/internal/domain/recency"
	"github.com/okian/flps/internal/domain/score"
)

const percent = 100

// Evaluator scores one raider at one instant.
type Evaluator interface {
	Evaluate(in model.RaiderInput, now time.Time) (model.FlpsBreakdown, error)
}

// Engine evaluates raiders against one guild configuration.
type Engine struct {
	cfg      guild.Configuration
	merit    merit.Calculator
	priority priority.Calculator
	recency  recency.Calculator
	gate     eligibility.Gate
}

// New validates cfg and builds an engine around it.
func New(cfg guild.Configuration) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		merit:    merit.New(cfg.RMS),
		priority: priority.New(cfg.IPI),
		recency:  recency.New(cfg),
		gate:     eligibility.New(cfg.Eligibility),
	}, nil
}

// Configuration returns the guild configuration the engine was built with.
func (e *Engine) Configuration() guild.Configuration { return e.cfg }

// Evaluate computes the breakdown for in. Ineligible raiders still get their
// score; the verdict is reported alongside it. Errors are *score.Error values
// wrapped with the raider id.
func (e *Engine) Evaluate(in model.RaiderInput, now time.Time) (model.FlpsBreakdown, error) {
	if err := in.Validate(); err != nil {
		return model.FlpsBreakdown{}, fmt.Errorf("raider %s: %w", in.ID, err)
	}

	b, err := e.components(in)
	if err != nil {
		return model.FlpsBreakdown{}, fmt.Errorf("raider %s: %w", in.ID, err)
	}

	b.RMS = e.merit.Calculate(b.ACS, b.MAS, b.EPS)
	b.IPI = e.priority.Calculate(b.UV, b.TB, b.RM)
	if b.RDF, err = e.recency.Factor(in.RecentAwards, now); err != nil {
		return model.FlpsBreakdown{}, fmt.Errorf("raider %s: %w", in.ID, err)
	}
	b.FLPS = score.Combine(b.RMS, b.IPI, b.RDF)

	verdict := e.gate.Evaluate(eligibility.Subject{
		RaiderID:   in.ID,
		GuildID:    in.GuildID,
		Attendance: b.ACS.Value(),
		Activity:   in.ActivityScore,
	}, in.Bans, now)
	b.Eligible = verdict.Eligible
	b.Ineligibility = verdict.Reasons

	return b, nil
}

func attendanceShare(in model.RaiderInput) float64 {
	if in.AttendanceFraction != nil {
		return *in.AttendanceFraction
	}
	return float64(in.AttendancePercent) / percent
}

// components derives the six leaf scores.
func (e *Engine) components(in model.RaiderInput) (model.FlpsBreakdown, error) {
	b := model.FlpsBreakdown{RaiderID: in.ID, RaiderName: in.Name, Role: in.Role}
	var err error

	if b.ACS, err = score.NewAttendanceCommitment(attendanceShare(in)); err != nil {
		return b, err
	}
	mas, err := mechanical(in)
	if err != nil {
		return b, err
	}
	if b.MAS, err = score.NewMechanicalAdherence(mas); err != nil {
		return b, err
	}
	if b.EPS, err = score.NewExternalPreparation(e.preparation(in)); err != nil {
		return b, err
	}

	uv, err := upgrade(in)
	if err != nil {
		return b, err
	}
	if b.UV, err = score.NewUpgradeValue(uv); err != nil {
		return b, err
	}
	if b.TB, err = score.NewTierBonus(e.tierBonus(in.TierPiecesOwned)); err != nil {
		return b, err
	}
	if b.RM, err = e.cfg.RoleMultiplier(in.Role); err != nil {
		return b, err
	}
	return b, nil
}

// mechanical averages deaths and avoidable damage, each scored as
// min(1, baseline/value). Matching or beating the spec average scores 1.
func mechanical(in model.RaiderInput) (float64, error) {
	if in.Baseline == nil {
		return 0, score.MissingBaseline("spec average", fmt.Sprintf("none for %s raider %s", in.Role, in.ID))
	}
	if in.Baseline.DeathsPerAttempt <= 0 {
		return 0, score.MissingBaseline("deaths per attempt", fmt.Sprintf("spec average for %s is %v", in.Role, in.Baseline.DeathsPerAttempt))
	}
	if in.Baseline.AvoidableDamagePct <= 0 {
		return 0, score.MissingBaseline("avoidable damage", fmt.Sprintf("spec average for %s is %v", in.Role, in.Baseline.AvoidableDamagePct))
	}
	deaths := ratio(in.Baseline.DeathsPerAttempt, in.DeathsPerAttempt)
	damage := ratio(in.Baseline.AvoidableDamagePct, in.AvoidableDamagePct)
	return (deaths + damage) / 2, nil
}

func ratio(baseline, value float64) float64 {
	if value <= 0 {
		return 1
	}
	return math.Min(1, baseline/value)
}

// preparation averages vault progress, crest usage and heroic clears.
func (e *Engine) preparation(in model.RaiderInput) float64 {
	vault := math.Min(1, float64(in.VaultSlots)/float64(e.cfg.Preparation.VaultSlotTarget))
	heroic := math.Min(1, float64(in.HeroicBossesCleared)/float64(e.cfg.Preparation.HeroicBossTarget))
	return (vault + in.CrestUsageRatio + heroic) / 3
}

// upgrade is the simulated gain relative to the spec's baseline output.
// A simulated downgrade carries no upgrade value.
func upgrade(in model.RaiderInput) (float64, error) {
	if in.SpecBaselineOutput <= 0 {
		return 0, score.MissingBaseline("spec baseline output", fmt.Sprintf("got %v for %s raider %s", in.SpecBaselineOutput, in.Role, in.ID))
	}
	return math.Max(0, in.SimulatedGain) / in.SpecBaselineOutput, nil
}

// tierBonus scales inversely with the tier pieces already owned.
func (e *Engine) tierBonus(owned int) float64 {
	size := e.cfg.TierSet.Size
	if owned > size {
		owned = size
	}
	return e.cfg.TierSet.BonusCeiling * (1 - float64(owned)/float64(size))
}
