// Package recency reduces the priority of raiders who recently received loot
// and answers the revocation-window question for individual awards.
//
// Two mechanisms live in guild configuration. The award-count exponential
// decay is applied here. The per-tier penalties and their recovery rate are
// exposed read-only and are not folded into the decay factor.
package recency

import (
	"math"
	"time"

	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/score"
)

const day = 24 * time.Hour

// Calculator computes the recency decay factor from award history.
type Calculator struct {
	decayFactor float64
	window      time.Duration
	penalties   guild.TierPenalties
}

// New builds a calculator from a guild's recency and tier penalty settings.
func New(cfg guild.Configuration) Calculator {
	return Calculator{
		decayFactor: cfg.Recency.DecayFactor,
		window:      cfg.Recency.Window(),
		penalties:   cfg.TierPenalties,
	}
}

// CountInWindow returns the number of active awards with AwardedAt in
// (now-window, now]. Awards stamped after now are not history yet.
func (c Calculator) CountInWindow(awards []model.LootAward, now time.Time) int {
	cutoff := now.Add(-c.window)
	n := 0
	for _, a := range awards {
		if !a.IsActive() {
			continue
		}
		if a.AwardedAt.After(cutoff) && !a.AwardedAt.After(now) {
			n++
		}
	}
	return n
}

// Factor returns decayFactor^N for the N awards inside the window.
// No awards in the window means no decay.
func (c Calculator) Factor(awards []model.LootAward, now time.Time) (score.RecencyDecay, error) {
	n := c.CountInWindow(awards, now)
	if n == 0 {
		return score.NoDecay(), nil
	}
	return score.NewRecencyDecay(math.Pow(c.decayFactor, float64(n)))
}

// Apply returns clamp01(base * decayFactor^N).
func (c Calculator) Apply(base float64, awards []model.LootAward, now time.Time) (float64, error) {
	rdf, err := c.Factor(awards, now)
	if err != nil {
		return 0, err
	}
	return score.Clamp01(base * rdf.Value()), nil
}

// TierPenalty returns the configured penalty for tier.
func (c Calculator) TierPenalty(tier model.Tier) float64 { return c.penalties.For(tier) }

// RecoveryPerDay returns the configured daily recovery rate of tier penalties.
func (c Calculator) RecoveryPerDay() float64 { return c.penalties.RecoveryPerDay }

// ShouldApply reports whether any award is newer than now-thresholdDays.
func ShouldApply(awards []model.LootAward, thresholdDays int, now time.Time) bool {
	cutoff := now.Add(-time.Duration(thresholdDays) * day)
	for _, a := range awards {
		if a.AwardedAt.After(cutoff) {
			return true
		}
	}
	return false
}

// CanRevoke reports whether award is still active and now precedes
// AwardedAt + maxRevocationDays.
func CanRevoke(award model.LootAward, maxRevocationDays int, now time.Time) bool {
	if !award.IsActive() {
		return false
	}
	deadline := award.AwardedAt.Add(time.Duration(maxRevocationDays) * day)
	return now.Before(deadline)
}
