// Package priority combines upgrade value, tier bonus and role multiplier
// into the Item Priority Index.
package priority

import (
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/score"
)

// Calculator computes IPI = clamp01(UV*w_u + TB*w_t + RM*w_r).
//
// TB and RM are unbounded multipliers, so the weighted sum may exceed 1
// before the clamp. Clamping keeps IPI commensurable with RMS.
type Calculator struct {
	weights guild.IPIWeights
}

// New returns a calculator using the guild's item priority weights.
func New(weights guild.IPIWeights) Calculator {
	return Calculator{weights: weights}
}

// Calculate returns the clamped index.
func (c Calculator) Calculate(uv score.UpgradeValue, tb score.TierBonus, rm score.RoleMultiplier) score.ItemPriority {
	sum := uv.Value()*c.weights.Upgrade +
		tb.Value()*c.weights.Tier +
		rm.Value()*c.weights.Role
	ipi, _ := score.NewItemPriority(score.Clamp01(sum))
	return ipi
}
