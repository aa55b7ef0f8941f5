// Package merit combines attendance, mechanical and preparation scores into
// the Raider Merit Score.
package merit

import (
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/score"
)

// Calculator computes RMS = clamp01(ACS*w_a + MAS*w_m + EPS*w_e).
type Calculator struct {
	weights guild.RMSWeights
}

// New returns a calculator using the guild's merit weights.
func New(weights guild.RMSWeights) Calculator {
	return Calculator{weights: weights}
}

// Calculate cannot fail: its inputs are validated score values and the
// weighted sum is clamped, absorbing any overflow from weights summing above 1.
func (c Calculator) Calculate(acs score.AttendanceCommitment, mas score.MechanicalAdherence, eps score.ExternalPreparation) score.RaiderMerit {
	sum := acs.Value()*c.weights.Attendance +
		mas.Value()*c.weights.Mechanical +
		eps.Value()*c.weights.Preparation
	rms, _ := score.NewRaiderMerit(score.Clamp01(sum))
	return rms
}
