// Package eligibility decides whether a raider may take part in a loot decision.
package eligibility

import (
	"time"

	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/model"
)

// Subject is the raider-side input to the gate.
type Subject struct {
	RaiderID string
	GuildID  string
	// Attendance is a fraction in [0, 1].
	Attendance float64
	// Activity is a fraction in [0, 1].
	Activity float64
}

// Verdict is the gate outcome. Reasons is empty when Eligible.
type Verdict struct {
	Eligible bool
	Reasons  []model.Reason
}

// Gate applies a guild's eligibility thresholds.
type Gate struct {
	minAttendance float64
	minActivity   float64
}

// New builds a gate from guild thresholds.
func New(cfg guild.Eligibility) Gate {
	return Gate{minAttendance: cfg.MinAttendance, minActivity: cfg.MinActivity}
}

// Evaluate requires all of: no ban of the subject's raider and guild active
// at now, attendance at or above the threshold, activity at or above the
// threshold. Bans of other raiders or guilds are ignored.
func (g Gate) Evaluate(s Subject, bans []model.LootBan, now time.Time) Verdict {
	var reasons []model.Reason
	if Banned(s.RaiderID, s.GuildID, bans, now) {
		reasons = append(reasons, model.ReasonBanned)
	}
	if s.Attendance < g.minAttendance {
		reasons = append(reasons, model.ReasonLowAttendance)
	}
	if s.Activity < g.minActivity {
		reasons = append(reasons, model.ReasonLowActivity)
	}
	return Verdict{Eligible: len(reasons) == 0, Reasons: reasons}
}

// Banned reports whether any ban for raiderID in guildID is active at now.
func Banned(raiderID, guildID string, bans []model.LootBan, now time.Time) bool {
	for _, b := range bans {
		if b.RaiderID == raiderID && b.GuildID == guildID && b.IsActive(now) {
			return true
		}
	}
	return false
}
