// Package attendance aggregates raw attendance records into statistics.
//
// Aggregation is pure: inputs are never modified and an empty record set is
// a valid "no data yet" state represented by the zero Stats.
package attendance

import (
	"sort"
	"time"

	"github.com/okian/flps/internal/domain/model"
)

// Stats summarises a raider's attendance over a window.
type Stats struct {
	TotalRaids         int
	AttendedRaids      int
	TotalEncounters    int
	SelectedEncounters int
}

// Percentage returns AttendedRaids / TotalRaids, or 0 without raids.
func (s Stats) Percentage() float64 {
	if s.TotalRaids <= 0 {
		return 0
	}
	return float64(s.AttendedRaids) / float64(s.TotalRaids)
}

// SelectionPercentage returns SelectedEncounters / TotalEncounters, or 0 without encounters.
func (s Stats) SelectionPercentage() float64 {
	if s.TotalEncounters <= 0 {
		return 0
	}
	return float64(s.SelectedEncounters) / float64(s.TotalEncounters)
}

// MeetsThreshold reports whether Percentage() >= threshold.
func (s Stats) MeetsThreshold(threshold float64) bool {
	return s.Percentage() >= threshold
}

// raidKey identifies one raid night: an instance on a calendar date.
type raidKey struct {
	instance string
	date     string
}

func keyOf(r model.AttendanceRecord) raidKey {
	return raidKey{instance: r.InstanceID, date: r.RaidDate.UTC().Format(time.DateOnly)}
}

// Aggregate computes Stats over every record given. A raid counts as attended
// when any of its encounter records is marked attended.
func Aggregate(records []model.AttendanceRecord) Stats {
	if len(records) == 0 {
		return Stats{}
	}
	attended := make(map[raidKey]bool, len(records))
	var s Stats
	for _, r := range records {
		k := keyOf(r)
		attended[k] = attended[k] || r.Attended
		s.TotalEncounters++
		if r.Selected {
			s.SelectedEncounters++
		}
	}
	s.TotalRaids = len(attended)
	for _, ok := range attended {
		if ok {
			s.AttendedRaids++
		}
	}
	return s
}

// AggregateWindow aggregates records whose raid date falls in [from, to).
func AggregateWindow(records []model.AttendanceRecord, from, to time.Time) Stats {
	in := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if !r.RaidDate.Before(from) && r.RaidDate.Before(to) {
			in = append(in, r)
		}
	}
	return Aggregate(in)
}

// AggregateRecent aggregates the records of the n most recent raids.
// n <= 0 yields the zero Stats.
func AggregateRecent(records []model.AttendanceRecord, n int) Stats {
	if n <= 0 || len(records) == 0 {
		return Stats{}
	}
	latest := make(map[raidKey]time.Time, len(records))
	for _, r := range records {
		k := keyOf(r)
		if t, ok := latest[k]; !ok || r.RaidDate.After(t) {
			latest[k] = r.RaidDate
		}
	}
	keys := make([]raidKey, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	// Newest first; ties broken by instance id so the cut is deterministic.
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := latest[keys[i]], latest[keys[j]]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return keys[i].instance < keys[j].instance
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	keep := make(map[raidKey]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	in := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if _, ok := keep[keyOf(r)]; ok {
			in = append(in, r)
		}
	}
	return Aggregate(in)
}

// ForRaider filters records down to one raider within one guild.
func ForRaider(records []model.AttendanceRecord, raiderID, guildID string) []model.AttendanceRecord {
	out := make([]model.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.RaiderID == raiderID && r.GuildID == guildID {
			out = append(out, r)
		}
	}
	return out
}
