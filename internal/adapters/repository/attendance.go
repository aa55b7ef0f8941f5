package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/flps/internal/domain/model"
)

// attendanceKey identifies one encounter outcome. A later record for the same
// key supersedes the earlier one.
type attendanceKey struct {
	scope
	instance  string
	encounter string
	date      string
}

// MemoryAttendance is an in-memory AttendanceSource fed by ingestion.
type MemoryAttendance struct {
	mu      sync.RWMutex
	arena   []model.AttendanceRecord
	index   map[attendanceKey]int
	byScope map[scope][]attendanceKey
}

// NewMemoryAttendance returns an empty attendance store.
func NewMemoryAttendance() *MemoryAttendance {
	return &MemoryAttendance{
		index:   make(map[attendanceKey]int),
		byScope: make(map[scope][]attendanceKey),
	}
}

// Add stores records. Records without a raider or guild id are rejected.
func (m *MemoryAttendance) Add(_ context.Context, records ...model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		if r.RaiderID == "" || r.GuildID == "" {
			return fmt.Errorf("%w: attendance record needs raider and guild ids", ErrInvalidRecord)
		}
		k := attendanceKey{
			scope:     scope{guildID: r.GuildID, raiderID: r.RaiderID},
			instance:  r.InstanceID,
			encounter: r.EncounterID,
			date:      r.RaidDate.UTC().Format(time.DateOnly),
		}
		if _, seen := m.index[k]; !seen {
			m.byScope[k.scope] = append(m.byScope[k.scope], k)
		}
		m.arena = append(m.arena, r)
		m.index[k] = len(m.arena) - 1
	}
	return nil
}

// Records returns the current record for every encounter of the raider.
func (m *MemoryAttendance) Records(_ context.Context, guildID, raiderID string) ([]model.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := m.byScope[scope{guildID: guildID, raiderID: raiderID}]
	out := make([]model.AttendanceRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.arena[m.index[k]])
	}
	return out, nil
}
