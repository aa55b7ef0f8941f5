package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/recency"
	"github.com/okian/flps/pkg/metrics"
)

// MemoryLedger is an in-memory AwardLedger.
type MemoryLedger struct {
	mu      sync.RWMutex
	arena   []model.LootAward
	latest  map[string]int
	history map[string][]int
	byScope map[scope][]string
	cfg     settings
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger(opts ...Option) *MemoryLedger {
	return &MemoryLedger{
		latest:  make(map[string]int),
		history: make(map[string][]int),
		byScope: make(map[scope][]string),
		cfg:     apply(opts),
	}
}

// Record stores a new active award.
func (l *MemoryLedger) Record(_ context.Context, award model.LootAward) (model.LootAward, error) {
	if award.RaiderID == "" || award.GuildID == "" || award.ItemID == "" {
		return model.LootAward{}, fmt.Errorf("%w: award needs raider, guild and item ids", ErrInvalidRecord)
	}
	if award.Status == "" {
		award.Status = model.AwardActive
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if award.ID == "" {
		award.ID = l.cfg.newID()
	}
	if _, exists := l.latest[award.ID]; exists {
		return model.LootAward{}, fmt.Errorf("%w: award %s", ErrDuplicate, award.ID)
	}
	l.put(award)
	s := scope{guildID: award.GuildID, raiderID: award.RaiderID}
	l.byScope[s] = append(l.byScope[s], award.ID)
	metrics.RecordAwardRecorded()
	return award, nil
}

// put appends a version and points the index at it. Caller holds l.mu.
func (l *MemoryLedger) put(award model.LootAward) {
	l.arena = append(l.arena, award)
	pos := len(l.arena) - 1
	l.latest[award.ID] = pos
	l.history[award.ID] = append(l.history[award.ID], pos)
}

// Award returns the latest version of the award with id.
func (l *MemoryLedger) Award(_ context.Context, id string) (model.LootAward, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.latest[id]
	if !ok {
		return model.LootAward{}, fmt.Errorf("%w: award %s", ErrNotFound, id)
	}
	return l.arena[pos], nil
}

// History returns every stored version of the award, oldest first.
func (l *MemoryLedger) History(_ context.Context, id string) ([]model.LootAward, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	positions, ok := l.history[id]
	if !ok {
		return nil, fmt.Errorf("%w: award %s", ErrNotFound, id)
	}
	out := make([]model.LootAward, len(positions))
	for i, pos := range positions {
		out[i] = l.arena[pos]
	}
	return out, nil
}

// Awards returns the latest version of each of the raider's awards.
func (l *MemoryLedger) Awards(_ context.Context, guildID, raiderID string) ([]model.LootAward, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byScope[scope{guildID: guildID, raiderID: raiderID}]
	out := make([]model.LootAward, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.arena[l.latest[id]])
	}
	return out, nil
}

// Revoke appends a revoked version of the award.
func (l *MemoryLedger) Revoke(_ context.Context, id string, maxRevocationDays int, now time.Time) (model.LootAward, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.latest[id]
	if !ok {
		return model.LootAward{}, fmt.Errorf("%w: award %s", ErrNotFound, id)
	}
	current := l.arena[pos]
	if !recency.CanRevoke(current, maxRevocationDays, now) {
		return model.LootAward{}, fmt.Errorf("%w: award %s is %s, awarded %s, window %d days",
			ErrNotRevocable, id, current.Status, current.AwardedAt.Format(time.RFC3339), maxRevocationDays)
	}
	revoked := current.Revoked(now)
	l.put(revoked)
	metrics.RecordAwardRevoked()
	return revoked, nil
}
