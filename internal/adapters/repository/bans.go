package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/flps/internal/domain/model"
)

// MemoryBans is an in-memory BanRegistry.
type MemoryBans struct {
	mu      sync.RWMutex
	arena   []model.LootBan
	index   map[string]int
	byScope map[scope][]int
	cfg     settings
}

// NewMemoryBans returns an empty ban registry.
func NewMemoryBans(opts ...Option) *MemoryBans {
	return &MemoryBans{
		index:   make(map[string]int),
		byScope: make(map[scope][]int),
		cfg:     apply(opts),
	}
}

// Add stores a ban. An empty ID is filled in.
func (b *MemoryBans) Add(_ context.Context, ban model.LootBan) (model.LootBan, error) {
	if ban.RaiderID == "" || ban.GuildID == "" {
		return model.LootBan{}, fmt.Errorf("%w: ban needs raider and guild ids", ErrInvalidRecord)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if ban.ID == "" {
		ban.ID = b.cfg.newID()
	}
	if _, exists := b.index[ban.ID]; exists {
		return model.LootBan{}, fmt.Errorf("%w: ban %s", ErrDuplicate, ban.ID)
	}
	b.arena = append(b.arena, ban)
	pos := len(b.arena) - 1
	b.index[ban.ID] = pos
	s := scope{guildID: ban.GuildID, raiderID: ban.RaiderID}
	b.byScope[s] = append(b.byScope[s], pos)
	return ban, nil
}

// Bans returns every ban recorded for the raider, active or not.
func (b *MemoryBans) Bans(_ context.Context, guildID, raiderID string) ([]model.LootBan, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	positions := b.byScope[scope{guildID: guildID, raiderID: raiderID}]
	out := make([]model.LootBan, len(positions))
	for i, pos := range positions {
		out[i] = b.arena[pos]
	}
	return out, nil
}
