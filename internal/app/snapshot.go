package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/flps/internal/adapters/repository"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/roster"
	"github.com/okian/flps/pkg/logger"
)

func (s *Service) guildLock(guildID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.guildLocks[guildID]
	if !ok {
		l = new(sync.Mutex)
		s.guildLocks[guildID] = l
	}
	return l
}

// LoadSnapshot ingests a roster's attendance, awards and bans. Loads for one
// guild are serialised. Reloading the same snapshot is a no-op: records with
// known ids are skipped and attendance for a known encounter is superseded.
func (s *Service) LoadSnapshot(ctx context.Context, snap roster.Snapshot) error {
	l := s.guildLock(snap.GuildID)
	l.Lock()
	defer l.Unlock()

	records := make([]model.AttendanceRecord, len(snap.Attendance))
	for i, r := range snap.Attendance {
		r.GuildID = snap.GuildID
		records[i] = r
	}
	if err := s.attendance.Add(ctx, records...); err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}

	var skipped int
	for _, a := range snap.Awards {
		a.GuildID = snap.GuildID
		if _, err := s.ledger.Record(ctx, a); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				skipped++
				continue
			}
			return fmt.Errorf("load award %s: %w", a.ID, err)
		}
	}
	for _, b := range snap.Bans {
		b.GuildID = snap.GuildID
		if _, err := s.bans.Add(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				skipped++
				continue
			}
			return fmt.Errorf("load ban %s: %w", b.ID, err)
		}
	}

	s.logger.Info(ctx, "snapshot loaded",
		logger.String("guild_id", snap.GuildID),
		logger.Int("attendance", len(snap.Attendance)),
		logger.Int("awards", len(snap.Awards)),
		logger.Int("bans", len(snap.Bans)),
		logger.Int("skipped", skipped),
	)
	return nil
}
