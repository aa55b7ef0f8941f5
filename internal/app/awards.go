package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/flps/internal/adapters/repository"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/internal/domain/recency"
	"github.com/okian/flps/pkg/logger"
)

// RecordAward evaluates raider at now and writes award to the ledger stamped
// with that score. RaiderID, GuildID, AwardedAt and Status are set here.
func (s *Service) RecordAward(ctx context.Context, raider model.RaiderInput, award model.LootAward, now time.Time) (model.LootAward, error) {
	bd, err := s.Evaluate(ctx, raider.GuildID, raider, now)
	if err != nil {
		return model.LootAward{}, fmt.Errorf("score at award: %w", err)
	}

	award.RaiderID = raider.ID
	award.GuildID = raider.GuildID
	award.AwardedAt = now
	award.FlpsAtAward = bd.FLPS.Value()
	award.Status = model.AwardActive
	award.RevokedAt = nil

	recorded, err := s.ledger.Record(ctx, award)
	if err != nil {
		return model.LootAward{}, err
	}
	s.logger.Info(ctx, "award recorded",
		logger.String("award_id", recorded.ID),
		logger.String("raider_id", recorded.RaiderID),
		logger.String("item_id", recorded.ItemID),
		logger.Float64("flps", recorded.FlpsAtAward),
		logger.Bool("eligible", bd.Eligible),
	)
	return recorded, nil
}

// CanRevoke reports whether the award may still be revoked under guildID's
// revocation window.
func (s *Service) CanRevoke(ctx context.Context, guildID, awardID string, now time.Time) (bool, error) {
	award, err := s.award(ctx, guildID, awardID)
	if err != nil {
		return false, err
	}
	days := s.Configuration(guildID).Recency.MaxRevocationDays
	return recency.CanRevoke(award, days, now), nil
}

// RevokeAward revokes an award of guildID if its revocation window is still open.
func (s *Service) RevokeAward(ctx context.Context, guildID, awardID string, now time.Time) (model.LootAward, error) {
	if _, err := s.award(ctx, guildID, awardID); err != nil {
		return model.LootAward{}, err
	}
	days := s.Configuration(guildID).Recency.MaxRevocationDays
	revoked, err := s.ledger.Revoke(ctx, awardID, days, now)
	if err != nil {
		return model.LootAward{}, err
	}
	s.logger.Info(ctx, "award revoked",
		logger.String("award_id", revoked.ID),
		logger.String("raider_id", revoked.RaiderID),
	)
	return revoked, nil
}

func (s *Service) award(ctx context.Context, guildID, awardID string) (model.LootAward, error) {
	award, err := s.ledger.Award(ctx, awardID)
	if err != nil {
		return model.LootAward{}, err
	}
	if award.GuildID != guildID {
		return model.LootAward{}, fmt.Errorf("%w: award %s in guild %s", repository.ErrNotFound, awardID, guildID)
	}
	return award, nil
}
