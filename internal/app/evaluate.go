package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/okian/flps/internal/adapters/mq/queue"
	workerpool "github.com/okian/flps/internal/adapters/mq/worker"
	"github.com/okian/flps/internal/domain/attendance"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/pkg/logger"
	"github.com/okian/flps/pkg/metrics"
)

// Result is the evaluation outcome for one raider of a roster.
type Result struct {
	RaiderID  string
	Breakdown model.FlpsBreakdown
	Err       error
}

// Evaluate scores one raider of guildID at now.
func (s *Service) Evaluate(ctx context.Context, guildID string, raider model.RaiderInput, now time.Time) (model.FlpsBreakdown, error) {
	results, err := s.run(ctx, guildID, []model.RaiderInput{raider}, now, false)
	if err != nil {
		return model.FlpsBreakdown{}, err
	}
	return results[0].Breakdown, results[0].Err
}

// EvaluateRoster scores every raider in parallel. A failing raider does not
// stop the others; its error is reported in its Result. Results keep the
// roster order. The returned error covers failures of the whole batch only.
func (s *Service) EvaluateRoster(ctx context.Context, guildID string, raiders []model.RaiderInput, now time.Time) ([]Result, error) {
	return s.run(ctx, guildID, raiders, now, false)
}

// EvaluateRosterStrict scores every raider and aborts the batch on the first
// failure, returning that failure.
func (s *Service) EvaluateRosterStrict(ctx context.Context, guildID string, raiders []model.RaiderInput, now time.Time) ([]model.FlpsBreakdown, error) {
	results, err := s.run(ctx, guildID, raiders, now, true)
	if err != nil {
		return nil, err
	}
	out := make([]model.FlpsBreakdown, len(results))
	for i, r := range results {
		out[i] = r.Breakdown
	}
	return out, nil
}

func (s *Service) run(ctx context.Context, guildID string, raiders []model.RaiderInput, now time.Time, strict bool) ([]Result, error) {
	q, err := s.running()
	if err != nil {
		return nil, err
	}
	eng, err := s.Engine(guildID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	metrics.RecordBatchSize(len(raiders))
	window := eng.Configuration().Attendance.Window()

	replies := make(chan eventqueue.Outcome, len(raiders))
	abort := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(abort) }) }
	defer stop()

	go func() {
		for i, r := range raiders {
			select {
			case <-abort:
				replies <- eventqueue.Outcome{Index: i, RaiderID: r.ID, Err: workerpool.ErrAborted}
				continue
			default:
			}

			in, err := s.hydrate(ctx, guildID, r, now, window)
			if err != nil {
				replies <- eventqueue.Outcome{Index: i, RaiderID: r.ID, Err: err}
				continue
			}
			job := eventqueue.Job{Index: i, Input: in, Now: now, Evaluator: eng, Abort: abort, Reply: replies}
			if err := q.Enqueue(ctx, job); err != nil {
				replies <- eventqueue.Outcome{Index: i, RaiderID: r.ID, Err: fmt.Errorf("enqueue raider %s: %w", r.ID, err)}
			}
		}
	}()

	results := make([]Result, len(raiders))
	var first error
	var eligible, failed int
	for n := 0; n < len(raiders); n++ {
		var o eventqueue.Outcome
		select {
		case o = <-replies:
		case <-ctx.Done():
			stop()
			return nil, ctx.Err()
		}

		results[o.Index] = Result{RaiderID: o.RaiderID, Breakdown: o.Breakdown, Err: o.Err}
		switch {
		case o.Err == nil:
			if o.Breakdown.Eligible {
				eligible++
			}
		case errors.Is(o.Err, workerpool.ErrAborted):
		default:
			failed++
			if strict && first == nil {
				first = o.Err
				stop()
			}
		}
	}

	s.logger.Info(ctx, "roster evaluated",
		logger.String("guild_id", guildID),
		logger.Int("raiders", len(raiders)),
		logger.Int("eligible", eligible),
		logger.Int("failed", failed),
		logger.Bool("strict", strict),
		logger.Duration("elapsed", time.Since(start)),
	)

	if first != nil {
		return nil, first
	}
	return results, nil
}

// hydrate fills a raider with what the stores know. Stored attendance inside
// the guild's attendance window sets the exact AttendanceFraction; stored
// awards and bans replace the inline ones.
func (s *Service) hydrate(ctx context.Context, guildID string, in model.RaiderInput, now time.Time, window time.Duration) (model.RaiderInput, error) {
	if in.GuildID == "" {
		in.GuildID = guildID
	}
	if in.GuildID != guildID {
		return in, fmt.Errorf("%w: raider %s is in guild %s, not %s", ErrGuildMismatch, in.ID, in.GuildID, guildID)
	}

	records, err := s.attendance.Records(ctx, guildID, in.ID)
	if err != nil {
		return in, fmt.Errorf("attendance for raider %s: %w", in.ID, err)
	}
	if len(records) > 0 {
		share := attendance.AggregateWindow(records, now.Add(-window), now).Percentage()
		in.AttendanceFraction = &share
	}

	awards, err := s.ledger.Awards(ctx, guildID, in.ID)
	if err != nil {
		return in, fmt.Errorf("awards for raider %s: %w", in.ID, err)
	}
	if len(awards) > 0 {
		in.RecentAwards = awards
	}

	bans, err := s.bans.Bans(ctx, guildID, in.ID)
	if err != nil {
		return in, fmt.Errorf("bans for raider %s: %w", in.ID, err)
	}
	if len(bans) > 0 {
		in.Bans = bans
	}
	return in, nil
}
