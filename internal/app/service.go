// Package service wires the collaborator stores, the per-guild engines and
// the evaluation worker pool into the operations the CLI drives.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	eventqueue "github.com/okian/flps/internal/adapters/mq/queue"
	workerpool "github.com/okian/flps/internal/adapters/mq/worker"
	"github.com/okian/flps/internal/adapters/repository"
	"github.com/okian/flps/internal/domain/engine"
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/model"
	"github.com/okian/flps/pkg/logger"
	"github.com/okian/flps/pkg/metrics"
)

const (
	defaultQueueSize = 1024
	defaultCacheSize = 64
	stopTimeout      = 10 * time.Second
)

// AttendanceStore is an attendance source that also accepts ingestion.
type AttendanceStore interface {
	repository.AttendanceSource
	Add(ctx context.Context, records ...model.AttendanceRecord) error
}

// Service evaluates guild rosters and maintains loot history.
type Service struct {
	mu sync.RWMutex

	attendance AttendanceStore
	ledger     repository.AwardLedger
	bans       repository.BanRegistry

	queue *eventqueue.InMemoryQueue
	pool  *workerpool.Pool

	configMu  sync.RWMutex
	defaults  guild.Configuration
	overrides map[string]guild.Configuration
	engines   *lru.Cache[string, *engine.Engine]

	locksMu    sync.Mutex
	guildLocks map[string]*sync.Mutex

	workerCount int
	queueSize   int
	cacheSize   int

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration and in-memory stores.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		attendance:  repository.NewMemoryAttendance(),
		ledger:      repository.NewMemoryLedger(),
		bans:        repository.NewMemoryBans(),
		defaults:    guild.Default(),
		overrides:   make(map[string]guild.Configuration),
		guildLocks:  make(map[string]*sync.Mutex),
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		cacheSize:   defaultCacheSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if err := s.defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default configuration: %w", err)
	}
	for id, cfg := range s.overrides {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("guild %s: %w", id, err)
		}
	}

	cache, err := lru.New[string, *engine.Engine](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("engine cache: %w", err)
	}
	s.engines = cache

	return s, nil
}

// Start creates the job queue and starts the worker pool. Workers run until
// Stop, independent of ctx.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "flps service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("configCacheSize", s.cacheSize),
	)
	return nil
}

// Stop closes the queue, lets the workers drain it and shuts the pool down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "flps service stopped")
}

// Engine returns the engine for guildID, building and caching it on first use.
func (s *Service) Engine(guildID string) (*engine.Engine, error) {
	if eng, ok := s.engines.Get(guildID); ok {
		metrics.RecordConfigCacheHit()
		return eng, nil
	}
	metrics.RecordConfigCacheMiss()

	eng, err := engine.New(s.Configuration(guildID))
	if err != nil {
		return nil, fmt.Errorf("guild %s: %w", guildID, err)
	}
	s.engines.Add(guildID, eng)
	return eng, nil
}

// Configuration returns the effective configuration for guildID.
func (s *Service) Configuration(guildID string) guild.Configuration {
	s.configMu.RLock()
	defer s.configMu.RUnlock()

	if cfg, ok := s.overrides[guildID]; ok {
		return cfg
	}
	return s.defaults
}

// SetGuildConfiguration installs an override for guildID and drops its cached engine.
func (s *Service) SetGuildConfiguration(guildID string, cfg guild.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("guild %s: %w", guildID, err)
	}

	s.configMu.Lock()
	s.overrides[guildID] = cfg
	s.configMu.Unlock()

	s.engines.Remove(guildID)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"cachedEngines": s.engines.Len(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
	}
	return stats
}

func (s *Service) running() (*eventqueue.InMemoryQueue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.queue, nil
}
