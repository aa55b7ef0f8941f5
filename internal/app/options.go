package service

import (
	"github.com/okian/flps/internal/adapters/repository"
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the evaluation job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithConfigCacheSize bounds the number of per-guild engines kept ready.
func WithConfigCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultConfiguration sets the configuration used for guilds without an override.
func WithDefaultConfiguration(cfg guild.Configuration) Option {
	return func(s *Service) {
		s.defaults = cfg
	}
}

// WithGuildConfigurations sets per-guild configuration overrides.
func WithGuildConfigurations(cfgs map[string]guild.Configuration) Option {
	return func(s *Service) {
		for id, cfg := range cfgs {
			s.overrides[id] = cfg
		}
	}
}

// WithAttendanceStore replaces the in-memory attendance store.
func WithAttendanceStore(store AttendanceStore) Option {
	return func(s *Service) {
		if store != nil {
			s.attendance = store
		}
	}
}

// WithAwardLedger replaces the in-memory award ledger.
func WithAwardLedger(ledger repository.AwardLedger) Option {
	return func(s *Service) {
		if ledger != nil {
			s.ledger = ledger
		}
	}
}

// WithBanRegistry replaces the in-memory ban registry.
func WithBanRegistry(bans repository.BanRegistry) Option {
	return func(s *Service) {
		if bans != nil {
			s.bans = bans
		}
	}
}
