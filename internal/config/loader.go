package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/flps/internal/domain/guild"
)

// Environment variables read by Load.
const (
	EnvPrefix = "FLPS_"
	EnvFile   = "FLPS_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FLPS_CONFIG is set
//  3. env (prefix FLPS_, "__" separates nesting levels)
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, os.Getenv(EnvFile))
}

// LoadFrom is Load with an explicit file path. An empty path skips the file layer.
func LoadFrom(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FLPS_WORKER_COUNT -> worker_count, FLPS_FLPS__RECENCY__WINDOW_DAYS -> flps.recency.window_days
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Each override starts from the merged default so partial overrides work.
	cfg.Guilds = make(map[string]guild.Configuration)
	for _, id := range k.MapKeys("guilds") {
		override := cfg.FLPS
		if err := k.Cut("guilds."+id).UnmarshalWithConf("", &override, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: guild %s: %w", ErrLoadConfig, id, err)
		}
		cfg.Guilds[id] = override
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks process settings and every guild configuration.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.WorkerCount < 0 {
		errs = append(errs, fmt.Errorf("worker_count must not be negative, got %d", c.WorkerCount))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue_size must be positive, got %d", c.QueueSize))
	}
	if c.ConfigCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("config_cache_size must be positive, got %d", c.ConfigCacheSize))
	}
	if err := c.FLPS.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("flps: %w", err))
	}
	for id, g := range c.Guilds {
		if err := g.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("guilds.%s: %w", id, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
