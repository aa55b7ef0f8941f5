// Package config defines process configuration and the per-guild FLPS
// settings, and loads them from defaults, a YAML file and the environment.
package config

import (
	"runtime"

	"github.com/okian/flps/internal/domain/guild"
)

// Defaults for process settings.
const (
	DefaultQueueSize       = 1024
	DefaultConfigCacheSize = 64
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count" yaml:"worker_count"`

	// QueueSize bounds the evaluation job queue.
	QueueSize int `koanf:"queue_size" yaml:"queue_size"`

	// ConfigCacheSize bounds the number of per-guild engines kept ready.
	ConfigCacheSize int `koanf:"config_cache_size" yaml:"config_cache_size"`

	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr" yaml:"metrics_addr"`

	// FLPS is the configuration for guilds without an override.
	FLPS guild.Configuration `koanf:"flps" yaml:"flps"`

	// Guilds holds per-guild overrides, each merged over FLPS.
	Guilds map[string]guild.Configuration `koanf:"-" yaml:"guilds,omitempty"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		WorkerCount:     runtime.NumCPU(),
		QueueSize:       DefaultQueueSize,
		ConfigCacheSize: DefaultConfigCacheSize,
		FLPS:            guild.Default(),
		Guilds:          map[string]guild.Configuration{},
	}
}
