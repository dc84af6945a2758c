// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the observation-id dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of lock shards in the trend store.
	ShardCount int `koanf:"shard_count"`

	// MaxTrendsLimit caps GET /trends?limit.
	MaxTrendsLimit int `koanf:"max_trends_limit"`

	// WindowSeconds sets the aggregation bucket width.
	WindowSeconds int `koanf:"window_seconds"`

	// HalfLifeSeconds sets the decay half-life interval.
	HalfLifeSeconds int `koanf:"half_life_seconds"`

	// RetentionSeconds caps observation and window retention.
	RetentionSeconds int `koanf:"retention_seconds"`

	// DecayEpsilon is the underflow clamp for decay weights.
	DecayEpsilon float64 `koanf:"decay_epsilon"`

	// ClockSkewSeconds tolerates future-dated observation timestamps.
	ClockSkewSeconds int `koanf:"clock_skew_seconds"`

	// PruneIntervalSeconds sets the background prune cadence.
	PruneIntervalSeconds int `koanf:"prune_interval_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":3000",
		QueueSize:            100_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           500_000,
		ShardCount:           8,
		MaxTrendsLimit:       100,
		WindowSeconds:        3600,
		HalfLifeSeconds:      6 * 3600,
		RetentionSeconds:     7 * 24 * 3600,
		DecayEpsilon:         1e-9,
		ClockSkewSeconds:     5,
		PruneIntervalSeconds: 60,
	}
}
