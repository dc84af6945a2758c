// Package repository defines the trend state store interface and errors.
package repository

import (
	"time"

	"github.com/okian/talent-trends/internal/domain/decay"
	"github.com/okian/talent-trends/internal/domain/window"
)

// Option applies a configuration option to the TrendStore.
type Option func(*TrendStore)

// WithShardCount sets the number of lock shards.
func WithShardCount(count int) Option {
	return func(s *TrendStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithWindowWidth sets the aggregation bucket width.
func WithWindowWidth(width time.Duration) Option {
	return func(s *TrendStore) {
		if width > 0 {
			s.width = window.New(width)
		}
	}
}

// WithDecay sets the decay function used for scoring.
func WithDecay(d *decay.Decay) Option {
	return func(s *TrendStore) {
		if d != nil {
			s.decay = d
		}
	}
}

// WithRetention caps how long window state is retained regardless of
// the decay horizon.
func WithRetention(retention time.Duration) Option {
	return func(s *TrendStore) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithPruneInterval sets the background prune cadence.
func WithPruneInterval(interval time.Duration) Option {
	return func(s *TrendStore) {
		if interval > 0 {
			s.pruneInterval = interval
		}
	}
}

// WithClock overrides the wall clock, used by tests to pin decay ages.
func WithClock(now func() time.Time) Option {
	return func(s *TrendStore) {
		if now != nil {
			s.now = now
		}
	}
}
