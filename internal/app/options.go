// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"time"

	"github.com/okian/talent-trends/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the observation-id dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of lock shards in the trend store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithWindowWidth sets the aggregation bucket width.
func WithWindowWidth(width time.Duration) Option {
	return func(s *Service) {
		if width > 0 {
			s.windowWidth = width
		}
	}
}

// WithHalfLife sets the decay half-life interval.
func WithHalfLife(halfLife time.Duration) Option {
	return func(s *Service) {
		if halfLife > 0 {
			s.halfLife = halfLife
		}
	}
}

// WithDecayEpsilon sets the decay underflow clamp.
func WithDecayEpsilon(epsilon float64) Option {
	return func(s *Service) {
		if epsilon > 0 && epsilon < 1 {
			s.epsilon = epsilon
		}
	}
}

// WithRetention caps observation and window retention.
func WithRetention(retention time.Duration) Option {
	return func(s *Service) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithClockSkewTolerance tolerates future-dated timestamps up to the
// given duration.
func WithClockSkewTolerance(tolerance time.Duration) Option {
	return func(s *Service) {
		if tolerance >= 0 {
			s.clockSkew = tolerance
		}
	}
}

// WithPruneInterval sets the background prune cadence.
func WithPruneInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.pruneInterval = interval
		}
	}
}
