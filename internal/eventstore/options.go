// Package eventstore implements the append-only ledger of raw observations.
package eventstore

import "time"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithClockSkewTolerance sets how far in the future timestamps may lie.
func WithClockSkewTolerance(tolerance time.Duration) Option {
	return func(s *InMemoryStore) {
		if tolerance >= 0 {
			s.skewTolerance = tolerance
		}
	}
}

// WithNotifier sets the ingested-notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *InMemoryStore) {
		s.notifier = n
	}
}

// WithClock overrides the wall clock, used by tests to pin validation.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
