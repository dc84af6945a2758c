// Package eventstore implements the append-only ledger of raw observations.
//
// Appended observations are immutable and retained for a bounded window;
// Prune removes everything before a retention cutoff. On each successful
// append the store emits an "ingested" notification, which the service
// wires to the ingest queue feeding the aggregating workers.
package eventstore

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/talent-trends/internal/domain/model"
	"github.com/okian/talent-trends/pkg/metrics"
)

// defaultClockSkewTolerance bounds how far in the future a timestamp may
// lie before the observation is rejected.
const defaultClockSkewTolerance = 5 * time.Second

// Notifier receives an ingested notification for a newly appended
// observation. Returning false signals backpressure: the append is rolled
// back and the caller sees ErrBackpressure.
type Notifier func(ctx context.Context, obs model.Observation) bool

// Store is the append-only observation ledger.
type Store interface {
	// Append validates and records an observation, then emits the
	// ingested notification. Fails with ErrInvalidObservation on bad
	// weight/timestamp and ErrUnavailable when the store is closed.
	Append(ctx context.Context, obs model.Observation) error

	// Prune removes observations with timestamps before olderThan.
	// Idempotent; returns the number of observations removed.
	Prune(ctx context.Context, olderThan time.Time) int

	// History returns the retained observations for one entity in
	// append order. Returns nil for unknown entities.
	History(ctx context.Context, entityID string) []model.Observation

	// Count returns the total number of retained observations.
	Count(ctx context.Context) int

	// Close marks the store unavailable for further appends.
	Close() error
}

// InMemoryStore implements Store with a per-entity slice ledger.
type InMemoryStore struct {
	mu       sync.RWMutex
	byEntity map[string][]model.Observation
	total    int
	closed   bool

	skewTolerance time.Duration
	notifier      Notifier
	now           func() time.Time
}

// NewInMemoryStore creates a new in-memory ledger with configuration options.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		byEntity:      make(map[string][]model.Observation),
		skewTolerance: defaultClockSkewTolerance,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// validate checks the observation against the append contract.
func (s *InMemoryStore) validate(obs model.Observation) error {
	if obs.EntityID == "" {
		return fmt.Errorf("%w: empty entity_id", ErrInvalidObservation)
	}
	if obs.Weight < 0 || math.IsNaN(obs.Weight) || math.IsInf(obs.Weight, 0) {
		return fmt.Errorf("%w: weight must be a non-negative finite number", ErrInvalidObservation)
	}
	if obs.TS.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidObservation)
	}
	if obs.TS.After(s.now().Add(s.skewTolerance)) {
		return fmt.Errorf("%w: timestamp beyond clock-skew tolerance", ErrInvalidObservation)
	}
	return nil
}

// Append implements Store.Append.
func (s *InMemoryStore) Append(ctx context.Context, obs model.Observation) error {
	if err := s.validate(obs); err != nil {
		metrics.RecordObservationInvalid()
		metrics.RecordErrorByComponent("eventstore", "invalid_observation")
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("eventstore", "unavailable")
		return ErrUnavailable
	}
	s.byEntity[obs.EntityID] = append(s.byEntity[obs.EntityID], obs)
	s.total++
	s.mu.Unlock()

	if s.notifier != nil && !s.notifier(ctx, obs) {
		// Backpressure: keep the ledger consistent with what the
		// aggregator will actually see.
		s.mu.Lock()
		ledger := s.byEntity[obs.EntityID]
		if n := len(ledger); n > 0 && ledger[n-1].ObservationID == obs.ObservationID {
			s.byEntity[obs.EntityID] = ledger[:n-1]
			s.total--
			if len(s.byEntity[obs.EntityID]) == 0 {
				delete(s.byEntity, obs.EntityID)
			}
		}
		s.mu.Unlock()
		metrics.RecordErrorByComponent("eventstore", "backpressure")
		return ErrBackpressure
	}

	metrics.RecordObservationIngested()
	return nil
}

// Prune implements Store.Prune.
func (s *InMemoryStore) Prune(ctx context.Context, olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for entityID, ledger := range s.byEntity {
		kept := ledger[:0]
		for _, obs := range ledger {
			if obs.TS.Before(olderThan) {
				removed++
				continue
			}
			kept = append(kept, obs)
		}
		if len(kept) == 0 {
			delete(s.byEntity, entityID)
			continue
		}
		s.byEntity[entityID] = kept
	}
	s.total -= removed

	metrics.RecordObservationsPruned(removed)
	return removed
}

// History implements Store.History. The returned slice is a copy.
func (s *InMemoryStore) History(ctx context.Context, entityID string) []model.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, ok := s.byEntity[entityID]
	if !ok {
		return nil
	}
	out := make([]model.Observation, len(ledger))
	copy(out, ledger)
	return out
}

// Count implements Store.Count.
func (s *InMemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Close implements Store.Close. Idempotent.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
