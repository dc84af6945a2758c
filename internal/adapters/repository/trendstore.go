// Package repository defines the trend state store interface and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/okian/talent-trends/internal/domain/decay"
	"github.com/okian/talent-trends/internal/domain/window"
	"github.com/okian/talent-trends/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Per-entity state is the unit of mutual exclusion: entities hash to a
// shard, and each shard carries its own lock, so concurrent writers to
// different entities proceed without contention while writers to the
// same entity serialize. Scores follow the pull model: they are
// recomputed lazily on read and memoized per entity with a staleness
// flag; a clean score only needs re-aging by a single decay factor,
// since score(t2) = score(t1) * exp(-(t2-t1)/halfLife) when nothing
// arrived in between.

// Default trend store configuration constants.
const (
	defaultShardCount    = 8
	defaultRetention     = 7 * 24 * time.Hour
	defaultPruneInterval = time.Minute
)

// entityState holds one entity's window buckets and memoized score.
type entityState struct {
	windows  map[int64]float64
	score    float64
	scoredAt time.Time
	stale    bool
}

type shard struct {
	mu       sync.RWMutex
	entities map[string]*entityState
}

// TrendStore implements Store.
type TrendStore struct {
	shards     []*shard
	shardCount int
	width      window.Width
	decay      *decay.Decay

	retention     time.Duration
	pruneInterval time.Duration
	now           func() time.Time

	mu     sync.Mutex
	closed bool

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTrendStore constructs a sharded trend store and starts its
// background prune loop.
func NewTrendStore(ctx context.Context, opts ...Option) *TrendStore {
	s := &TrendStore{
		shardCount:    defaultShardCount,
		width:         window.New(window.DefaultWidth),
		decay:         decay.New(),
		retention:     defaultRetention,
		pruneInterval: defaultPruneInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{entities: make(map[string]*entityState)}
	}

	s.startPruneLoop(ctx)

	return s
}

// shardFor hashes an entity id onto its owning shard.
func (s *TrendStore) shardFor(entityID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

// horizon returns the effective decay horizon: windows older than this
// contribute below epsilon and may be dropped without changing scores.
func (s *TrendStore) horizon() time.Duration {
	if h := s.decay.Horizon(); h < s.retention {
		return h
	}
	return s.retention
}

// Apply implements Store.Apply.
func (s *TrendStore) Apply(ctx context.Context, entityID string, ts time.Time, weight float64) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "closed")
		return ErrClosed
	}
	s.mu.Unlock()

	sh := s.shardFor(entityID)
	sh.mu.Lock()
	st, ok := sh.entities[entityID]
	if !ok {
		st = &entityState{windows: make(map[int64]float64)}
		sh.entities[entityID] = st
	}
	st.windows[s.width.Index(ts)] += weight
	st.stale = true
	sh.mu.Unlock()

	return nil
}

// scoreLocked refreshes the memoized score for st at instant now.
// Caller must hold the shard write lock.
func (s *TrendStore) scoreLocked(st *entityState, now time.Time) float64 {
	if !st.stale && !st.scoredAt.IsZero() {
		// Clean score: re-age instead of rescanning the windows.
		st.score *= s.decay.Factor(st.scoredAt, now)
		st.scoredAt = now
		metrics.RecordScoreReage()
		return st.score
	}

	sum := 0.0
	for idx, aggregate := range st.windows {
		sum += aggregate * s.decay.Weight(now.Sub(s.width.Midpoint(idx)))
	}
	st.score = sum
	st.scoredAt = now
	st.stale = false
	metrics.RecordScoreRecomputation()
	return sum
}

// ScoreOf implements Store.ScoreOf.
func (s *TrendStore) ScoreOf(ctx context.Context, entityID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	now := s.now()
	sh := s.shardFor(entityID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.entities[entityID]
	if !ok || len(st.windows) == 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	score := s.scoreLocked(st, now)
	return Entry{EntityID: entityID, Score: score, LastUpdated: now}, nil
}

// TopN implements Store.TopN.
func (s *TrendStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	now := s.now()
	top := newTopK(n)

	for _, sh := range s.shards {
		sh.mu.Lock()
		for entityID, st := range sh.entities {
			if len(st.windows) == 0 {
				continue
			}
			score := s.scoreLocked(st, now)
			top.offer(Entry{EntityID: entityID, Score: score, LastUpdated: now})
		}
		sh.mu.Unlock()
	}

	return top.sorted(), nil
}

// Windows implements Store.Windows.
func (s *TrendStore) Windows(ctx context.Context, entityID string) ([]WindowState, error) {
	sh := s.shardFor(entityID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	st, ok := sh.entities[entityID]
	if !ok || len(st.windows) == 0 {
		return nil, ErrNotFound
	}

	out := make([]WindowState, 0, len(st.windows))
	for idx, aggregate := range st.windows {
		out = append(out, WindowState{
			Index:     idx,
			Start:     s.width.Start(idx),
			End:       s.width.End(idx),
			Aggregate: aggregate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Prune implements Store.Prune. A bucket is dropped only when it ends
// before the cutoff, so a bucket a reader may still be scoring is never
// mutated outside the shard write lock.
func (s *TrendStore) Prune(ctx context.Context, olderThan time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for entityID, st := range sh.entities {
			for idx := range st.windows {
				if !s.width.End(idx).After(olderThan) {
					delete(st.windows, idx)
					st.stale = true
					removed++
				}
			}
			if len(st.windows) == 0 {
				delete(sh.entities, entityID)
			}
		}
		sh.mu.Unlock()
	}

	metrics.RecordWindowsPruned(removed)
	return removed
}

// Count implements Store.Count.
func (s *TrendStore) Count(ctx context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.entities)
		sh.mu.RUnlock()
	}
	return total
}

// Close stops the background prune loop and marks the store closed.
func (s *TrendStore) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stopChan)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// startPruneLoop runs periodic pruning until the store closes.
func (s *TrendStore) startPruneLoop(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				cutoff := s.now().Add(-s.horizon())
				s.Prune(ctx, cutoff)
				metrics.RecordPruneRun()
				metrics.UpdateTrackedEntities(s.Count(ctx))
			}
		}
	}()
}
