// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	ingestqueue "github.com/okian/talent-trends/internal/adapters/mq/queue"
	workerpool "github.com/okian/talent-trends/internal/adapters/mq/worker"
	repository "github.com/okian/talent-trends/internal/adapters/repository"
	"github.com/okian/talent-trends/internal/domain/decay"
	"github.com/okian/talent-trends/internal/domain/dedupe"
	"github.com/okian/talent-trends/internal/domain/model"
	"github.com/okian/talent-trends/internal/domain/types"
	"github.com/okian/talent-trends/internal/eventstore"
	"github.com/okian/talent-trends/pkg/logger"
	"github.com/okian/talent-trends/pkg/metrics"
)

// ErrDuplicate reports an observation id that was already ingested.
var ErrDuplicate = errors.New("duplicate observation")

// Service wires the ingestion pipeline: event store -> queue -> workers
// -> trend store, and exposes the read façade over the trend store.
type Service struct {
	mu sync.RWMutex

	// Core components
	events  eventstore.Store
	trends  *repository.TrendStore
	deduper dedupe.Deduper
	queue   ingestqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	windowWidth   time.Duration
	halfLife      time.Duration
	epsilon       float64
	retention     time.Duration
	clockSkew     time.Duration
	pruneInterval time.Duration

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100_000,
		dedupeSize:    500_000,
		shardCount:    8,
		windowWidth:   time.Hour,
		halfLife:      6 * time.Hour,
		epsilon:       decay.DefaultEpsilon,
		retention:     7 * 24 * time.Hour,
		clockSkew:     5 * time.Second,
		pruneInterval: time.Minute,
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting trend service...")

	dec := decay.New(
		decay.WithHalfLife(s.halfLife),
		decay.WithEpsilon(s.epsilon),
	)
	s.trends = repository.NewTrendStore(ctx,
		repository.WithShardCount(s.shardCount),
		repository.WithWindowWidth(s.windowWidth),
		repository.WithDecay(dec),
		repository.WithRetention(s.retention),
		repository.WithPruneInterval(s.pruneInterval),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = ingestqueue.NewInMemoryQueue(
		ingestqueue.WithCapacity(s.queueSize),
	)
	s.events = eventstore.NewInMemoryStore(
		eventstore.WithClockSkewTolerance(s.clockSkew),
		eventstore.WithNotifier(func(ctx context.Context, obs model.Observation) bool {
			return s.queue.Enqueue(ctx, obs)
		}),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.trends)
	s.pool.Start(ctx)

	s.startLedgerPruner(ctx)

	s.started = true
	s.logger.Info(ctx, "trend service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("shards", s.shardCount),
		logger.String("windowWidth", s.windowWidth.String()),
		logger.String("halfLife", s.halfLife.String()),
	)

	return nil
}

// startLedgerPruner prunes the observation ledger on the same cadence as
// the trend store's window pruning.
func (s *Service) startLedgerPruner(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pruneInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-s.retention)
				removed := s.events.Prune(ctx, cutoff)
				if removed > 0 {
					s.logger.Debug(ctx, "pruned observation ledger",
						logger.Int("removed", removed),
					)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping trend service...")

	// Stop ingestion first so workers can drain what remains.
	_ = s.events.Close()
	_ = s.queue.Close()

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.trends != nil {
		_ = s.trends.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()

	s.started = false
	s.logger.Info(ctx, "trend service stopped")
}

// Ingest validates and appends one observation, returning the
// (possibly minted) observation id.
func (s *Service) Ingest(ctx context.Context, obs model.Observation) (string, error) {
	if obs.ObservationID == "" {
		obs.ObservationID = uuid.New().String()
	}

	if s.deduper.SeenAndRecord(ctx, obs.ObservationID) {
		metrics.RecordObservationDuplicate()
		return obs.ObservationID, fmt.Errorf("%w: %s", ErrDuplicate, obs.ObservationID)
	}

	if err := s.events.Append(ctx, obs); err != nil {
		// The id was never processed; allow a retry.
		s.deduper.Unrecord(ctx, obs.ObservationID)
		return obs.ObservationID, err
	}

	return obs.ObservationID, nil
}

// TopN returns the top N ranked trend entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.trends.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{
			Rank:     e.Rank,
			EntityID: e.EntityID,
			Score:    e.Score,
		}
	}
	return out, nil
}

// Detail returns one entity's current score and window history.
func (s *Service) Detail(ctx context.Context, entityID string) (types.EntityDetail, error) {
	entry, err := s.trends.ScoreOf(ctx, entityID)
	if err != nil {
		return types.EntityDetail{}, err
	}

	windows, err := s.trends.Windows(ctx, entityID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return types.EntityDetail{}, err
	}

	detail := types.EntityDetail{
		EntityID:    entry.EntityID,
		Score:       entry.Score,
		LastUpdated: entry.LastUpdated.UTC().Format(time.RFC3339Nano),
	}
	for _, w := range windows {
		detail.History = append(detail.History, types.WindowBucket{
			WindowStart: w.Start.UTC().Format(time.RFC3339),
			WindowEnd:   w.End.UTC().Format(time.RFC3339),
			Aggregate:   w.Aggregate,
		})
	}
	return detail, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["trackedEntities"] = s.trends.Count(ctx)
		stats["retainedObservations"] = s.events.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTrackedEntities(s.trends.Count(ctx))
	}

	return stats
}
