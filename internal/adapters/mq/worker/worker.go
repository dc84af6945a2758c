// Package worker defines the ingestion workers that fold queued
// observations into the trend store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/talent-trends/internal/adapters/repository"
	"github.com/okian/talent-trends/internal/domain/model"
	"github.com/okian/talent-trends/pkg/logger"
	"github.com/okian/talent-trends/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second

	maxApplyAttempts = 5
	applyBackoffBase = 50 * time.Millisecond
)

// Observation is what workers read off the queue.
type Observation = model.Observation

// Applier folds an observation into per-entity window state.
type Applier interface {
	Apply(ctx context.Context, entityID string, ts time.Time, weight float64) error
}

// Queue defines how workers receive observations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Observation
}

// Worker processes observations until stopped.
type Worker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(queue Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	observations := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case obs, ok := <-observations:
			if !ok {
				return
			}
			if err := w.process(ctx, obs); err != nil {
				w.logger.Error(ctx, "failed to process observation",
					logger.String("observationID", obs.ObservationID),
					logger.String("entityID", obs.EntityID),
					logger.Error(err),
				)
			}
		}
	}
}

// process applies a single observation, retrying with exponential
// backoff while the store reports unavailability. Persistent failure is
// logged by the caller, never dropped silently.
func (w *Worker) process(ctx context.Context, obs Observation) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	backoff := applyBackoffBase
	var err error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		err = w.applier.Apply(ctx, obs.EntityID, obs.TS, obs.Weight)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrClosed) {
			break
		}
		metrics.RecordWorkerRetry()
		select {
		case <-ctx.Done():
			return fmt.Errorf("apply aborted: %w", ctx.Err())
		case <-w.shutdown:
			return fmt.Errorf("apply aborted: worker shutting down: %w", err)
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", "apply_error")
	return fmt.Errorf("apply failed for observation %s: %w", obs.ObservationID, err)
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers draining a shared queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a worker pool of workerCount workers.
func NewPool(workerCount int, queue Queue, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(queue, applier, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers, waiting up to a timeout per worker.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}
