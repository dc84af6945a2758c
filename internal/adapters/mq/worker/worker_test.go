package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/talent-trends/internal/adapters/mq/queue"
	worker "github.com/okian/talent-trends/internal/adapters/mq/worker"
	repository "github.com/okian/talent-trends/internal/adapters/repository"
	model "github.com/okian/talent-trends/internal/domain/model"
	logging "github.com/okian/talent-trends/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	obsChan chan queue.Observation
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		obsChan: make(chan queue.Observation, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Observation {
	return mq.obsChan
}

func (mq *mockQueue) add(obs queue.Observation) {
	mq.obsChan <- obs
}

func (mq *mockQueue) close() {
	close(mq.obsChan)
}

type appliedObservation struct {
	entityID string
	ts       time.Time
	weight   float64
}

type mockApplier struct {
	mu      sync.Mutex
	applied []appliedObservation
	// failures maps entity id to the number of times Apply should fail
	// with err before succeeding.
	failures map[string]int
	err      error
}

func newMockApplier() *mockApplier {
	return &mockApplier{
		failures: make(map[string]int),
	}
}

func (ma *mockApplier) Apply(ctx context.Context, entityID string, ts time.Time, weight float64) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()

	if remaining, exists := ma.failures[entityID]; exists && remaining > 0 {
		ma.failures[entityID] = remaining - 1
		return ma.err
	}
	ma.applied = append(ma.applied, appliedObservation{entityID: entityID, ts: ts, weight: weight})
	return nil
}

func (ma *mockApplier) setFailures(entityID string, count int, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.failures[entityID] = count
	ma.err = err
}

func (ma *mockApplier) appliedFor(entityID string) []appliedObservation {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	var out []appliedObservation
	for _, a := range ma.applied {
		if a.entityID == entityID {
			out = append(out, a)
		}
	}
	return out
}

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if cond() {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func testObservation(id, entityID string, weight float64) model.Observation {
	return model.Observation{
		ObservationID: id,
		EntityID:      entityID,
		Weight:        weight,
		TS:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWorker_ProcessesObservations(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()
		w := worker.NewWorker(mq, applier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When observations arrive on the queue", func() {
			mq.add(testObservation("obs-1", "topic1", 1.5))
			mq.add(testObservation("obs-2", "topic2", 2.5))

			convey.Convey("Then each is applied exactly once", func() {
				ok := waitFor(func() bool {
					return len(applier.appliedFor("topic1")) == 1 &&
						len(applier.appliedFor("topic2")) == 1
				}, time.Second)
				convey.So(ok, convey.ShouldBeTrue)

				applied := applier.appliedFor("topic1")
				convey.So(applied[0].weight, convey.ShouldEqual, 1.5)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then shutdown completes cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestWorker_RetriesWhileStoreClosed(t *testing.T) {
	convey.Convey("Given an applier that fails transiently with ErrClosed", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()
		applier.setFailures("topic1", 2, repository.ErrClosed)
		w := worker.NewWorker(mq, applier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When an observation arrives", func() {
			mq.add(testObservation("obs-1", "topic1", 1.0))

			convey.Convey("Then it is retried until it succeeds", func() {
				ok := waitFor(func() bool {
					return len(applier.appliedFor("topic1")) == 1
				}, 2*time.Second)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorker_DoesNotRetryOtherErrors(t *testing.T) {
	convey.Convey("Given an applier that fails with a non-retryable error", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()
		applier.setFailures("topic1", 100, errors.New("boom"))
		w := worker.NewWorker(mq, applier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When an observation arrives", func() {
			mq.add(testObservation("obs-1", "topic1", 1.0))
			mq.add(testObservation("obs-2", "topic2", 2.0))

			convey.Convey("Then the failure does not stall the worker", func() {
				ok := waitFor(func() bool {
					return len(applier.appliedFor("topic2")) == 1
				}, time.Second)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(applier.appliedFor("topic1"), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorker_StopsWhenQueueCloses(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		mq := newMockQueue()
		applier := newMockApplier()
		w := worker.NewWorker(mq, applier, worker.WithName("test-worker"))

		done := make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			w.Run(ctx)
			close(done)
		}()

		convey.Convey("When the queue closes", func() {
			mq.close()

			convey.Convey("Then the worker loop exits", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool_ProcessesAcrossWorkers(t *testing.T) {
	convey.Convey("Given a pool draining a real queue", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		applier := newMockApplier()
		pool := worker.NewPool(4, q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When observations are enqueued", func() {
			for i := 0; i < 20; i++ {
				ok := q.Enqueue(ctx, testObservation("obs", "topic1", 1.0))
				convey.So(ok, convey.ShouldBeTrue)
			}

			convey.Convey("Then all of them are applied", func() {
				ok := waitFor(func() bool {
					return len(applier.appliedFor("topic1")) == 20
				}, 2*time.Second)
				convey.So(ok, convey.ShouldBeTrue)

				pool.Stop()
			})
		})
	})
}
