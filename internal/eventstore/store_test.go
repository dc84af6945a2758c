package eventstore_test

import (
	"context"
	"math"
	"testing"
	"time"

	model "github.com/okian/talent-trends/internal/domain/model"
	eventstore "github.com/okian/talent-trends/internal/eventstore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryStore_Append(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a new event store", t, func() {
		store := eventstore.NewInMemoryStore(eventstore.WithClock(clock))
		ctx := context.Background()

		Convey("When a valid observation is appended", func() {
			obs := model.Observation{
				ObservationID: "obs-1",
				EntityID:      "topic1",
				Weight:        2.5,
				TS:            now.Add(-time.Minute),
			}
			err := store.Append(ctx, obs)

			Convey("Then it should be retained", func() {
				So(err, ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)

				history := store.History(ctx, "topic1")
				So(history, ShouldHaveLength, 1)
				So(history[0].ObservationID, ShouldEqual, "obs-1")
				So(history[0].Weight, ShouldEqual, 2.5)
			})
		})

		Convey("When appends carry invalid fields", func() {
			base := model.Observation{
				ObservationID: "obs-1",
				EntityID:      "topic1",
				Weight:        1.0,
				TS:            now,
			}

			Convey("Then an empty entity id is rejected", func() {
				obs := base
				obs.EntityID = ""
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)
			})

			Convey("Then a negative weight is rejected", func() {
				obs := base
				obs.Weight = -1.0
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)
			})

			Convey("Then NaN and infinite weights are rejected", func() {
				obs := base
				obs.Weight = math.NaN()
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)

				obs.Weight = math.Inf(1)
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)
			})

			Convey("Then a zero timestamp is rejected", func() {
				obs := base
				obs.TS = time.Time{}
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)
			})

			Convey("Then a timestamp too far in the future is rejected", func() {
				obs := base
				obs.TS = now.Add(time.Minute)
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrInvalidObservation)
			})

			Convey("And nothing invalid is retained", func() {
				obs := base
				obs.Weight = -1.0
				_ = store.Append(ctx, obs)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the timestamp sits within the skew tolerance", func() {
			obs := model.Observation{
				ObservationID: "obs-1",
				EntityID:      "topic1",
				Weight:        1.0,
				TS:            now.Add(3 * time.Second),
			}

			Convey("Then it should be accepted", func() {
				So(store.Append(ctx, obs), ShouldBeNil)
			})
		})

		Convey("When a zero weight is appended", func() {
			obs := model.Observation{
				ObservationID: "obs-1",
				EntityID:      "topic1",
				Weight:        0,
				TS:            now,
			}

			Convey("Then it should be accepted", func() {
				So(store.Append(ctx, obs), ShouldBeNil)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)
			obs := model.Observation{
				ObservationID: "obs-1",
				EntityID:      "topic1",
				Weight:        1.0,
				TS:            now,
			}

			Convey("Then appends fail with ErrUnavailable", func() {
				So(store.Append(ctx, obs), ShouldWrap, eventstore.ErrUnavailable)
			})
		})
	})
}

func TestInMemoryStore_Notifier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a store whose notifier accepts", t, func() {
		var notified []model.Observation
		store := eventstore.NewInMemoryStore(
			eventstore.WithClock(clock),
			eventstore.WithNotifier(func(ctx context.Context, obs model.Observation) bool {
				notified = append(notified, obs)
				return true
			}),
		)
		ctx := context.Background()

		Convey("When an observation is appended", func() {
			obs := model.Observation{ObservationID: "obs-1", EntityID: "topic1", Weight: 1.0, TS: now}
			So(store.Append(ctx, obs), ShouldBeNil)

			Convey("Then the notifier sees it once", func() {
				So(notified, ShouldHaveLength, 1)
				So(notified[0].ObservationID, ShouldEqual, "obs-1")
			})
		})
	})

	Convey("Given a store whose notifier reports backpressure", t, func() {
		store := eventstore.NewInMemoryStore(
			eventstore.WithClock(clock),
			eventstore.WithNotifier(func(ctx context.Context, obs model.Observation) bool {
				return false
			}),
		)
		ctx := context.Background()

		Convey("When an observation is appended", func() {
			obs := model.Observation{ObservationID: "obs-1", EntityID: "topic1", Weight: 1.0, TS: now}
			err := store.Append(ctx, obs)

			Convey("Then the append fails with ErrBackpressure", func() {
				So(err, ShouldWrap, eventstore.ErrBackpressure)
			})

			Convey("And the ledger is rolled back", func() {
				So(store.Count(ctx), ShouldEqual, 0)
				So(store.History(ctx, "topic1"), ShouldBeNil)
			})
		})
	})
}

func TestInMemoryStore_Prune(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a store with observations of mixed ages", t, func() {
		store := eventstore.NewInMemoryStore(eventstore.WithClock(clock))
		ctx := context.Background()

		old := model.Observation{ObservationID: "obs-old", EntityID: "stale", Weight: 1.0, TS: now.Add(-48 * time.Hour)}
		mixOld := model.Observation{ObservationID: "obs-mix-old", EntityID: "mixed", Weight: 1.0, TS: now.Add(-48 * time.Hour)}
		mixNew := model.Observation{ObservationID: "obs-mix-new", EntityID: "mixed", Weight: 1.0, TS: now}

		So(store.Append(ctx, old), ShouldBeNil)
		So(store.Append(ctx, mixOld), ShouldBeNil)
		So(store.Append(ctx, mixNew), ShouldBeNil)

		Convey("When pruning with a one-day cutoff", func() {
			removed := store.Prune(ctx, now.Add(-24*time.Hour))

			Convey("Then only the old observations are removed", func() {
				So(removed, ShouldEqual, 2)
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.History(ctx, "stale"), ShouldBeNil)

				history := store.History(ctx, "mixed")
				So(history, ShouldHaveLength, 1)
				So(history[0].ObservationID, ShouldEqual, "obs-mix-new")
			})

			Convey("And pruning again removes nothing", func() {
				So(store.Prune(ctx, now.Add(-24*time.Hour)), ShouldEqual, 0)
			})
		})
	})
}

func TestInMemoryStore_History(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	Convey("Given a store with several appends for one entity", t, func() {
		store := eventstore.NewInMemoryStore(eventstore.WithClock(clock))
		ctx := context.Background()

		for i, id := range []string{"obs-1", "obs-2", "obs-3"} {
			obs := model.Observation{
				ObservationID: id,
				EntityID:      "topic1",
				Weight:        float64(i + 1),
				TS:            now.Add(time.Duration(i-3) * time.Minute),
			}
			So(store.Append(ctx, obs), ShouldBeNil)
		}

		Convey("When reading the history", func() {
			history := store.History(ctx, "topic1")

			Convey("Then observations come back in append order", func() {
				So(history, ShouldHaveLength, 3)
				So(history[0].ObservationID, ShouldEqual, "obs-1")
				So(history[2].ObservationID, ShouldEqual, "obs-3")
			})

			Convey("And mutating the copy does not touch the ledger", func() {
				history[0].Weight = 999
				again := store.History(ctx, "topic1")
				So(again[0].Weight, ShouldEqual, 1.0)
			})
		})

		Convey("When reading an unknown entity", func() {
			Convey("Then the history is nil", func() {
				So(store.History(ctx, "missing"), ShouldBeNil)
			})
		})
	})
}
