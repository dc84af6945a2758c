package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/talent-trends/internal/domain/decay"
)

func newBenchStore(b *testing.B) *TrendStore {
	b.Helper()
	store := NewTrendStore(context.Background(),
		WithShardCount(32),
		WithWindowWidth(time.Hour),
		WithDecay(decay.New(decay.WithHalfLife(6*time.Hour))),
		WithPruneInterval(time.Hour),
	)
	b.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEntities(b *testing.B, store *TrendStore, n int) {
	b.Helper()
	ctx := context.Background()
	now := time.Now()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("entity-%d", i)
		ts := now.Add(-time.Duration(rand.Intn(24)) * time.Hour)
		if err := store.Apply(ctx, id, ts, rand.Float64()*10); err != nil {
			b.Fatalf("seed failed: %v", err)
		}
	}
}

func BenchmarkTrendStore_Apply(b *testing.B) {
	store := newBenchStore(b)
	ctx := context.Background()
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("entity-%d", i%10000)
		if err := store.Apply(ctx, id, now, 1.0); err != nil {
			b.Fatalf("apply failed: %v", err)
		}
	}
}

func BenchmarkTrendStore_ApplyParallel(b *testing.B) {
	store := newBenchStore(b)
	now := time.Now()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := rand.Int()
		for pb.Next() {
			i++
			id := fmt.Sprintf("entity-%d", i%10000)
			if err := store.Apply(ctx, id, now, 1.0); err != nil {
				b.Fatalf("apply failed: %v", err)
			}
		}
	})
}

func BenchmarkTrendStore_ScoreOf(b *testing.B) {
	store := newBenchStore(b)
	seedEntities(b, store, 10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("entity-%d", i%10000)
		if _, err := store.ScoreOf(ctx, id); err != nil {
			b.Fatalf("score failed: %v", err)
		}
	}
}

func BenchmarkTrendStore_TopN(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("k=%d", size), func(b *testing.B) {
			store := newBenchStore(b)
			seedEntities(b, store, 100000)
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := store.TopN(ctx, size); err != nil {
					b.Fatalf("topn failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkTrendStore_MixedLoad(b *testing.B) {
	store := newBenchStore(b)
	seedEntities(b, store, 10000)
	now := time.Now()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := rand.Int()
		for pb.Next() {
			i++
			switch i % 10 {
			case 0:
				if _, err := store.TopN(ctx, 50); err != nil {
					b.Fatalf("topn failed: %v", err)
				}
			case 1, 2:
				id := fmt.Sprintf("entity-%d", i%10000)
				if _, err := store.ScoreOf(ctx, id); err != nil {
					b.Fatalf("score failed: %v", err)
				}
			default:
				id := fmt.Sprintf("entity-%d", i%10000)
				if err := store.Apply(ctx, id, now, 1.0); err != nil {
					b.Fatalf("apply failed: %v", err)
				}
			}
		}
	})
}
