// Package repository defines the trend state store interface and errors.
package repository

import (
	"context"
	"time"
)

// Entry represents one ranked trend row.
type Entry struct {
	Rank        int
	EntityID    string
	Score       float64
	LastUpdated time.Time
}

// WindowState is one aggregated bucket of an entity's retained activity.
type WindowState struct {
	Index     int64
	Start     time.Time
	End       time.Time
	Aggregate float64
}

// Store provides read/write access to per-entity window state and the
// decayed scores derived from it.
type Store interface {
	// Apply folds one observation into the owning entity's window state.
	// O(1) amortized; marks the entity's memoized score stale.
	Apply(ctx context.Context, entityID string, ts time.Time, weight float64) error

	// ScoreOf returns the current decayed score for an entity.
	// Returns ErrNotFound if the entity has no retained windows.
	ScoreOf(ctx context.Context, entityID string) (Entry, error)

	// TopN returns the n highest-scoring entities, ordered score
	// descending with ascending entity id breaking ties.
	// Returns ErrInvalidLimit if n < 1. An n larger than the live
	// population returns every entity.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Windows returns the entity's live buckets ordered by index.
	// Returns ErrNotFound for unknown entities.
	Windows(ctx context.Context, entityID string) ([]WindowState, error)

	// Prune drops windows that end before olderThan. Idempotent;
	// returns the number of buckets removed.
	Prune(ctx context.Context, olderThan time.Time) int

	// Count returns the number of entities with live window state.
	Count(ctx context.Context) int
}
