package loadgen

import (
	"context"
	"fmt"

	"github.com/okian/talent-trends/pkg/logger"
)

// verify checks the ranking invariants on a retrieved trends response:
// dense ranks, scores non-increasing, ties broken by ascending entity id.
func verify(ctx context.Context, entries []Entry) error {
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("rank gap at position %d: got rank %d", i, e.Rank)
		}
		if e.Score < 0 {
			return fmt.Errorf("negative score for %s: %f", e.EntityID, e.Score)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.Score > prev.Score {
			return fmt.Errorf("ordering violation: %s (%f) ranked after %s (%f)",
				e.EntityID, e.Score, prev.EntityID, prev.Score)
		}
		if e.Score == prev.Score && e.EntityID < prev.EntityID {
			return fmt.Errorf("tie-break violation: %s ranked after %s with equal score",
				e.EntityID, prev.EntityID)
		}
	}

	logger.Get().Info(ctx, "ranking invariants verified", logger.Int("rows", len(entries)))
	return nil
}
