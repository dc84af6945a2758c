package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/talent-trends/pkg/logger"
)

// Entity name parts for readable synthetic entity ids.
var (
	entityPrefixes = []string{"rust", "go", "python", "typescript", "kotlin", "swift", "scala", "elixir"}
	entitySuffixes = []string{"async", "backend", "ml", "infra", "wasm", "data", "cloud", "mobile"}
)

// generate produces NumObservations observations spread across
// NumEntities entities, with timestamps over the configured spread.
func generate(ctx context.Context, cfg *Config, stats *Stats) []Observation {
	logger.Get().Info(ctx, "generating observations",
		logger.Int("numObservations", cfg.NumObservations),
		logger.Int("numEntities", cfg.NumEntities),
	)

	numEntities := cfg.NumEntities
	if numEntities < 1 {
		numEntities = 1
	}

	entities := make([]string, numEntities)
	for i := range entities {
		prefix := entityPrefixes[i%len(entityPrefixes)]
		suffix := entitySuffixes[(i/len(entityPrefixes))%len(entitySuffixes)]
		entities[i] = fmt.Sprintf("%s-%s-%d", prefix, suffix, i)
	}

	spread := cfg.Spread
	if spread <= 0 {
		spread = time.Hour
	}

	now := time.Now()
	observations := make([]Observation, cfg.NumObservations)
	for i := range observations {
		age := time.Duration(rand.Int63n(int64(spread))) //nolint:gosec // synthetic data only
		observations[i] = Observation{
			ObservationID: uuid.New().String(),
			EntityID:      entities[rand.Intn(len(entities))], //nolint:gosec // synthetic data only
			Weight:        rand.Float64() * 10,                //nolint:gosec // synthetic data only
			TS:            now.Add(-age).UTC().Format(time.RFC3339),
		}
	}

	stats.Generated = len(observations)
	return observations
}
