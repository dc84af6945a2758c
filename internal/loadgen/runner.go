package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/talent-trends/pkg/logger"
)

// settleDelay gives the ingest queue time to drain before reads.
const settleDelay = 2 * time.Second

// Run executes the complete load run: health check, generation,
// concurrent submission, trend retrieval, and verification.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting talent-trends load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("observations", cfg.NumObservations),
		logger.Int("entities", cfg.NumEntities),
		logger.Int("workers", cfg.Workers),
		logger.Int("topN", cfg.TopN),
	)

	c := newClient(cfg.Timeout)

	if err := c.get(ctx, cfg.BaseURL+"/healthz", nil); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	observations := generate(ctx, cfg, stats)

	if err := submit(ctx, cfg, c, observations, stats); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for observations to be aggregated")
	time.Sleep(settleDelay)

	var entries []Entry
	url := fmt.Sprintf("%s/trends?limit=%d", cfg.BaseURL, cfg.TopN)
	if err := c.get(ctx, url, &entries); err != nil {
		return fmt.Errorf("trend retrieval failed: %w", err)
	}
	stats.TrendsRows = len(entries)

	if err := verify(ctx, entries); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	logger.Get().Info(ctx, "load run completed",
		logger.Int("generated", stats.Generated),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("trendsRows", stats.TrendsRows),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// submit posts observations concurrently with cfg.Workers submitters.
func submit(ctx context.Context, cfg *Config, c *client, observations []Observation, stats *Stats) error {
	var successful, duplicates, failed atomic.Int64

	jobs := make(chan Observation)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obs := range jobs {
				ack, status, err := c.post(ctx, cfg.BaseURL+"/observations", obs)
				switch {
				case err != nil:
					failed.Add(1)
					if cfg.Verbose {
						logger.Get().Warn(ctx, "submission error", logger.Error(err))
					}
				case status == http.StatusAccepted:
					successful.Add(1)
				case status == http.StatusOK && ack.Duplicate:
					duplicates.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						logger.Get().Warn(ctx, "submission rejected",
							logger.Int("status", status),
							logger.String("observationID", obs.ObservationID),
						)
					}
				}
			}
		}()
	}

	for _, obs := range observations {
		select {
		case jobs <- obs:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return fmt.Errorf("submission aborted: %w", ctx.Err())
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = len(observations)
	stats.Successful = int(successful.Load())
	stats.Duplicates = int(duplicates.Load())
	stats.Failed = int(failed.Load())
	return nil
}
