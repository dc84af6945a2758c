package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/talent-trends/internal/loadgen"
	"github.com/okian/talent-trends/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumObservations = 10000
	defaultNumEntities     = 200
	defaultTopN            = 50
	defaultWorkerMult      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultSpread          = 24 * time.Hour
	defaultRunTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL         = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numObservations = flag.Int("observations", defaultNumObservations, "Number of observations to generate and submit")
		numEntities     = flag.Int("entities", defaultNumEntities, "Number of distinct entities")
		topN            = flag.Int("top", defaultTopN, "Number of top entries to fetch from /trends")
		workers         = flag.Int("workers", runtime.NumCPU()*defaultWorkerMult, "Number of concurrent submitters")
		timeout         = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		spread          = flag.Duration("spread", defaultSpread, "Timestamp spread for generated observations")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:         *baseURL,
		NumObservations: *numObservations,
		NumEntities:     *numEntities,
		TopN:            *topN,
		Workers:         *workers,
		Timeout:         *timeout,
		Spread:          *spread,
		Verbose:         *verbose,
	}

	if err := loadgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
