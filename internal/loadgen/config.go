// Package loadgen generates synthetic observations, submits them against
// a running talent-trends instance, and verifies the returned rankings.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL         string        // Base URL of the service
	NumObservations int           // Number of observations to generate
	NumEntities     int           // Number of distinct entities to spread them over
	TopN            int           // Number of top entries to fetch
	Workers         int           // Number of concurrent submitters
	Timeout         time.Duration // HTTP request timeout
	Spread          time.Duration // Timestamps are spread over [now-Spread, now]
	Verbose         bool          // Enable verbose logging
}

// Observation is the wire shape submitted to POST /observations.
type Observation struct {
	ObservationID string  `json:"observation_id"`
	EntityID      string  `json:"entity_id"`
	Weight        float64 `json:"weight"`
	TS            string  `json:"ts"`
}

// Entry is the wire shape of one ranked trend row.
type Entry struct {
	Rank     int     `json:"rank"`
	EntityID string  `json:"entity_id"`
	Score    float64 `json:"score"`
}

// AckResponse is the response from observation submission.
type AckResponse struct {
	Status        string `json:"status"`
	ObservationID string `json:"observation_id"`
	Duplicate     bool   `json:"duplicate"`
}

// Stats holds load run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Duplicates int
	Failed     int
	TrendsRows int
	StartTime  time.Time
	Duration   time.Duration
}
