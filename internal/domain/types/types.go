// Package types contains common types used across the application.
package types

// Entry represents one row of a ranked trends response.
type Entry struct {
	Rank     int     `json:"rank"`
	EntityID string  `json:"entity_id"`
	Score    float64 `json:"score"`
}

// WindowBucket is one aggregated time bucket in an entity's history.
type WindowBucket struct {
	WindowStart string  `json:"window_start"`
	WindowEnd   string  `json:"window_end"`
	Aggregate   float64 `json:"aggregate"`
}

// EntityDetail is the read shape for a single entity's score and history.
type EntityDetail struct {
	EntityID    string         `json:"entity_id"`
	Score       float64        `json:"score"`
	LastUpdated string         `json:"last_updated"`
	History     []WindowBucket `json:"history,omitempty"`
}
