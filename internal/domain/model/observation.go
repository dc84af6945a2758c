// Package model contains domain models passed between layers.
package model

import "time"

// Observation represents a single labor-market signal observation
// submitted by clients. Fields mirror the OpenAPI schema for /observations.
// An Observation is immutable once appended to the event store.
type Observation struct {
	ObservationID string    // unique id for idempotency
	EntityID      string    // subject identifier, e.g. a skill name
	Weight        float64   // non-negative signal weight
	TS            time.Time // observation timestamp
}

// TrendScore captures an entity's current decayed trend score.
// It is derived state: always recomputable from the retained
// observations within the decay horizon.
type TrendScore struct {
	EntityID    string
	Score       float64
	LastUpdated time.Time
}
