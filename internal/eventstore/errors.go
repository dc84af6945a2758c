package eventstore

import "errors"

// Sentinel kinds for event store errors.
var (
	ErrInvalidObservation = errors.New("invalid observation")
	ErrUnavailable        = errors.New("event store unavailable")
	ErrBackpressure       = errors.New("ingest backpressure")
)
