// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/talent-trends/internal/app"
	"github.com/okian/talent-trends/internal/domain/model"
	"github.com/okian/talent-trends/internal/eventstore"
)

// observationRequest mirrors the OpenAPI schema for POST /observations.
type observationRequest struct {
	ObservationID string  `json:"observation_id,omitempty"`
	EntityID      string  `json:"entity_id"`
	Weight        float64 `json:"weight"`
	TS            string  `json:"ts"`
}

func (o observationRequest) validate() error {
	switch {
	case strings.TrimSpace(o.EntityID) == "":
		return errors.New("missing entity_id")
	case strings.TrimSpace(o.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339, o.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// ObservationsHandler handles observation ingestion requests.
type ObservationsHandler struct {
	deps Dependencies
}

// NewObservationsHandler creates a new observations handler.
func NewObservationsHandler(deps Dependencies) *ObservationsHandler {
	return &ObservationsHandler{deps: deps}
}

// HandlePostObservation handles POST /observations requests.
func (h *ObservationsHandler) HandlePostObservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req observationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_observation", err)
		return
	}

	ts, _ := time.Parse(time.RFC3339, req.TS)
	obs := model.Observation{
		ObservationID: req.ObservationID,
		EntityID:      req.EntityID,
		Weight:        req.Weight,
		TS:            ts,
	}

	id, err := h.deps.Ingest(r.Context(), obs)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ObservationID: id})
	case errors.Is(err, app.ErrDuplicate):
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ObservationID: id, Duplicate: true})
	case errors.Is(err, eventstore.ErrInvalidObservation):
		writeError(w, http.StatusBadRequest, "invalid_observation", err)
	case errors.Is(err, eventstore.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, eventstore.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
