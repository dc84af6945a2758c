// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/talent-trends/internal/adapters/repository"
)

// TrendsHandler handles ranked trend queries.
type TrendsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps Dependencies, maxLimit int) *TrendsHandler {
	return &TrendsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTrends handles GET /trends?limit=N requests.
func (h *TrendsHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", errors.New("limit exceeds configured maximum"))
		return
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetEntity handles GET /trends/{entity_id} requests.
func (h *TrendsHandler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	entityID := strings.TrimPrefix(r.URL.Path, "/trends/")
	if entityID == "" || strings.Contains(entityID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing or malformed entity id"))
		return
	}

	detail, err := h.deps.Detail(r.Context(), entityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
