package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/planner"
)

// applyActionsRequest carries one assistant turn's action batch.
// Actions arrive as raw JSON because the assistant's output is only loosely
// typed; domain.ParseActions coerces anything unrecognizable to a no-op
// before it reaches the planner.
type applyActionsRequest struct {
	Actions      []json.RawMessage `json:"actions"`
	LocationHint string            `json:"location_hint,omitempty"`
}

// applyActionsResponse reports what the batch did, including per-destination
// failures so the client can tell the user which places could not be placed.
type applyActionsResponse struct {
	Summary  domain.ApplySummary `json:"summary"`
	Failures []domain.Failure    `json:"failures,omitempty"`
}

// ApplyActions handles POST /trips/{tripID}/actions.
func (s *Server) ApplyActions(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var body applyActionsRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	actions := domain.ParseActions(body.Actions)

	var failures []domain.Failure
	opts := planner.Options{
		LocationHint: body.LocationHint,
		OnProgress: func(p domain.Progress) {
			slog.Debug("resolving destination", "trip_id", tripID, "index", p.Index, "total", p.Total, "name", p.Name)
		},
		OnFailure: func(f domain.Failure) {
			failures = append(failures, f)
		},
	}

	summary, err := s.planner.Apply(r.Context(), tripID, actions, opts)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, applyActionsResponse{Summary: summary, Failures: failures})
}
