package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/geo"
	"github.com/oskarlind/wayplan/backend/internal/planner"
)

// dayRoute is one day's destinations plus its route summary.
type dayRoute struct {
	Day          int                  `json:"day"`
	Destinations []domain.Destination `json:"destinations"`
	Metrics      domain.RouteMetrics  `json:"metrics"`
}

// ListDestinations handles GET /trips/{tripID}/destinations.
// Destinations come back grouped by day with per-day route metrics.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	dests, err := s.dests.ListByTripID(r.Context(), tripID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	grouped := planner.GroupByDay(dests)
	dayKeys := lo.Keys(grouped)
	sort.Ints(dayKeys)

	days := make([]dayRoute, 0, len(grouped))
	for _, day := range dayKeys {
		bucket := grouped[day]
		route := s.distancer.Route(r.Context(), bucket)
		days = append(days, dayRoute{
			Day:          day,
			Destinations: bucket,
			Metrics: domain.RouteMetrics{
				TotalDistanceKm:   route.Kilometers,
				EstimatedMinutes:  geo.TravelMinutes(route.Kilometers),
				UsedRealDistances: route.UsedReal,
			},
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"days": days})
}

// createDestinationRequest is the body for a manual destination insert.
type createDestinationRequest struct {
	Name         string               `json:"name"`
	Day          *int                 `json:"day,omitempty"`
	Category     domain.PlaceCategory `json:"category,omitempty"`
	Coordinates  *domain.Coordinates  `json:"coordinates,omitempty"`
	LocationHint string               `json:"location_hint,omitempty"`
}

// CreateDestination handles POST /trips/{tripID}/destinations.
func (s *Server) CreateDestination(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var body createDestinationRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	draft := domain.DestinationDraft{
		Name:        body.Name,
		DayHint:     body.Day,
		Category:    body.Category,
		Coordinates: body.Coordinates,
	}
	created, err := s.planner.AddDestination(r.Context(), tripID, draft, body.LocationHint)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// updateDestinationRequest carries the fields a client may edit directly.
// Day and position moves go through the planner endpoints instead, so the
// density invariant cannot be broken by a plain PATCH.
type updateDestinationRequest struct {
	Name        *string               `json:"name,omitempty"`
	Category    *domain.PlaceCategory `json:"category,omitempty"`
	Coordinates *domain.Coordinates   `json:"coordinates,omitempty"`
	Address     *string               `json:"address,omitempty"`
}

// UpdateDestination handles PATCH /trips/{tripID}/destinations/{destinationID}.
func (s *Server) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	destID, err := uuidParam(r, "destinationID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "destination not found")
		return
	}

	var body updateDestinationRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	dest, err := s.dests.GetByID(r.Context(), tripID, destID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if body.Name != nil {
		dest.Name = *body.Name
	}
	if body.Category != nil {
		dest.Category = *body.Category
	}
	if body.Coordinates != nil {
		dest.Coordinates = body.Coordinates
	}
	if body.Address != nil {
		dest.Address = *body.Address
	}

	updated, err := s.dests.Update(r.Context(), dest)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteDestination handles DELETE /trips/{tripID}/destinations/{destinationID}.
// The planner closes the position gap the deletion leaves.
func (s *Server) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	destID, err := uuidParam(r, "destinationID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "destination not found")
		return
	}

	if err := s.planner.RemoveDestination(r.Context(), tripID, destID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderDayRequest carries the full ordering of one day's destinations.
type reorderDayRequest struct {
	DestinationIDs []uuid.UUID `json:"destination_ids"`
}

// ReorderDay handles PUT /trips/{tripID}/days/{day}/order.
func (s *Server) ReorderDay(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", "day must be a positive integer")
		return
	}

	var body reorderDayRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := s.planner.ReorderDay(r.Context(), tripID, day, body.DestinationIDs); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OptimizeDay handles POST /trips/{tripID}/days/{day}/optimize.
// ?smart=true pins lodging first and interleaves restaurants.
func (s *Server) OptimizeDay(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}
	day, err := dayParam(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", "day must be a positive integer")
		return
	}
	smart := r.URL.Query().Get("smart") == "true"

	ordered, metrics, err := s.planner.OptimizeDay(r.Context(), tripID, day, smart)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"destinations": ordered,
		"metrics":      metrics,
	})
}

func dayParam(r *http.Request) (int, error) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		return 0, err
	}
	if day < 1 {
		return 0, strconv.ErrRange
	}
	return day, nil
}
