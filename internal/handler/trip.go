package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// tripRequest is the JSON body for creating or updating a trip.
// Dates are calendar dates, not instants; they parse from "2006-01-02".
type tripRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// tripResponse is the JSON shape of a trip, with derived day count included
// so clients never re-implement the span math.
type tripResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      int       `json:"days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func tripToResponse(t domain.Trip) tripResponse {
	return tripResponse{
		ID:        t.ID,
		Title:     t.Title,
		StartDate: t.StartDate.Format(dateLayout),
		EndDate:   t.EndDate.Format(dateLayout),
		Days:      t.DayCount(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func requestToTrip(body tripRequest) (domain.Trip, error) {
	t := domain.Trip{Title: body.Title}

	if body.StartDate != "" {
		start, err := time.Parse(dateLayout, body.StartDate)
		if err != nil {
			return domain.Trip{}, err
		}
		t.StartDate = start
	}
	if body.EndDate != "" {
		end, err := time.Parse(dateLayout, body.EndDate)
		if err != nil {
			return domain.Trip{}, err
		}
		t.EndDate = end
	}
	return t, nil
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", "dates must be formatted YYYY-MM-DD")
		return
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips. Pagination comes from optional ?page= and
// ?limit= query params; anything unparseable falls back to the defaults.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	page := domain.NewPaginationParams(
		intQueryParam(r, "page"),
		intQueryParam(r, "limit"),
	)

	trips, err := s.trips.List(r.Context(), page)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"meta": map[string]int{"page": page.Page, "limit": page.Limit},
	})
}

// intQueryParam returns the named query param as *int, or nil when absent or
// not an integer.
func intQueryParam(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	var body tripRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "validation_error", "dates must be formatted YYYY-MM-DD")
		return
	}
	trip.ID = id

	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "tripID")
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "trip not found")
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
