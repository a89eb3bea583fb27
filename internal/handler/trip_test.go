package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

func tripFixture() domain.Trip {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:        uuid.New(),
		Title:     "Thailand Loop",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 5),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// ---- POST /trips -----------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"title":      fixture.Title,
		"start_date": "2025-11-01",
		"end_date":   "2025-11-06",
	})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Thailand Loop", got["title"])
	assert.EqualValues(t, 5, got["days"])
}

func TestCreateTrip_422_Validation(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"title": " ", "start_date": "2025-11-01"})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
}

func TestCreateTrip_422_BadDate(t *testing.T) {
	body := jsonBody(t, map[string]any{"title": "x", "start_date": "not-a-date"})
	req := httptest.NewRequest(http.MethodPost, "/trips", body)
	rec := httptest.NewRecorder()

	newTestRouter(&mockTripServicer{}, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateTrip_400_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trips", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockTripServicer{}, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /trips ------------------------------------------------------------

func TestListTrips_200(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context, page domain.PaginationParams) ([]domain.Trip, error) {
			assert.Equal(t, 1, page.Page)
			assert.Equal(t, 20, page.Limit)
			return []domain.Trip{tripFixture(), tripFixture()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data []json.RawMessage `json:"data"`
		Meta map[string]int    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Data, 2)
	assert.Equal(t, 1, got.Meta["page"])
}

func TestListTrips_200_QueryPagination(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context, page domain.PaginationParams) ([]domain.Trip, error) {
			assert.Equal(t, 3, page.Page)
			assert.Equal(t, 5, page.Limit)
			return []domain.Trip{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips?page=3&limit=5", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- GET /trips/{id} -------------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTrip_404_BadUUID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trips/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockTripServicer{}, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- PUT /trips/{id} -------------------------------------------------------

func TestUpdateTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		update: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, trip.ID)
			return trip, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"title":      "Renamed",
		"start_date": "2025-11-01",
		"end_date":   "2025-11-04",
	})
	req := httptest.NewRequest(http.MethodPut, "/trips/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Renamed")
}

// ---- DELETE /trips/{id} ----------------------------------------------------

func TestDeleteTrip_204(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc, nil, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
