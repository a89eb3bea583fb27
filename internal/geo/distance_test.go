package geo_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/geo"
)

func coordsPtr(lat, lng float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: lat, Lng: lng}
}

// ---- Kilometers ------------------------------------------------------------

func TestKilometers_KnownDistance(t *testing.T) {
	// Bangkok Grand Palace to Wat Arun is roughly 1 km across the river.
	grandPalace := domain.Coordinates{Lat: 13.7500, Lng: 100.4913}
	watArun := domain.Coordinates{Lat: 13.7437, Lng: 100.4888}

	km := geo.Kilometers(grandPalace, watArun)

	assert.InDelta(t, 0.75, km, 0.2)
}

func TestKilometers_SamePointIsZero(t *testing.T) {
	p := domain.Coordinates{Lat: 13.75, Lng: 100.49}
	assert.Zero(t, geo.Kilometers(p, p))
}

func TestKilometers_Symmetric(t *testing.T) {
	a := domain.Coordinates{Lat: 13.75, Lng: 100.49}
	b := domain.Coordinates{Lat: 18.79, Lng: 98.98}

	assert.Equal(t, geo.Kilometers(a, b), geo.Kilometers(b, a))
}

// ---- RouteKilometers -------------------------------------------------------

func TestRouteKilometers_ReverseEqualsForward(t *testing.T) {
	stops := []domain.Destination{
		{Coordinates: coordsPtr(13.75, 100.49)},
		{Coordinates: coordsPtr(13.74, 100.48)},
		{Coordinates: coordsPtr(13.76, 100.50)},
	}
	reversed := []domain.Destination{stops[2], stops[1], stops[0]}

	assert.InDelta(t, geo.RouteKilometers(stops), geo.RouteKilometers(reversed), 1e-9)
}

func TestRouteKilometers_SkipsMissingCoordinates(t *testing.T) {
	a := coordsPtr(13.75, 100.49)
	c := coordsPtr(13.76, 100.50)

	withGap := []domain.Destination{
		{Coordinates: a},
		{Name: "unresolved"}, // no coordinates — chain continues past it
		{Coordinates: c},
	}
	direct := []domain.Destination{{Coordinates: a}, {Coordinates: c}}

	assert.Equal(t, geo.RouteKilometers(direct), geo.RouteKilometers(withGap))
}

func TestRouteKilometers_EmptyAndSingle(t *testing.T) {
	assert.Zero(t, geo.RouteKilometers(nil))
	assert.Zero(t, geo.RouteKilometers([]domain.Destination{{Coordinates: coordsPtr(1, 1)}}))
}

// ---- TravelMinutes ---------------------------------------------------------

func TestTravelMinutes(t *testing.T) {
	// 40 km at 40 km/h is exactly one hour.
	assert.InDelta(t, 60, geo.TravelMinutes(40), 1e-9)
	assert.Zero(t, geo.TravelMinutes(0))
}

// ---- RoadDistancer ---------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func routeStops() []domain.Destination {
	return []domain.Destination{
		{Coordinates: coordsPtr(13.75, 100.49)},
		{Coordinates: coordsPtr(13.74, 100.48)},
	}
}

func TestRoadDistancer_UsesServiceDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"code":   "Ok",
			"routes": []map[string]any{{"distance": 2500.0}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	d := geo.NewRoadDistancer(srv.URL, discardLogger())
	got := d.Route(context.Background(), routeStops())

	assert.True(t, got.UsedReal)
	assert.InDelta(t, 2.5, got.Kilometers, 1e-9)
}

func TestRoadDistancer_FallsBackOnServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	stops := routeStops()
	d := geo.NewRoadDistancer(srv.URL, discardLogger())
	got := d.Route(context.Background(), stops)

	assert.False(t, got.UsedReal)
	assert.InDelta(t, geo.RouteKilometers(stops), got.Kilometers, 1e-9)
}

func TestRoadDistancer_FallsBackOnNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"code": "NoRoute"}))
	}))
	defer srv.Close()

	d := geo.NewRoadDistancer(srv.URL, discardLogger())
	got := d.Route(context.Background(), routeStops())

	assert.False(t, got.UsedReal)
}

func TestRoadDistancer_TooFewCoordinatesSkipsService(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := geo.NewRoadDistancer(srv.URL, discardLogger())
	got := d.Route(context.Background(), []domain.Destination{{Name: "only one", Coordinates: coordsPtr(1, 1)}})

	assert.False(t, called, "service should not be queried for a single stop")
	assert.False(t, got.UsedReal)
}
