package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// RouteDistance is a route's total length plus a flag telling the caller
// which source produced it. Callers never see an error for a routing-service
// failure — they see the haversine estimate with UsedReal=false.
type RouteDistance struct {
	Kilometers float64
	UsedReal   bool
}

// Distancer measures a route. The planner and handlers depend on this
// interface so tests can substitute a deterministic implementation.
type Distancer interface {
	Route(ctx context.Context, stops []domain.Destination) RouteDistance
}

// HaversineDistancer measures routes purely by great-circle distance.
// It is the zero-dependency default and the fallback inside RoadDistancer.
type HaversineDistancer struct{}

// Route sums great-circle leg distances. UsedReal is always false.
func (HaversineDistancer) Route(_ context.Context, stops []domain.Destination) RouteDistance {
	return RouteDistance{Kilometers: RouteKilometers(stops)}
}

// RoadDistancer asks an OSRM-style table service for real driving distances
// and transparently falls back to the haversine estimate when the service
// errors, times out, or returns no route.
type RoadDistancer struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewRoadDistancer constructs a RoadDistancer against the given OSRM-style
// base URL (e.g. "https://router.project-osrm.org").
func NewRoadDistancer(baseURL string, log *slog.Logger) *RoadDistancer {
	return &RoadDistancer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

// Route returns the driving distance through every stop that has coordinates.
// Any failure degrades to the haversine figure with UsedReal=false.
func (d *RoadDistancer) Route(ctx context.Context, stops []domain.Destination) RouteDistance {
	fallback := RouteDistance{Kilometers: RouteKilometers(stops)}

	var coords []string
	for i := range stops {
		if c := stops[i].Coordinates; c != nil {
			coords = append(coords, fmt.Sprintf("%.6f,%.6f", c.Lng, c.Lat))
		}
	}
	if len(coords) < 2 {
		return fallback
	}

	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=false", d.baseURL, strings.Join(coords, ";"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.log.Warn("road distance lookup failed, using haversine", "error", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.log.Warn("road distance lookup failed, using haversine", "status", resp.StatusCode)
		return fallback
	}

	var body osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		d.log.Warn("road distance response unreadable, using haversine", "error", err)
		return fallback
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return fallback
	}

	return RouteDistance{Kilometers: body.Routes[0].Distance / 1000, UsedReal: true}
}
