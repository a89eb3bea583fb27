package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlaceCategory classifies a destination for route sequencing: lodging is
// pinned to the front of a day, restaurants are interleaved between
// attractions, everything else rides along.
type PlaceCategory string

const (
	CategoryAttraction PlaceCategory = "attraction"
	CategoryLodging    PlaceCategory = "lodging"
	CategoryRestaurant PlaceCategory = "restaurant"
	CategoryOther      PlaceCategory = "other"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination is a single place on a trip's itinerary.
// Coordinates is nil until the place has been resolved; a destination with
// nil coordinates is still a valid itinerary member.
//
// Day is 1-based and always within [1, trip.DayCount()] at rest.
// Position is 1-based and dense within a day: after every completed write the
// positions on a day are exactly {1..n}. The (TripID, Day, Position) triple
// is unique at rest — see repo.DestinationRepo.UpdatePositionsStaged for how
// permutations are written without tripping that constraint.
type Destination struct {
	ID          uuid.UUID     `json:"id"`
	TripID      uuid.UUID     `json:"trip_id"`
	Name        string        `json:"name"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`
	Day         int           `json:"day"`
	Position    int           `json:"position"`
	Category    PlaceCategory `json:"category"`
	PlaceRef    string        `json:"place_ref,omitempty"`
	Address     string        `json:"address,omitempty"`
	Rating      *float64      `json:"rating,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// DestinationDraft is a bare destination descriptor as it arrives from the
// assistant layer: a name, maybe a day hint, maybe coordinates. The planner
// turns drafts into persisted Destinations.
type DestinationDraft struct {
	Name        string        `json:"name"`
	DayHint     *int          `json:"day,omitempty"`
	Category    PlaceCategory `json:"category,omitempty"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// Placement names a destination's final (day, position) slot.
// A batch of placements is the unit of the two-phase position write.
type Placement struct {
	ID       uuid.UUID `json:"id"`
	Day      int       `json:"day"`
	Position int       `json:"position"`
}

// RouteMetrics summarises a day's route for display.
// UsedRealDistances reports whether a road-routing collaborator supplied the
// distance or the haversine estimate was used.
type RouteMetrics struct {
	TotalDistanceKm   float64 `json:"total_distance_km"`
	EstimatedMinutes  float64 `json:"estimated_minutes"`
	UsedRealDistances bool    `json:"used_real_distances"`
}
