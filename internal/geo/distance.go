// Package geo provides distance estimation between itinerary stops: a pure
// haversine estimator and an optional road-routing lookup that falls back to
// the haversine figure when the routing collaborator is unavailable.
package geo

import (
	"math"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// averageSpeedKmh is the assumed average speed for local/urban travel.
// Deliberately conservative: itinerary legs are short city hops, not highway.
const averageSpeedKmh = 40

// Kilometers returns the great-circle distance between two points.
func Kilometers(a, b domain.Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RouteKilometers sums pairwise distances between consecutive stops.
// Stops without coordinates contribute zero length but do not break the
// chain: the route continues from the last stop that had coordinates.
func RouteKilometers(stops []domain.Destination) float64 {
	var total float64
	var prev *domain.Coordinates
	for i := range stops {
		cur := stops[i].Coordinates
		if cur == nil {
			continue
		}
		if prev != nil {
			total += Kilometers(*prev, *cur)
		}
		prev = cur
	}
	return total
}

// TravelMinutes estimates travel time for a distance at averageSpeedKmh.
func TravelMinutes(km float64) float64 {
	return km / averageSpeedKmh * 60
}
