// Package routing orders a day's stops to approximately minimise travel
// distance. The sequencer is a greedy nearest-neighbor heuristic, not an
// optimal TSP solve: the ordering is an accepted approximation and no
// minimality is claimed.
package routing

import (
	"github.com/samber/lo"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/geo"
)

// Metrics compares a day's route before and after sequencing.
type Metrics struct {
	OriginalKm   float64 `json:"original_km"`
	OptimizedKm  float64 `json:"optimized_km"`
	SavedKm      float64 `json:"saved_km"`
	SavedMinutes float64 `json:"saved_minutes"`
}

// Optimize orders stops by greedy nearest-neighbor starting from the first
// stop in the input (by convention the anchor — lodging if the caller put it
// first). Ties break by original input order. Stops without coordinates
// cannot be distance-ranked and are appended at the end in their original
// relative order.
func Optimize(stops []domain.Destination) ([]domain.Destination, Metrics) {
	ranked, unranked := splitRankable(stops)

	var ordered []domain.Destination
	if len(ranked) > 0 {
		ordered = append(ordered, ranked[0])
		ordered = append(ordered, greedyFrom(ranked[0].Coordinates, ranked[1:])...)
	}
	ordered = append(ordered, unranked...)
	return ordered, metricsFor(stops, ordered)
}

// OptimizeSmart is the category-aware variant: any lodging stop is forced to
// the front, nearest-neighbor runs over attractions only, and a nearest
// unused restaurant is interleaved after every third attraction. Unused
// restaurants are appended at the end.
func OptimizeSmart(stops []domain.Destination) ([]domain.Destination, Metrics) {
	ranked, unranked := splitRankable(stops)

	lodging := lo.Filter(ranked, func(s domain.Destination, _ int) bool { return s.Category == domain.CategoryLodging })
	restaurants := lo.Filter(ranked, func(s domain.Destination, _ int) bool { return s.Category == domain.CategoryRestaurant })
	attractions := lo.Filter(ranked, func(s domain.Destination, _ int) bool {
		return s.Category != domain.CategoryLodging && s.Category != domain.CategoryRestaurant
	})

	ordered := append([]domain.Destination{}, lodging...)

	// Walk attractions nearest-first, starting from the lodging anchor when
	// there is one, otherwise from the first attraction in input order.
	var start *domain.Coordinates
	if len(lodging) > 0 {
		start = lodging[len(lodging)-1].Coordinates
	} else if len(attractions) > 0 {
		start = attractions[0].Coordinates
		ordered = append(ordered, attractions[0])
		attractions = attractions[1:]
	}

	placed := 0
	if len(ordered) > len(lodging) {
		placed = 1 // the seeded first attraction counts toward the interleave cadence
	}
	for _, a := range greedyFrom(start, attractions) {
		ordered = append(ordered, a)
		placed++
		if placed%3 == 0 && len(restaurants) > 0 {
			idx := nearestIndex(*a.Coordinates, restaurants)
			ordered = append(ordered, restaurants[idx])
			restaurants = append(restaurants[:idx], restaurants[idx+1:]...)
		}
	}

	ordered = append(ordered, restaurants...)
	ordered = append(ordered, unranked...)
	return ordered, metricsFor(stops, ordered)
}

// splitRankable separates stops with coordinates from those without,
// preserving input order in both halves.
func splitRankable(stops []domain.Destination) (ranked, unranked []domain.Destination) {
	for _, s := range stops {
		if s.Coordinates != nil {
			ranked = append(ranked, s)
		} else {
			unranked = append(unranked, s)
		}
	}
	return ranked, unranked
}

// greedyFrom orders stops by repeatedly picking the one nearest to the
// current point. All stops must have coordinates. A nil start point keeps
// the input order. Ties keep the earliest input index, so the result is
// deterministic.
func greedyFrom(start *domain.Coordinates, stops []domain.Destination) []domain.Destination {
	if start == nil || len(stops) < 2 {
		return append([]domain.Destination{}, stops...)
	}

	current := *start
	remaining := append([]domain.Destination{}, stops...)
	ordered := make([]domain.Destination, 0, len(stops))

	for len(remaining) > 0 {
		idx := nearestIndex(current, remaining)
		next := remaining[idx]
		ordered = append(ordered, next)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		current = *next.Coordinates
	}
	return ordered
}

// nearestIndex returns the index of the candidate nearest to from.
// Candidates must all have coordinates. Ties keep the lowest index.
func nearestIndex(from domain.Coordinates, candidates []domain.Destination) int {
	best := 0
	bestKm := -1.0
	for i, c := range candidates {
		km := geo.Kilometers(from, *c.Coordinates)
		if bestKm < 0 || km < bestKm {
			bestKm = km
			best = i
		}
	}
	return best
}

func metricsFor(original, optimized []domain.Destination) Metrics {
	before := geo.RouteKilometers(original)
	after := geo.RouteKilometers(optimized)
	return Metrics{
		OriginalKm:   before,
		OptimizedKm:  after,
		SavedKm:      before - after,
		SavedMinutes: geo.TravelMinutes(before - after),
	}
}
