// Package planner contains the itinerary ordering brain: the day/order
// assignment engine that decides where incoming destinations land, and the
// orchestrator that applies assistant action batches to the store.
package planner

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// ClampDay forces a day number into [1, totalDays].
func ClampDay(day, totalDays int) int {
	if day < 1 {
		return 1
	}
	if day > totalDays {
		return totalDays
	}
	return day
}

// autoDistribute decides, once per ADD batch, whether an undifferentiated
// batch should be spread evenly across the trip's days. A large batch with no
// per-item day hints (or with hints that show no actual spread) is
// distributed; a batch the assistant already spread across distinct days is
// trusted as-is. A target day set by a same-batch trip-duration change
// disables distribution — those additions belong on the new day.
func autoDistribute(drafts []domain.DestinationDraft, totalDays int, modifyTargetSet bool) bool {
	if modifyTargetSet || len(drafts) <= 2 || totalDays <= 1 {
		return false
	}

	hints := lo.FilterMap(drafts, func(d domain.DestinationDraft, _ int) (int, bool) {
		if d.DayHint == nil {
			return 0, false
		}
		return *d.DayHint, true
	})
	if len(hints) == 0 {
		return true
	}

	// All hinted items pointing at the same day is treated as an
	// undifferentiated batch, not a deliberate spread.
	distinct := lo.Uniq(hints)
	return len(distinct) == 1
}

// AssignDays computes the final day for every draft in an ADD batch using the
// strict precedence chain: explicit per-item hint, then auto-distribution,
// then the batch-level hint, then day 1. All assignments are clamped to
// [1, totalDays].
func AssignDays(drafts []domain.DestinationDraft, totalDays int, batchHint *int, modifyTargetSet bool) []int {
	distribute := autoDistribute(drafts, totalDays, modifyTargetSet)

	perDay := 1
	if totalDays > 0 {
		perDay = (len(drafts) + totalDays - 1) / totalDays
		if perDay < 1 {
			perDay = 1
		}
	}

	days := make([]int, len(drafts))
	for i, d := range drafts {
		switch {
		case d.DayHint != nil:
			days[i] = ClampDay(*d.DayHint, totalDays)
		case distribute:
			days[i] = ClampDay(i/perDay+1, totalDays)
		case batchHint != nil:
			days[i] = ClampDay(*batchHint, totalDays)
		default:
			days[i] = 1
		}
	}
	return days
}

// GroupByDay buckets destinations by day, each bucket ordered by position.
func GroupByDay(dests []domain.Destination) map[int][]domain.Destination {
	grouped := lo.GroupBy(dests, func(d domain.Destination) int { return d.Day })
	for day := range grouped {
		sort.SliceStable(grouped[day], func(i, j int) bool {
			return grouped[day][i].Position < grouped[day][j].Position
		})
	}
	return grouped
}

// RenumberDays produces dense 1..n placements for every day in changed,
// preserving each bucket's current list order. Days whose positions are
// already dense still get placements — the staged write makes renumbering
// idempotent, so calling this twice changes nothing the second time.
func RenumberDays(grouped map[int][]domain.Destination, changed map[int]bool) []domain.Placement {
	days := lo.Keys(changed)
	sort.Ints(days)

	var placements []domain.Placement
	for _, day := range days {
		for i, d := range grouped[day] {
			placements = append(placements, domain.Placement{ID: d.ID, Day: day, Position: i + 1})
		}
	}
	return placements
}

// Splice inserts dest into list at the 1-based position, or appends when
// position is nil or beyond the end.
func Splice(list []domain.Destination, dest domain.Destination, position *int) []domain.Destination {
	if position == nil || *position < 1 || *position > len(list) {
		return append(list, dest)
	}
	idx := *position - 1
	out := make([]domain.Destination, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, dest)
	out = append(out, list[idx:]...)
	return out
}

// MatchByName finds destinations whose name matches the wanted name,
// case-insensitively: exact match first, then containment either way.
func MatchByName(dests []domain.Destination, name string) []domain.Destination {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}

	var exact, loose []domain.Destination
	for _, d := range dests {
		got := strings.ToLower(d.Name)
		switch {
		case got == want:
			exact = append(exact, d)
		case strings.Contains(got, want) || strings.Contains(want, got):
			loose = append(loose, d)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return loose
}
