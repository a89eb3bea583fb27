// Package domain contains the core data types for the Wayplan itinerary API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, planner, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate: a multi-day itinerary owning an ordered
// collection of destinations. Destinations reference days as 1-based integers
// relative to StartDate.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayCount returns the number of days the trip spans, derived from the date
// range (partial days round up). A trip always spans at least one day, even
// when EndDate equals or precedes StartDate.
func (t Trip) DayCount() int {
	span := t.EndDate.Sub(t.StartDate)
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}

// WithDayCount returns a copy of the trip whose EndDate is recomputed as
// StartDate + days. Used by the MODIFY_TRIP action and by the widening rule:
// a destination claiming a day beyond the current span widens the trip rather
// than being truncated.
func (t Trip) WithDayCount(days int) Trip {
	if days < 1 {
		days = 1
	}
	t.EndDate = t.StartDate.AddDate(0, 0, days)
	return t
}
