package domain

import "errors"

// ErrNotFound is returned by repo and planner functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPositionConflict is returned when a write violates the unique
// (trip, day, position) constraint. With the two-phase position protocol this
// cannot happen for a correctly staged batch, so seeing it means a protocol
// bug: the current batch write is aborted rather than partially applied.
var ErrPositionConflict = errors.New("position conflict")
