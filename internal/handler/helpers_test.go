package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/geo"
	"github.com/oskarlind/wayplan/backend/internal/handler"
	"github.com/oskarlind/wayplan/backend/internal/planner"
	"github.com/oskarlind/wayplan/backend/internal/routing"
)

// jsonBody marshals v into a request body reader, failing the test on error.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list    func(ctx context.Context, page domain.PaginationParams) ([]domain.Trip, error)
	update  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context, page domain.PaginationParams) ([]domain.Trip, error) {
	return m.list(ctx, page)
}
func (m *mockTripServicer) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockPlanner is a test double for handler.ItineraryPlanner.
type mockPlanner struct {
	apply       func(ctx context.Context, tripID uuid.UUID, actions []domain.Action, opts planner.Options) (domain.ApplySummary, error)
	addDest     func(ctx context.Context, tripID uuid.UUID, draft domain.DestinationDraft, hint string) (domain.Destination, error)
	removeDest  func(ctx context.Context, tripID, destID uuid.UUID) error
	reorderDay  func(ctx context.Context, tripID uuid.UUID, day int, ids []uuid.UUID) error
	optimizeDay func(ctx context.Context, tripID uuid.UUID, day int, smart bool) ([]domain.Destination, routing.Metrics, error)
}

func (m *mockPlanner) Apply(ctx context.Context, tripID uuid.UUID, actions []domain.Action, opts planner.Options) (domain.ApplySummary, error) {
	return m.apply(ctx, tripID, actions, opts)
}
func (m *mockPlanner) AddDestination(ctx context.Context, tripID uuid.UUID, draft domain.DestinationDraft, hint string) (domain.Destination, error) {
	return m.addDest(ctx, tripID, draft, hint)
}
func (m *mockPlanner) RemoveDestination(ctx context.Context, tripID, destID uuid.UUID) error {
	return m.removeDest(ctx, tripID, destID)
}
func (m *mockPlanner) ReorderDay(ctx context.Context, tripID uuid.UUID, day int, ids []uuid.UUID) error {
	return m.reorderDay(ctx, tripID, day, ids)
}
func (m *mockPlanner) OptimizeDay(ctx context.Context, tripID uuid.UUID, day int, smart bool) ([]domain.Destination, routing.Metrics, error) {
	return m.optimizeDay(ctx, tripID, day, smart)
}

var _ handler.ItineraryPlanner = (*mockPlanner)(nil)

// mockDestReader is a test double for handler.DestinationReader.
type mockDestReader struct {
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)
	getByID      func(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error)
	update       func(ctx context.Context, dest domain.Destination) (domain.Destination, error)
}

func (m *mockDestReader) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockDestReader) GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error) {
	return m.getByID(ctx, tripID, destID)
}
func (m *mockDestReader) Update(ctx context.Context, dest domain.Destination) (domain.Destination, error) {
	return m.update(ctx, dest)
}

var _ handler.DestinationReader = (*mockDestReader)(nil)

// newTestRouter wires a Server with the given mocks. Nil mocks are fine for
// endpoints the test never touches; the haversine distancer keeps metrics
// deterministic without any network.
func newTestRouter(trips handler.TripServicer, p handler.ItineraryPlanner, dests handler.DestinationReader) http.Handler {
	return handler.NewServer(trips, p, dests, geo.HaversineDistancer{}).Routes()
}
