// Package handler implements the HTTP handlers for the Wayplan API.
// Handlers are methods on Server, split into domain-specific files
// (health.go, trip.go, destination.go, actions.go) that all share the same
// Server struct so they can access its dependencies. Routing is plain chi;
// request and response bodies are hand-mapped JSON.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/geo"
	"github.com/oskarlind/wayplan/backend/internal/planner"
	"github.com/oskarlind/wayplan/backend/internal/routing"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, page domain.PaginationParams) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItineraryPlanner defines the itinerary mutations the destination and action
// handlers depend on. Satisfied by *planner.Orchestrator.
type ItineraryPlanner interface {
	Apply(ctx context.Context, tripID uuid.UUID, actions []domain.Action, opts planner.Options) (domain.ApplySummary, error)
	AddDestination(ctx context.Context, tripID uuid.UUID, draft domain.DestinationDraft, locationHint string) (domain.Destination, error)
	RemoveDestination(ctx context.Context, tripID, destID uuid.UUID) error
	ReorderDay(ctx context.Context, tripID uuid.UUID, day int, orderedIDs []uuid.UUID) error
	OptimizeDay(ctx context.Context, tripID uuid.UUID, day int, smart bool) ([]domain.Destination, routing.Metrics, error)
}

// DestinationReader defines the read-side destination operations handlers
// depend on. Satisfied by repo.DestinationRepo.
type DestinationReader interface {
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)
	GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error)
	Update(ctx context.Context, dest domain.Destination) (domain.Destination, error)
}

// Server holds the dependencies shared by every handler method.
type Server struct {
	trips     TripServicer
	planner   ItineraryPlanner
	dests     DestinationReader
	distancer geo.Distancer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, p ItineraryPlanner, dests DestinationReader, distancer geo.Distancer) *Server {
	return &Server{trips: trips, planner: p, dests: dests, distancer: distancer}
}

// Routes returns the chi router with every API endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Post("/actions", s.ApplyActions)

			r.Route("/destinations", func(r chi.Router) {
				r.Get("/", s.ListDestinations)
				r.Post("/", s.CreateDestination)
				r.Patch("/{destinationID}", s.UpdateDestination)
				r.Delete("/{destinationID}", s.DeleteDestination)
			})

			r.Route("/days/{day}", func(r chi.Router) {
				r.Put("/order", s.ReorderDay)
				r.Post("/optimize", s.OptimizeDay)
			})
		})
	})

	return r
}
