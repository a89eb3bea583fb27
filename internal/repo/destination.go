package repo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
// On (trip_id, day, position) it means the two-phase write protocol was not
// followed and the batch must abort — see domain.ErrPositionConflict.
const uniqueViolation = "23505"

// DestinationRepo defines the persistence operations for Destinations.
// All operations are scoped by tripID to enforce ownership.
type DestinationRepo interface {
	// Create inserts a new destination and returns the persisted record.
	// A write that lands on an occupied (day, position) slot returns
	// domain.ErrPositionConflict.
	Create(ctx context.Context, dest domain.Destination) (domain.Destination, error)

	// GetByID retrieves a single destination scoped to the given tripID.
	// Returns domain.ErrNotFound if no destination with that ID exists
	// under that trip.
	GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error)

	// ListByTripID returns all destinations for a trip ordered by day
	// ascending, then position ascending.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)

	// Update overwrites the mutable fields of a destination.
	// Returns domain.ErrNotFound if it does not exist under that trip.
	Update(ctx context.Context, dest domain.Destination) (domain.Destination, error)

	// Delete removes a destination by ID, scoped to the given tripID.
	// Returns domain.ErrNotFound if it does not exist under that trip.
	Delete(ctx context.Context, tripID, destID uuid.UUID) error

	// UpdatePositionsStaged rewrites (day, position) for a batch of
	// destinations using the two-phase collision-avoidance protocol:
	// phase 1 moves every affected row to a temporary position guaranteed
	// not to collide with any final value or any other temporary value;
	// phase 2 writes the final placements. A unique violation in either
	// phase is a protocol bug and surfaces as domain.ErrPositionConflict.
	UpdatePositionsStaged(ctx context.Context, tripID uuid.UUID, placements []domain.Placement) error
}

// pgDestinationRepo is the Postgres implementation of DestinationRepo.
type pgDestinationRepo struct {
	db db
}

// NewDestinationRepo constructs a DestinationRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx for
// rollback isolation.
func NewDestinationRepo(db db) DestinationRepo {
	return &pgDestinationRepo{db: db}
}

const destinationColumns = `id, trip_id, name, latitude, longitude, day, position,
	category, place_ref, address, rating, created_at, updated_at`

func (r *pgDestinationRepo) Create(ctx context.Context, dest domain.Destination) (domain.Destination, error) {
	const q = `
		INSERT INTO destinations
			(trip_id, name, latitude, longitude, day, position, category, place_ref, address, rating)
		VALUES
			(@trip_id, @name, @latitude, @longitude, @day, @position, @category, @place_ref, @address, @rating)
		RETURNING ` + destinationColumns

	var lat, lng *float64
	if dest.Coordinates != nil {
		lat, lng = &dest.Coordinates.Lat, &dest.Coordinates.Lng
	}
	category := dest.Category
	if category == "" {
		category = domain.CategoryOther
	}

	args := pgx.NamedArgs{
		"trip_id":   dest.TripID,
		"name":      dest.Name,
		"latitude":  lat,
		"longitude": lng,
		"day":       dest.Day,
		"position":  dest.Position,
		"category":  string(category),
		"place_ref": dest.PlaceRef,
		"address":   dest.Address,
		"rating":    dest.Rating,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Create: %w", mapConflict(err))
	}
	return result, nil
}

func (r *pgDestinationRepo) GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": destID, "trip_id": tripID})
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE trip_id = @trip_id
		ORDER BY day, position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var dests []domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: rows: %w", err)
	}

	return dests, nil
}

func (r *pgDestinationRepo) Update(ctx context.Context, dest domain.Destination) (domain.Destination, error) {
	const q = `
		UPDATE destinations
		SET name       = @name,
		    latitude   = @latitude,
		    longitude  = @longitude,
		    day        = @day,
		    position   = @position,
		    category   = @category,
		    place_ref  = @place_ref,
		    address    = @address,
		    rating     = @rating,
		    updated_at = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + destinationColumns

	var lat, lng *float64
	if dest.Coordinates != nil {
		lat, lng = &dest.Coordinates.Lat, &dest.Coordinates.Lng
	}

	args := pgx.NamedArgs{
		"id":        dest.ID,
		"trip_id":   dest.TripID,
		"name":      dest.Name,
		"latitude":  lat,
		"longitude": lng,
		"day":       dest.Day,
		"position":  dest.Position,
		"category":  string(dest.Category),
		"place_ref": dest.PlaceRef,
		"address":   dest.Address,
		"rating":    dest.Rating,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Update: %w", mapConflict(err))
	}
	return result, nil
}

func (r *pgDestinationRepo) Delete(ctx context.Context, tripID, destID uuid.UUID) error {
	const q = `DELETE FROM destinations WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": destID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.DestinationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DestinationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgDestinationRepo) UpdatePositionsStaged(ctx context.Context, tripID uuid.UUID, placements []domain.Placement) error {
	if len(placements) == 0 {
		return nil
	}

	// Phase 1: park every affected row far above any plausible real position.
	// The random base keeps two interleaved batches from colliding with each
	// other; the row index keeps rows within this batch apart.
	tempBase := 100000 + rand.Intn(100000)
	const stage = `
		UPDATE destinations
		SET position = @position, updated_at = now()
		WHERE id = @id AND trip_id = @trip_id`

	for i, p := range placements {
		args := pgx.NamedArgs{"id": p.ID, "trip_id": tripID, "position": tempBase + i}
		tag, err := r.db.Exec(ctx, stage, args)
		if err != nil {
			return fmt.Errorf("repo.DestinationRepo.UpdatePositionsStaged: stage: %w", mapConflict(err))
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("repo.DestinationRepo.UpdatePositionsStaged: stage: %w", domain.ErrNotFound)
		}
	}

	// Phase 2: write the final (day, position) values. Every row is already
	// parked, so no final value can collide with a not-yet-updated row.
	const finalize = `
		UPDATE destinations
		SET day = @day, position = @position, updated_at = now()
		WHERE id = @id AND trip_id = @trip_id`

	for _, p := range placements {
		args := pgx.NamedArgs{"id": p.ID, "trip_id": tripID, "day": p.Day, "position": p.Position}
		if _, err := r.db.Exec(ctx, finalize, args); err != nil {
			return fmt.Errorf("repo.DestinationRepo.UpdatePositionsStaged: finalize: %w", mapConflict(err))
		}
	}

	return nil
}

// mapConflict converts a Postgres unique violation into the domain sentinel.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrPositionConflict
	}
	return err
}

// scanDestination maps a single database row into a domain.Destination,
// folding the nullable latitude/longitude pair into *Coordinates.
func scanDestination(s scanner) (domain.Destination, error) {
	var (
		d      domain.Destination
		id     pgtype.UUID
		tripID pgtype.UUID
		lat    pgtype.Float8
		lng    pgtype.Float8
		rating pgtype.Float8
	)

	err := s.Scan(&id, &tripID, &d.Name, &lat, &lng, &d.Day, &d.Position,
		&d.Category, &d.PlaceRef, &d.Address, &rating, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	if lat.Valid && lng.Valid {
		d.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if rating.Valid {
		v := rating.Float64
		d.Rating = &v
	}

	return d, nil
}
