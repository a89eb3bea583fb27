package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/oskarlind/wayplan/backend/internal/domain"
	"github.com/oskarlind/wayplan/backend/internal/places"
	"github.com/oskarlind/wayplan/backend/internal/repo"
	"github.com/oskarlind/wayplan/backend/internal/routing"
)

// Resolver looks up coordinates and metadata for a place name.
// Satisfied by *places.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, name, hint string) (places.Place, error)
}

// Options tunes one Apply call. All fields are optional.
type Options struct {
	// LocationHint biases place resolution, typically the trip's region
	// ("Chiang Mai, Thailand") or the previously resolved destination.
	LocationHint string

	// OnProgress is invoked before each destination in an ADD batch is
	// resolved, so a caller can stream "resolving 3 of 12" to the client.
	OnProgress func(domain.Progress)

	// OnFailure is invoked for each destination that could not be resolved
	// or matched. Failures do not stop the batch.
	OnFailure func(domain.Failure)
}

func (o Options) progress(p domain.Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

func (o Options) failure(f domain.Failure) {
	if o.OnFailure != nil {
		o.OnFailure(f)
	}
}

// Orchestrator applies assistant action batches and manual edits to a trip's
// itinerary. All writes to one trip are serialized through a per-trip mutex,
// so two concurrent batches never interleave their position updates.
type Orchestrator struct {
	trips    repo.TripRepo
	dests    repo.DestinationRepo
	resolver Resolver
	log      *slog.Logger

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewOrchestrator wires the planner against its collaborators.
func NewOrchestrator(trips repo.TripRepo, dests repo.DestinationRepo, resolver Resolver, log *slog.Logger) *Orchestrator {
	return &Orchestrator{trips: trips, dests: dests, resolver: resolver, log: log}
}

func (o *Orchestrator) lock(tripID uuid.UUID) *sync.Mutex {
	m, _ := o.locks.LoadOrStore(tripID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// batchState carries context between actions of one batch: a trip-duration
// change can designate the day its companion additions should land on.
type batchState struct {
	targetDay  *int
	fromModify bool
}

// Apply executes one assistant action batch against a trip. Actions run in
// fixed priority order regardless of their order in the slice. Advisory
// actions pass through into the summary; mutating actions write to the store.
//
// Per-destination problems (unresolvable place, unmatched name) are reported
// through Options.OnFailure and the batch continues. Store-level errors abort
// the batch and are returned.
func (o *Orchestrator) Apply(ctx context.Context, tripID uuid.UUID, actions []domain.Action, opts Options) (domain.ApplySummary, error) {
	mu := o.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	var summary domain.ApplySummary

	trip, err := o.trips.GetByID(ctx, tripID)
	if err != nil {
		return summary, fmt.Errorf("planner.Orchestrator.Apply: %w", err)
	}

	sorted := make([]domain.Action, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind.Priority() < sorted[j].Kind.Priority()
	})

	totalAdds := lo.SumBy(sorted, func(a domain.Action) int {
		if a.Kind == domain.KindAdd {
			return len(a.Destinations)
		}
		return 0
	})

	st := &batchState{}
	addIndex := 0

	for _, a := range sorted {
		var err error
		switch a.Kind {
		case domain.KindModifyTrip:
			err = o.applyModifyTrip(ctx, &trip, a, st)
		case domain.KindUpdateTripInfo:
			err = o.applyUpdateTripInfo(ctx, &trip, a)
		case domain.KindRemove:
			err = o.applyRemove(ctx, trip, a, &summary, opts)
		case domain.KindAdd:
			err = o.applyAdd(ctx, &trip, a, st, &summary, opts, totalAdds, &addIndex)
		case domain.KindReorder:
			err = o.applyReorder(ctx, trip, a, opts)
		case domain.KindMove:
			err = o.applyMove(ctx, trip, a, &summary, opts)
		case domain.KindRecommend:
			summary.Recommendations = append(summary.Recommendations, a.Recommendations...)
		case domain.KindAskPersonalInfo:
			if a.Question != "" {
				summary.Questions = append(summary.Questions, a.Question)
			}
		case domain.KindNoAction:
			// nothing to do
		}
		if err != nil {
			return summary, fmt.Errorf("planner.Orchestrator.Apply: %s: %w", a.Kind, err)
		}
	}

	return summary, nil
}

func (o *Orchestrator) applyModifyTrip(ctx context.Context, trip *domain.Trip, a domain.Action, st *batchState) error {
	days := trip.DayCount()
	if a.DayCount != nil && *a.DayCount >= 1 {
		days = *a.DayCount
	}
	if a.TargetDay != nil {
		st.targetDay = a.TargetDay
		st.fromModify = true
		// Targeting a day beyond the trip widens it, never the reverse:
		// existing destinations on later days must keep their slots.
		if *a.TargetDay > days {
			days = *a.TargetDay
		}
	}

	if days == trip.DayCount() {
		return nil
	}
	if days < trip.DayCount() {
		if occupied, err := o.lastOccupiedDay(ctx, trip.ID); err != nil {
			return err
		} else if occupied > days {
			days = occupied
		}
	}

	updated, err := o.trips.Update(ctx, trip.WithDayCount(days))
	if err != nil {
		return err
	}
	*trip = updated
	return nil
}

func (o *Orchestrator) applyUpdateTripInfo(ctx context.Context, trip *domain.Trip, a domain.Action) error {
	changed := false
	if title := strings.TrimSpace(a.Title); title != "" && title != trip.Title {
		trip.Title = title
		changed = true
	}
	if a.DayCount != nil && *a.DayCount >= 1 && *a.DayCount != trip.DayCount() {
		*trip = trip.WithDayCount(*a.DayCount)
		changed = true
	}
	if !changed {
		return nil
	}

	updated, err := o.trips.Update(ctx, *trip)
	if err != nil {
		return err
	}
	*trip = updated
	return nil
}

func (o *Orchestrator) applyAdd(ctx context.Context, trip *domain.Trip, a domain.Action, st *batchState,
	summary *domain.ApplySummary, opts Options, total int, index *int) error {

	if len(a.Destinations) == 0 {
		return nil
	}

	// A same-batch duration change may have designated a landing day beyond
	// the old span; the trip was already widened by applyModifyTrip.
	batchHint := a.TargetDay
	if batchHint == nil {
		batchHint = st.targetDay
	}

	days := AssignDays(a.Destinations, trip.DayCount(), batchHint, st.fromModify)

	current, err := o.dests.ListByTripID(ctx, trip.ID)
	if err != nil {
		return err
	}
	grouped := GroupByDay(current)

	for i, draft := range a.Destinations {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		*index++
		opts.progress(domain.Progress{Index: *index, Total: total, Name: draft.Name})

		dest := domain.Destination{
			TripID:      trip.ID,
			Name:        draft.Name,
			Coordinates: draft.Coordinates,
			Category:    draft.Category,
		}
		if dest.Category == "" {
			dest.Category = domain.CategoryOther
		}

		if dest.Coordinates == nil && o.resolver != nil {
			place, err := o.resolver.Resolve(ctx, draft.Name, opts.LocationHint)
			switch {
			case err == nil:
				dest.Coordinates = &place.Coordinates
				dest.PlaceRef = place.Ref
				dest.Address = place.Address
				dest.Rating = place.Rating
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				// Unresolvable places are still added, just without a pin
				// on the map. The caller hears about it.
				o.log.Warn("place resolution failed", "name", draft.Name, "error", err)
				summary.Failed++
				summary.FailedNames = append(summary.FailedNames, draft.Name)
				opts.failure(domain.Failure{Name: draft.Name, Reason: "could not resolve location"})
			}
		}

		day := days[i]
		dest.Day = day
		dest.Position = len(grouped[day]) + 1

		created, err := o.dests.Create(ctx, dest)
		if err != nil {
			return err
		}
		grouped[day] = append(grouped[day], created)
		summary.Added++
	}

	return nil
}

func (o *Orchestrator) applyRemove(ctx context.Context, trip domain.Trip, a domain.Action,
	summary *domain.ApplySummary, opts Options) error {

	current, err := o.dests.ListByTripID(ctx, trip.ID)
	if err != nil {
		return err
	}

	names := a.DestinationNames
	if len(names) == 0 {
		names = lo.Map(a.Destinations, func(d domain.DestinationDraft, _ int) string { return d.Name })
	}

	seen := map[uuid.UUID]bool{}
	var victims []domain.Destination

	for _, name := range names {
		matches := MatchByName(current, name)
		if len(matches) == 0 {
			opts.failure(domain.Failure{Name: name, Reason: "no matching destination"})
			continue
		}
		for _, m := range matches {
			if !seen[m.ID] {
				seen[m.ID] = true
				victims = append(victims, m)
			}
		}
	}

	// Last resort: fish destination names out of the free-text context.
	if len(names) == 0 && a.Context != "" {
		lower := strings.ToLower(a.Context)
		for _, d := range current {
			if strings.Contains(lower, strings.ToLower(d.Name)) && !seen[d.ID] {
				seen[d.ID] = true
				victims = append(victims, d)
				o.log.Info("removal matched from context", "name", d.Name)
			}
		}
	}

	if len(victims) == 0 {
		return nil
	}

	changed := map[int]bool{}
	for _, v := range victims {
		if err := o.dests.Delete(ctx, trip.ID, v.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		summary.Removed++
		changed[v.Day] = true
	}

	return o.renumber(ctx, trip.ID, changed)
}

func (o *Orchestrator) applyMove(ctx context.Context, trip domain.Trip, a domain.Action,
	summary *domain.ApplySummary, opts Options) error {

	current, err := o.dests.ListByTripID(ctx, trip.ID)
	if err != nil {
		return err
	}

	matches := MatchByName(current, a.Name)
	if len(matches) == 0 {
		opts.failure(domain.Failure{Name: a.Name, Reason: "no matching destination"})
		return nil
	}
	target := matches[0]

	toDay := target.Day
	if a.MoveToDay != nil {
		toDay = ClampDay(*a.MoveToDay, trip.DayCount())
	}

	grouped := GroupByDay(current)
	grouped[target.Day] = lo.Reject(grouped[target.Day], func(d domain.Destination, _ int) bool {
		return d.ID == target.ID
	})
	grouped[toDay] = Splice(grouped[toDay], target, a.TargetPosition)

	changed := map[int]bool{target.Day: true, toDay: true}
	if err := o.renumberGrouped(ctx, trip.ID, grouped, changed); err != nil {
		return err
	}
	summary.Moved++
	return nil
}

func (o *Orchestrator) applyReorder(ctx context.Context, trip domain.Trip, a domain.Action, opts Options) error {
	if len(a.Ordering) == 0 {
		return nil
	}

	current, err := o.dests.ListByTripID(ctx, trip.ID)
	if err != nil {
		return err
	}
	grouped := GroupByDay(current)

	type move struct {
		dest domain.Destination
		day  int
		pos  int
	}

	used := map[uuid.UUID]bool{}
	var moves []move
	changed := map[int]bool{}

	for _, entry := range a.Ordering {
		var picked *domain.Destination
		for _, m := range MatchByName(current, entry.Name) {
			if !used[m.ID] {
				d := m
				picked = &d
				break
			}
		}
		if picked == nil {
			opts.failure(domain.Failure{Name: entry.Name, Reason: "no matching destination"})
			continue
		}
		used[picked.ID] = true

		day := ClampDay(entry.Day, trip.DayCount())
		moves = append(moves, move{dest: *picked, day: day, pos: entry.Position})
		changed[picked.Day] = true
		changed[day] = true
	}

	if len(moves) == 0 {
		return nil
	}

	for day := range grouped {
		grouped[day] = lo.Reject(grouped[day], func(d domain.Destination, _ int) bool {
			return used[d.ID]
		})
	}

	// Insert in ascending (day, position) order so earlier splices do not
	// shift the slots of later ones.
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].day != moves[j].day {
			return moves[i].day < moves[j].day
		}
		return moves[i].pos < moves[j].pos
	})
	for _, m := range moves {
		pos := m.pos
		grouped[m.day] = Splice(grouped[m.day], m.dest, &pos)
	}

	return o.renumberGrouped(ctx, trip.ID, grouped, changed)
}

// ---- manual edits ----

// AddDestination inserts one destination at the end of the given day,
// resolving coordinates when the draft has none. Resolution failures do not
// block the insert.
func (o *Orchestrator) AddDestination(ctx context.Context, tripID uuid.UUID, draft domain.DestinationDraft, locationHint string) (domain.Destination, error) {
	mu := o.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	trip, err := o.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("planner.Orchestrator.AddDestination: %w", err)
	}
	if strings.TrimSpace(draft.Name) == "" {
		return domain.Destination{}, fmt.Errorf("planner.Orchestrator.AddDestination: %w: name is required", domain.ErrValidation)
	}

	dest := domain.Destination{
		TripID:      tripID,
		Name:        draft.Name,
		Coordinates: draft.Coordinates,
		Category:    draft.Category,
		Day:         1,
	}
	if dest.Category == "" {
		dest.Category = domain.CategoryOther
	}
	if draft.DayHint != nil {
		dest.Day = ClampDay(*draft.DayHint, trip.DayCount())
	}

	if dest.Coordinates == nil && o.resolver != nil {
		place, err := o.resolver.Resolve(ctx, draft.Name, locationHint)
		if err == nil {
			dest.Coordinates = &place.Coordinates
			dest.PlaceRef = place.Ref
			dest.Address = place.Address
			dest.Rating = place.Rating
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Destination{}, fmt.Errorf("planner.Orchestrator.AddDestination: %w", err)
		} else {
			o.log.Warn("place resolution failed", "name", draft.Name, "error", err)
		}
	}

	current, err := o.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("planner.Orchestrator.AddDestination: %w", err)
	}
	dest.Position = len(GroupByDay(current)[dest.Day]) + 1

	created, err := o.dests.Create(ctx, dest)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("planner.Orchestrator.AddDestination: %w", err)
	}
	return created, nil
}

// RemoveDestination deletes one destination and closes the gap it leaves in
// its day.
func (o *Orchestrator) RemoveDestination(ctx context.Context, tripID, destID uuid.UUID) error {
	mu := o.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	dest, err := o.dests.GetByID(ctx, tripID, destID)
	if err != nil {
		return fmt.Errorf("planner.Orchestrator.RemoveDestination: %w", err)
	}
	if err := o.dests.Delete(ctx, tripID, destID); err != nil {
		return fmt.Errorf("planner.Orchestrator.RemoveDestination: %w", err)
	}
	if err := o.renumber(ctx, tripID, map[int]bool{dest.Day: true}); err != nil {
		return fmt.Errorf("planner.Orchestrator.RemoveDestination: %w", err)
	}
	return nil
}

// ReorderDay rewrites one day's order to match orderedIDs. Every ID must
// belong to that day; destinations on the day missing from orderedIDs keep
// their relative order after the listed ones.
func (o *Orchestrator) ReorderDay(ctx context.Context, tripID uuid.UUID, day int, orderedIDs []uuid.UUID) error {
	mu := o.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	current, err := o.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("planner.Orchestrator.ReorderDay: %w", err)
	}
	grouped := GroupByDay(current)
	bucket := grouped[day]

	byID := lo.KeyBy(bucket, func(d domain.Destination) uuid.UUID { return d.ID })
	placed := map[uuid.UUID]bool{}

	reordered := make([]domain.Destination, 0, len(bucket))
	for _, id := range orderedIDs {
		d, ok := byID[id]
		if !ok {
			return fmt.Errorf("planner.Orchestrator.ReorderDay: %w: destination %s not on day %d", domain.ErrValidation, id, day)
		}
		if placed[id] {
			continue
		}
		placed[id] = true
		reordered = append(reordered, d)
	}
	for _, d := range bucket {
		if !placed[d.ID] {
			reordered = append(reordered, d)
		}
	}

	grouped[day] = reordered
	if err := o.renumberGrouped(ctx, tripID, grouped, map[int]bool{day: true}); err != nil {
		return fmt.Errorf("planner.Orchestrator.ReorderDay: %w", err)
	}
	return nil
}

// OptimizeDay resequences one day's destinations to shorten the route and
// persists the new order. Smart mode pins lodging first and interleaves
// restaurants between attractions.
func (o *Orchestrator) OptimizeDay(ctx context.Context, tripID uuid.UUID, day int, smart bool) ([]domain.Destination, routing.Metrics, error) {
	mu := o.lock(tripID)
	mu.Lock()
	defer mu.Unlock()

	current, err := o.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, routing.Metrics{}, fmt.Errorf("planner.Orchestrator.OptimizeDay: %w", err)
	}
	grouped := GroupByDay(current)
	bucket := grouped[day]
	if len(bucket) < 2 {
		return bucket, routing.Metrics{}, nil
	}

	var (
		ordered []domain.Destination
		metrics routing.Metrics
	)
	if smart {
		ordered, metrics = routing.OptimizeSmart(bucket)
	} else {
		ordered, metrics = routing.Optimize(bucket)
	}

	grouped[day] = ordered
	if err := o.renumberGrouped(ctx, tripID, grouped, map[int]bool{day: true}); err != nil {
		return nil, routing.Metrics{}, fmt.Errorf("planner.Orchestrator.OptimizeDay: %w", err)
	}

	for i := range ordered {
		ordered[i].Position = i + 1
	}
	return ordered, metrics, nil
}

// ---- renumbering ----

// renumber re-lists the trip and densifies the changed days.
func (o *Orchestrator) renumber(ctx context.Context, tripID uuid.UUID, changed map[int]bool) error {
	if len(changed) == 0 {
		return nil
	}
	current, err := o.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return err
	}
	return o.renumberGrouped(ctx, tripID, GroupByDay(current), changed)
}

func (o *Orchestrator) renumberGrouped(ctx context.Context, tripID uuid.UUID, grouped map[int][]domain.Destination, changed map[int]bool) error {
	placements := RenumberDays(grouped, changed)
	if len(placements) == 0 {
		return nil
	}
	return o.dests.UpdatePositionsStaged(ctx, tripID, placements)
}

// lastOccupiedDay returns the highest day holding a destination, or 0 for an
// empty trip. Used to stop a duration change from truncating occupied days.
func (o *Orchestrator) lastOccupiedDay(ctx context.Context, tripID uuid.UUID) (int, error) {
	current, err := o.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return 0, err
	}
	last := 0
	for _, d := range current {
		if d.Day > last {
			last = d.Day
		}
	}
	return last, nil
}
