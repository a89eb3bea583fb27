// Package places resolves bare destination names to geographic coordinates
// through an external place-search collaborator. The collaborator is treated
// as unreliable: it may time out, return nothing, or return irrelevant
// results, and the resolver copes by trying an ordered list of query variants
// and validating relevance of what comes back.
package places

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// ErrNoMatch is returned when every query variant has been exhausted without
// a relevant result. It is a resolution miss, not a failure: callers persist
// the destination without coordinates and report the name to the user.
var ErrNoMatch = errors.New("no relevant place found")

// Place is a resolved place-search result.
type Place struct {
	Name        string
	Address     string
	Coordinates domain.Coordinates
	Ref         string
	Rating      *float64
}

// Searcher is the external place-search collaborator.
// Implementations return results best-first and may fail transiently.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// Resolver turns destination names into coordinates by trying query variants
// in order against a Searcher, caching successful resolutions in-process.
type Resolver struct {
	search Searcher
	cache  *gocache.Cache
	log    *slog.Logger
}

// NewResolver constructs a Resolver. Resolved places are cached for an hour
// so repeated syncs of the same itinerary do not re-query the collaborator.
func NewResolver(search Searcher, log *slog.Logger) *Resolver {
	return &Resolver{
		search: search,
		cache:  gocache.New(time.Hour, 10*time.Minute),
		log:    log,
	}
}

// Resolve tries each candidate query in order and returns the first result
// judged relevant. Individual search errors are logged and skipped — the
// next variant is tried rather than aborting the whole resolution. Returns
// ErrNoMatch only after all variants are exhausted.
func (r *Resolver) Resolve(ctx context.Context, name, hint string) (Place, error) {
	cacheKey := name + "|" + hint
	if hit, ok := r.cache.Get(cacheKey); ok {
		return hit.(Place), nil
	}

	for _, c := range Candidates(name, hint) {
		results, err := r.search.Search(ctx, c.Query)
		if err != nil {
			if ctx.Err() != nil {
				return Place{}, ctx.Err()
			}
			r.log.Warn("place search variant failed", "query", c.Query, "error", err)
			continue
		}
		if len(results) == 0 {
			continue
		}

		top := results[0]
		if !relevant(c, top) {
			r.log.Debug("place search result rejected as irrelevant",
				"query", c.Query, "result", top.Name)
			continue
		}

		r.cache.SetDefault(cacheKey, top)
		return top, nil
	}

	return Place{}, ErrNoMatch
}

// relevant judges whether a search result plausibly answers the candidate
// query. Trusted candidates (exact raw name, country-qualified) are accepted
// by construction; otherwise the result name must contain the query's core
// term or vice versa.
func relevant(c Candidate, p Place) bool {
	if c.Trusted {
		return true
	}
	got := strings.ToLower(p.Name)
	want := strings.ToLower(c.Core)
	return strings.Contains(got, want) || strings.Contains(want, got)
}
