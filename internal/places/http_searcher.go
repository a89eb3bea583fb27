package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/oskarlind/wayplan/backend/internal/domain"
)

// HTTPSearcher queries a Nominatim-style place-search endpoint:
// GET {base}/search?q=<query>&format=json&limit=5.
// Transient failures (network errors, 5xx) are retried with backoff before
// the error is surfaced; the resolver then moves on to the next variant.
type HTTPSearcher struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewHTTPSearcher constructs an HTTPSearcher against the given base URL.
func NewHTTPSearcher(baseURL string) *HTTPSearcher {
	return &HTTPSearcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "wayplan/1.0",
	}
}

type searchResult struct {
	PlaceID     json.Number `json:"place_id"`
	DisplayName string      `json:"display_name"`
	Name        string      `json:"name"`
	Lat         string      `json:"lat"`
	Lon         string      `json:"lon"`
}

// Search performs one place-search query and maps the response to Places.
// Results with unparseable coordinates are dropped rather than failing the
// whole query.
func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]Place, error) {
	queryURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=5", s.baseURL, url.QueryEscape(query))

	var raw []searchResult
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("place search: HTTP %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("place search: HTTP %d", resp.StatusCode)
		}

		raw = nil
		return json.NewDecoder(resp.Body).Decode(&raw)
	})
	if err != nil {
		return nil, fmt.Errorf("places.HTTPSearcher.Search: %w", err)
	}

	results := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		name := r.Name
		if name == "" {
			// display_name is "Name, district, city, country" — the leading
			// segment is the place name.
			name = strings.SplitN(r.DisplayName, ",", 2)[0]
		}
		results = append(results, Place{
			Name:        name,
			Address:     r.DisplayName,
			Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
			Ref:         r.PlaceID.String(),
		})
	}
	return results, nil
}
