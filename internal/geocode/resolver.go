package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pressing-api/internal/geo"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Result is a resolved human-readable location. Address is never empty:
// when every source fails it carries the formatted coordinates.
type Result struct {
	Address  string `json:"address"`
	District string `json:"district"`
}

// LandmarkFinder is the optional local fallback consulted when the external
// provider fails. Implemented by the PostGIS landmark repository.
type LandmarkFinder interface {
	FindNearestLandmark(ctx context.Context, lat, lng float64) (*models.Landmark, error)
}

// providerResponse mirrors the subset of the provider's geocoding payload we
// read: the first feature's place name and its neighborhood context entry.
type providerResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
		Context   []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"context"`
	} `json:"features"`
}

// Resolver converts coordinates into addresses. Resolution degrades through
// three tiers: external provider, local landmark database, formatted
// coordinate string. It never blocks a location save: Resolve has no error
// return.
type Resolver struct {
	client      *http.Client
	endpoint    string
	accessToken string
	timeout     time.Duration
	landmarks   LandmarkFinder
	group       singleflight.Group
	logger      zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLandmarks enables the local landmark fallback.
func WithLandmarks(f LandmarkFinder) Option {
	return func(r *Resolver) { r.landmarks = f }
}

// WithHTTPClient replaces the default HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver against the given provider endpoint. A
// timeout of zero defaults to 4 seconds.
func NewResolver(endpoint, accessToken string, timeout time.Duration, opts ...Option) *Resolver {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	r := &Resolver{
		client:      &http.Client{Timeout: timeout},
		endpoint:    strings.TrimRight(endpoint, "/"),
		accessToken: accessToken,
		timeout:     timeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best available address and district for c. Concurrent
// calls for the same (rounded) coordinate share a single provider request.
func (r *Resolver) Resolve(ctx context.Context, c models.Coordinate) Result {
	key := fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolve(ctx, c), nil
	})
	return v.(Result)
}

func (r *Resolver) resolve(ctx context.Context, c models.Coordinate) Result {
	if res, err := r.fromProvider(ctx, c); err == nil {
		return res
	} else {
		r.logger.Debug().Err(err).Float64("lat", c.Lat).Float64("lng", c.Lng).Msg("provider reverse geocoding failed")
	}

	if r.landmarks != nil {
		if res, err := r.fromLandmarks(ctx, c); err == nil {
			return res
		} else {
			r.logger.Debug().Err(err).Msg("landmark fallback failed")
		}
	}

	return Result{Address: FormatCoordinate(c), District: geo.DistrictFor(c)}
}

func (r *Resolver) fromProvider(ctx context.Context, c models.Coordinate) (Result, error) {
	if r.endpoint == "" {
		return Result{}, fmt.Errorf("geocode: no provider endpoint configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("access_token", r.accessToken)
	q.Set("language", "fr")
	q.Set("country", "CI")
	q.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/%f,%f.json?%s", r.endpoint, c.Lng, c.Lat, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: failed to build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("geocode: provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("geocode: failed to decode response: %w", err)
	}
	if len(payload.Features) == 0 {
		return Result{}, fmt.Errorf("geocode: provider returned no features")
	}

	feature := payload.Features[0]
	district := ""
	for _, entry := range feature.Context {
		if strings.HasPrefix(entry.ID, "neighborhood") {
			district = entry.Text
			break
		}
	}
	if district == "" {
		district = geo.DistrictFor(c)
	}

	return Result{Address: feature.PlaceName, District: district}, nil
}

func (r *Resolver) fromLandmarks(ctx context.Context, c models.Coordinate) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	landmark, err := r.landmarks.FindNearestLandmark(ctx, c.Lat, c.Lng)
	if err != nil {
		return Result{}, err
	}

	address := landmark.Name
	if landmark.Street != "" {
		address = landmark.Street + ", " + landmark.Name
	}
	district := landmark.District
	if district == "" {
		district = geo.DistrictFor(c)
	}

	return Result{Address: address, District: district}, nil
}

// FormatCoordinate renders c as the last-resort display address.
func FormatCoordinate(c models.Coordinate) string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng)
}
