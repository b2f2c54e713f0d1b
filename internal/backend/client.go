package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pressing-api/internal/cache"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
)

// Config selects and authenticates against the upstream pressing API.
type Config struct {
	BaseURL     string
	FallbackURL string
	Token       string
	Timeout     time.Duration
}

// envelope is the upstream response wrapper shared by every endpoint.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Errors     []FieldError    `json:"errors"`
	Code       string          `json:"code"`
	StatusCode int             `json:"statusCode"`
	Count      *int            `json:"count"`
}

// Client is the typed HTTP client for the pressing backend. Reads go through
// the cache store; writes invalidate regions per the static mutation table.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	store   *cache.Store
	logger  zerolog.Logger

	mu      sync.Mutex
	refetch map[string]func(ctx context.Context)
}

// New creates a client against cfg.BaseURL without probing it.
func New(cfg Config, store *cache.Store, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		store:   store,
		logger:  logger,
		refetch: make(map[string]func(ctx context.Context)),
	}
}

// Connect probes cfg.BaseURL with /ping and falls back to cfg.FallbackURL
// when the primary is unreachable. The returned client uses whichever URL
// answered; if neither does, the primary is kept and calls will surface
// network errors.
func Connect(ctx context.Context, cfg Config, store *cache.Store, logger zerolog.Logger) *Client {
	c := New(cfg, store, logger)
	if err := c.Ping(ctx); err == nil {
		return c
	} else {
		logger.Warn().Err(err).Str("url", cfg.BaseURL).Msg("primary backend unreachable")
	}

	if cfg.FallbackURL != "" {
		fallback := cfg
		fallback.BaseURL = cfg.FallbackURL
		fc := New(fallback, store, logger)
		if err := fc.Ping(ctx); err == nil {
			logger.Info().Str("url", cfg.FallbackURL).Msg("using fallback backend")
			return fc
		}
	}
	return c
}

// Ping checks upstream connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("backend: failed to build ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeTransport(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeStatus(resp.StatusCode, "", "", nil)
	}
	return nil
}

// do issues one request and decodes the enveloped response into out.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeTransport(err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeStatus(resp.StatusCode, env.Message, env.Code, env.Errors)
	}
	if decodeErr != nil {
		return &Error{Category: CategoryServer, Message: "réponse du serveur illisible"}
	}
	if !env.Success {
		return normalizeStatus(resp.StatusCode, env.Message, env.Code, env.Errors)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Category: CategoryServer, Message: "réponse du serveur illisible"}
		}
	}
	return nil
}

// cachedGet serves key from the store or fetches it, caching the decoded
// value under the given tags and registering a background refetcher for
// trigger-driven refreshes.
func (c *Client) cachedGet(ctx context.Context, key, path string, decode func(json.RawMessage) (interface{}, error), tags ...cache.Tag) (interface{}, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	v, err := decode(raw)
	if err != nil {
		return nil, &Error{Category: CategoryServer, Message: "réponse du serveur illisible"}
	}
	c.store.Put(key, v, tags...)

	c.mu.Lock()
	c.refetch[key] = func(ctx context.Context) {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("background refresh failed")
			return
		}
		if v, err := decode(raw); err == nil {
			c.store.Put(key, v, tags...)
		}
	}
	c.mu.Unlock()

	return v, nil
}

// OnTrigger refreshes, in the background, every cached read whose region
// subscribes to the trigger. Fire-and-forget.
func (c *Client) OnTrigger(ctx context.Context, t cache.Trigger) {
	keys := c.store.TriggerKeys(t)
	c.mu.Lock()
	fns := make([]func(ctx context.Context), 0, len(keys))
	for _, key := range keys {
		if fn, ok := c.refetch[key]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range fns {
		go fn(ctx)
	}
}

// GetProfile returns the pressing profile, cached under the profile region.
func (c *Client) GetProfile(ctx context.Context) (*models.PressingProfile, error) {
	v, err := c.cachedGet(ctx, "profile", "/pressing/profile",
		func(raw json.RawMessage) (interface{}, error) {
			var p models.PressingProfile
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		cache.Tag{Region: cache.RegionProfile},
		cache.Tag{Region: cache.RegionProfile, Subtype: "services"},
		cache.Tag{Region: cache.RegionProfile, Subtype: "hours"},
		cache.Tag{Region: cache.RegionProfile, Subtype: "photos"},
		cache.Tag{Region: cache.RegionProfile, Subtype: "deliveryZones"},
	)
	if err != nil {
		return nil, err
	}
	return v.(*models.PressingProfile), nil
}

// UpdateProfile persists the whole profile and invalidates dependent
// regions.
func (c *Client) UpdateProfile(ctx context.Context, profile *models.PressingProfile) error {
	if err := c.do(ctx, http.MethodPut, "/pressing/profile", profile, nil); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationProfileUpdate, "")
	return nil
}

// GetStats returns the dashboard statistics snapshot, cached briefly.
func (c *Client) GetStats(ctx context.Context) (*models.PressingStats, error) {
	v, err := c.cachedGet(ctx, "stats", "/pressing/stats",
		func(raw json.RawMessage) (interface{}, error) {
			var s models.PressingStats
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			return &s, nil
		},
		cache.Tag{Region: cache.RegionStats},
	)
	if err != nil {
		return nil, err
	}
	return v.(*models.PressingStats), nil
}

// ListServices returns the service catalogue, cached.
func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	v, err := c.cachedGet(ctx, "services", "/pressing/services",
		func(raw json.RawMessage) (interface{}, error) {
			var services []models.Service
			if err := json.Unmarshal(raw, &services); err != nil {
				return nil, err
			}
			return services, nil
		},
		cache.Tag{Region: cache.RegionServices},
	)
	if err != nil {
		return nil, err
	}
	return v.([]models.Service), nil
}

// CreateService adds a service to the catalogue.
func (c *Client) CreateService(ctx context.Context, svc *models.Service) error {
	if err := c.do(ctx, http.MethodPost, "/pressing/services", svc, svc); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationServiceCreate, svc.ID)
	return nil
}

// UpdateService updates one service.
func (c *Client) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := c.do(ctx, http.MethodPut, "/pressing/services/"+svc.ID, svc, nil); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationServiceUpdate, svc.ID)
	return nil
}

// DeleteService removes one service.
func (c *Client) DeleteService(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/pressing/services/"+id, nil, nil); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationServiceDelete, id)
	return nil
}

// ListDeliveryZones returns the delivery zones, cached.
func (c *Client) ListDeliveryZones(ctx context.Context) ([]models.DeliveryZone, error) {
	v, err := c.cachedGet(ctx, "delivery-zones", "/pressing/delivery-zones",
		func(raw json.RawMessage) (interface{}, error) {
			var zones []models.DeliveryZone
			if err := json.Unmarshal(raw, &zones); err != nil {
				return nil, err
			}
			return zones, nil
		},
		cache.Tag{Region: cache.RegionDeliveryZones},
	)
	if err != nil {
		return nil, err
	}
	return v.([]models.DeliveryZone), nil
}

// CreateDeliveryZone adds a delivery zone.
func (c *Client) CreateDeliveryZone(ctx context.Context, zone *models.DeliveryZone) error {
	if err := c.do(ctx, http.MethodPost, "/pressing/delivery-zones", zone, zone); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationZoneCreate, zone.ID)
	return nil
}

// DeleteDeliveryZone removes a delivery zone.
func (c *Client) DeleteDeliveryZone(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/pressing/delivery-zones/"+id, nil, nil); err != nil {
		return err
	}
	c.store.InvalidateMutation(cache.MutationZoneDelete, id)
	return nil
}

// ReverseGeocode asks the backend's own reverse-geocoding endpoint. Used
// when a frontend wants the backend's view rather than the provider's.
func (c *Client) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := c.do(ctx, http.MethodPost, "/pressing/reverse-geocode", coord, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}
