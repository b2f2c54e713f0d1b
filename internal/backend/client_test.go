package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pressing-api/internal/cache"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *cache.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := cache.NewStore()
	client := New(Config{BaseURL: srv.URL, Token: "test-token", Timeout: time.Second}, store, zerolog.Nop())
	return client, store
}

func TestClient_GetProfile_CachesAndAuthenticates(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/pressing/profile", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.PressingProfile{
				ID:   "p-1",
				Name: "Pressing Excellence",
				Address: models.AddressRecord{
					Street:      "Rue des Jardins",
					City:        "Abidjan",
					District:    "Cocody",
					Country:     "Côte d'Ivoire",
					Coordinates: models.Coordinate{Lat: 5.36, Lng: -3.97},
				},
			},
		})
	}))

	ctx := context.Background()
	p1, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pressing Excellence", p1.Name)

	p2, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Same(t, p1, p2, "second read must come from cache")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_UpdateProfile_InvalidatesCache(t *testing.T) {
	var gets int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&gets, 1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    models.PressingProfile{ID: "p-1"},
			})
		case http.MethodPut:
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "ok"})
		}
	}))

	ctx := context.Background()
	_, err := client.GetProfile(ctx)
	require.NoError(t, err)

	require.NoError(t, client.UpdateProfile(ctx, &models.PressingProfile{ID: "p-1"}))

	_, err = client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gets), "profile update must force a refetch")
}

func TestClient_ServiceUpdate_StalesProfileView(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    models.PressingProfile{ID: "p-1"},
		})
	}))

	// The cached profile carries the embedded services subtype tag.
	ctx := context.Background()
	_, err := client.GetProfile(ctx)
	require.NoError(t, err)

	require.NoError(t, client.UpdateService(ctx, &models.Service{ID: "svc-1", Name: "Repassage chemise"}))

	_, ok := store.Get("profile")
	assert.False(t, ok, "service update must stale the embedded profile view")
}

func TestClient_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name             string
		status           int
		body             string
		expectedCategory Category
	}{
		{
			name:             "unauthorized",
			status:           http.StatusUnauthorized,
			body:             `{"success":false,"message":"session expirée"}`,
			expectedCategory: CategoryAuthExpired,
		},
		{
			name:             "forbidden",
			status:           http.StatusForbidden,
			body:             `{"success":false,"message":"accès refusé"}`,
			expectedCategory: CategoryForbidden,
		},
		{
			name:             "not found",
			status:           http.StatusNotFound,
			body:             `{"success":false,"message":"introuvable"}`,
			expectedCategory: CategoryNotFound,
		},
		{
			name:             "validation with field detail",
			status:           http.StatusBadRequest,
			body:             `{"success":false,"message":"données invalides","errors":[{"field":"phone","message":"format invalide"}]}`,
			expectedCategory: CategoryValidation,
		},
		{
			name:             "server fault",
			status:           http.StatusInternalServerError,
			body:             `{"success":false,"message":"erreur interne"}`,
			expectedCategory: CategoryServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			err := client.UpdateProfile(context.Background(), &models.PressingProfile{})
			require.Error(t, err)

			var be *Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.expectedCategory, be.Category)
			assert.Equal(t, tt.status, be.StatusCode)
			if tt.expectedCategory == CategoryValidation {
				require.Len(t, be.Fields, 1)
				assert.Equal(t, "phone", be.Fields[0].Field)
			}
		})
	}
}

func TestClient_TimeoutCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, cache.NewStore(), zerolog.Nop())
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, CategoryTimeout, CategoryOf(err))
}

func TestConnect_FallsBackWhenPrimaryUnreachable(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": models.PressingStats{OrdersToday: 3}})
	}))
	defer fallback.Close()

	cfg := Config{
		BaseURL:     "http://127.0.0.1:1", // nothing listens here
		FallbackURL: fallback.URL,
		Timeout:     time.Second,
	}
	client := Connect(context.Background(), cfg, cache.NewStore(), zerolog.Nop())

	stats, err := client.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.OrdersToday)
}

func TestClient_OnTrigger_RefreshesSubscribedRegions(t *testing.T) {
	var statsGets int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pressing/stats" {
			atomic.AddInt32(&statsGets, 1)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": models.PressingStats{}})
	}))

	ctx := context.Background()
	_, err := client.GetStats(ctx)
	require.NoError(t, err)

	client.OnTrigger(ctx, cache.TriggerFocus)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&statsGets) == 2
	}, time.Second, 10*time.Millisecond, "focus must refresh the stats region in the background")
}
