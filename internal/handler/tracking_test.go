package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pressing-api/internal/config"
	"pressing-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSaver captures auto-saved samples.
type recordingSaver struct {
	mu      sync.Mutex
	samples []models.LocationSample
}

func (s *recordingSaver) ApplySample(ctx context.Context, sample models.LocationSample) (*models.AddressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	return &models.AddressRecord{Coordinates: sample.Coordinate}, nil
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

func trackingRouter(h *TrackingHandler) *gin.Engine {
	r := gin.New()
	r.POST("/tracking/start", h.Start)
	r.POST("/tracking/:id/position", h.Position)
	r.POST("/tracking/:id/failure", h.Failure)
	r.POST("/tracking/:id/stop", h.Stop)
	r.GET("/tracking/:id/history", h.History)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, r *gin.Engine, body string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/tracking/start", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func defaultTrackerConfig() config.TrackerConfig {
	return config.TrackerConfig{
		AutoSaveThresholdM: 50,
		HistorySize:        10,
		WatchTimeout:       time.Second,
	}
}

func TestTrackingHandler_SessionLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTrackingHandler(nil, nil, defaultTrackerConfig(), zerolog.Nop())
	r := trackingRouter(h)

	id := startSession(t, r, "")

	w := doJSON(t, r, http.MethodPost, "/tracking/"+id+"/position", `{"lat":5.33,"lng":-4.02,"accuracy_m":8}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, "/tracking/"+id+"/history", "")
		var history []models.LocationSample
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
		return len(history) == 1
	}, time.Second, 5*time.Millisecond)

	w = doJSON(t, r, http.MethodPost, "/tracking/"+id+"/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The session is gone after stop.
	w = doJSON(t, r, http.MethodGet, "/tracking/"+id+"/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackingHandler_UnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTrackingHandler(nil, nil, defaultTrackerConfig(), zerolog.Nop())
	r := trackingRouter(h)

	w := doJSON(t, r, http.MethodPost, "/tracking/nope/position", `{"lat":5.33,"lng":-4.02}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackingHandler_AutoSaveFlowsToSaver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	saver := &recordingSaver{}
	h := NewTrackingHandler(nil, saver, defaultTrackerConfig(), zerolog.Nop())
	r := trackingRouter(h)

	id := startSession(t, r, `{"reference_lat":5.3235,"reference_lng":-4.0244}`)

	// ~78 m from the reference: past the 50 m threshold.
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/tracking/%s/position", id), `{"lat":5.3242,"lng":-4.0244}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return saver.count() == 1
	}, time.Second, 5*time.Millisecond, "the auto-save must reach the address manager")
}

func TestTrackingHandler_FailureEndsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTrackingHandler(nil, nil, defaultTrackerConfig(), zerolog.Nop())
	r := trackingRouter(h)

	id := startSession(t, r, "")

	w := doJSON(t, r, http.MethodPost, "/tracking/"+id+"/failure", `{"reason":"permission-denied"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Autorisation de localisation refusée")

	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodPost, "/tracking/"+id+"/position", `{"lat":5.33,"lng":-4.02}`)
		return w.Code == http.StatusConflict
	}, time.Second, 5*time.Millisecond, "a failed session no longer accepts fixes")
}

func TestTrackingHandler_RejectsUnknownFailureReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTrackingHandler(nil, nil, defaultTrackerConfig(), zerolog.Nop())
	r := trackingRouter(h)

	id := startSession(t, r, "")

	w := doJSON(t, r, http.MethodPost, "/tracking/"+id+"/failure", `{"reason":"battery-low"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
