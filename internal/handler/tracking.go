package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"pressing-api/internal/config"
	"pressing-api/internal/models"
	"pressing-api/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SampleSaver persists tracker auto-save samples as the business address.
type SampleSaver interface {
	ApplySample(ctx context.Context, sample models.LocationSample) (*models.AddressRecord, error)
}

// TrackingHandler manages device-fed tracking sessions. The device streams
// its fixes over HTTP into a per-session push provider; the tracker applies
// the history/auto-save pipeline and persists save events through the
// address manager.
type TrackingHandler struct {
	resolver tracker.Resolver
	saver    SampleSaver
	cfg      config.TrackerConfig
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*trackingSession
}

type trackingSession struct {
	provider *tracker.PushProvider
	tracker  *tracker.Tracker
}

// NewTrackingHandler creates a new tracking handler.
func NewTrackingHandler(resolver tracker.Resolver, saver SampleSaver, cfg config.TrackerConfig, logger zerolog.Logger) *TrackingHandler {
	return &TrackingHandler{
		resolver: resolver,
		saver:    saver,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*trackingSession),
	}
}

func newSessionID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

type startRequest struct {
	HighAccuracy       bool     `json:"high_accuracy"`
	AutoSaveThresholdM float64  `json:"auto_save_threshold_m"`
	ReferenceLat       *float64 `json:"reference_lat"`
	ReferenceLng       *float64 `json:"reference_lng"`
}

// Start handles POST /tracking/start requests
// @Summary Start a real-time tracking session
// @Accept json
// @Produce json
// @Param request body startRequest false "Session options"
// @Success 201 {object} map[string]string
// @Router /tracking/start [post]
func (h *TrackingHandler) Start(c *gin.Context) {
	var req startRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	cfg := tracker.Config{
		AutoSaveThresholdM: req.AutoSaveThresholdM,
		HistorySize:        h.cfg.HistorySize,
		WatchTimeout:       h.cfg.WatchTimeout,
		HighAccuracy:       req.HighAccuracy,
	}
	if cfg.AutoSaveThresholdM <= 0 {
		cfg.AutoSaveThresholdM = h.cfg.AutoSaveThresholdM
	}
	if req.ReferenceLat != nil && req.ReferenceLng != nil {
		cfg.Reference = &models.Coordinate{Lat: *req.ReferenceLat, Lng: *req.ReferenceLng}
	}

	id := newSessionID()
	provider := tracker.NewPushProvider()
	logger := h.logger.With().Str("session", id).Logger()

	callbacks := tracker.Callbacks{
		OnSave: func(sample models.LocationSample) {
			// Auto-save persists in the background; a failure is surfaced
			// through the manager's notification sink, not to the device.
			if h.saver == nil {
				return
			}
			go func() {
				if _, err := h.saver.ApplySample(context.Background(), sample); err != nil {
					logger.Warn().Err(err).Msg("auto-save failed")
				}
			}()
		},
		OnStop: func(reason tracker.StopReason) {
			logger.Info().Str("reason", string(reason)).Msg("tracking session ended")
		},
	}

	tr := tracker.New(provider, h.resolver, cfg, callbacks, logger)
	if err := tr.Start(context.Background()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.mu.Lock()
	h.sessions[id] = &trackingSession{provider: provider, tracker: tr}
	h.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (h *TrackingHandler) session(c *gin.Context) (*trackingSession, bool) {
	h.mu.Lock()
	s, ok := h.sessions[c.Param("id")]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tracking session"})
		return nil, false
	}
	return s, true
}

type positionRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	AccuracyM float64 `json:"accuracy_m"`
}

// Position handles POST /tracking/:id/position requests
// @Summary Ingest one device position fix
// @Accept json
// @Router /tracking/{id}/position [post]
func (h *TrackingHandler) Position(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !s.tracker.Tracking() {
		c.JSON(http.StatusConflict, gin.H{"error": "session is not tracking"})
		return
	}

	s.provider.Offer(tracker.Position{Latitude: req.Lat, Longitude: req.Lng, AccuracyM: req.AccuracyM})
	c.Status(http.StatusAccepted)
}

type failureRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Failure handles POST /tracking/:id/failure requests: the device reports a
// terminal geolocation error (permission denied, unavailable, timeout),
// which ends the session without automatic retry.
// @Summary Report a device geolocation failure
// @Accept json
// @Produce json
// @Router /tracking/{id}/failure [post]
func (h *TrackingHandler) Failure(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req failureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reason := tracker.StopReason(req.Reason)
	switch reason {
	case tracker.ReasonPermissionDenied, tracker.ReasonUnavailable, tracker.ReasonTimeout:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown failure reason"})
		return
	}

	s.provider.Fail(reason)
	c.JSON(http.StatusOK, gin.H{"message": reason.Message()})
}

// Stop handles POST /tracking/:id/stop requests
// @Summary Stop a tracking session
// @Produce json
// @Router /tracking/{id}/stop [post]
func (h *TrackingHandler) Stop(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	if err := s.tracker.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "session already stopped"})
		return
	}

	h.mu.Lock()
	delete(h.sessions, c.Param("id"))
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"elapsed_s": s.tracker.Elapsed().Seconds()})
}

// History handles GET /tracking/:id/history requests
// @Summary Read the session's bounded sample history
// @Produce json
// @Success 200 {array} models.LocationSample
// @Router /tracking/{id}/history [get]
func (h *TrackingHandler) History(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.tracker.History())
}
