package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"pressing-api/internal/geo"
	"pressing-api/internal/geocode"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyTracking is returned by Start on a running tracker.
	ErrAlreadyTracking = errors.New("tracker: already tracking")
	// ErrNotTracking is returned by Stop on a stopped tracker.
	ErrNotTracking = errors.New("tracker: not tracking")
)

// Resolver is the best-effort address resolution used per sample.
type Resolver interface {
	Resolve(ctx context.Context, c models.Coordinate) geocode.Result
}

// Config tunes one tracker.
type Config struct {
	// AutoSaveThresholdM is the displacement from the last saved point that
	// triggers a save event. Defaults to 50 m.
	AutoSaveThresholdM float64
	// HistorySize bounds the sample history buffer. Defaults to 10.
	HistorySize int
	// WatchTimeout is passed to the device watch for slow fixes. Defaults
	// to 12 s.
	WatchTimeout time.Duration
	// HighAccuracy selects the device accuracy mode.
	HighAccuracy bool
	// Reference seeds the last-saved point. When nil, the first sample
	// becomes the reference without emitting a save.
	Reference *models.Coordinate
}

// Callbacks receive tracker events. All are optional and are invoked from
// the tracker's run goroutine, never concurrently with each other.
type Callbacks struct {
	// OnUpdate fires for every sample.
	OnUpdate func(models.LocationSample)
	// OnSave fires when displacement from the saved reference exceeds the
	// threshold; the reference then moves to the sample.
	OnSave func(models.LocationSample)
	// OnStop fires once when the session ends, with the reason.
	OnStop func(StopReason)
}

// Tracker consumes a continuous position stream, keeps a bounded sample
// history, and emits a save event whenever the device has moved further than
// the threshold from the last saved point. A session runs until Stop or a
// terminal watch failure; it never restarts itself.
type Tracker struct {
	provider  LocationProvider
	resolver  Resolver
	cfg       Config
	callbacks Callbacks
	logger    zerolog.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	history   []models.LocationSample
	reference *models.Coordinate
	startedAt time.Time
	stoppedAt time.Time
}

// New creates a tracker. The resolver may be nil; samples then carry no
// resolved address.
func New(provider LocationProvider, resolver Resolver, cfg Config, cb Callbacks, logger zerolog.Logger) *Tracker {
	if cfg.AutoSaveThresholdM <= 0 {
		cfg.AutoSaveThresholdM = 50
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 10
	}
	if cfg.WatchTimeout <= 0 {
		cfg.WatchTimeout = 12 * time.Second
	}
	return &Tracker{
		provider:  provider,
		resolver:  resolver,
		cfg:       cfg,
		callbacks: cb,
		logger:    logger,
		reference: cfg.Reference,
	}
}

// Start begins a tracking session.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrAlreadyTracking
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub, err := t.provider.Watch(watchCtx, WatchOptions{
		HighAccuracy: t.cfg.HighAccuracy,
		Timeout:      t.cfg.WatchTimeout,
	})
	if err != nil {
		cancel()
		t.mu.Unlock()
		return err
	}

	t.running = true
	t.cancel = cancel
	t.startedAt = time.Now()
	t.stoppedAt = time.Time{}
	t.history = t.history[:0]
	t.mu.Unlock()

	go t.run(watchCtx, sub)
	return nil
}

// Stop ends the session. In-flight geocode results are discarded once the
// running flag drops; the watch itself is cancelled immediately.
func (t *Tracker) Stop() error {
	return t.stop(ReasonUserStopped)
}

func (t *Tracker) stop(reason StopReason) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return ErrNotTracking
	}
	t.running = false
	t.stoppedAt = time.Now()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	cancel()
	if t.callbacks.OnStop != nil {
		t.callbacks.OnStop(reason)
	}
	t.logger.Debug().Str("reason", string(reason)).Msg("tracking stopped")
	return nil
}

func (t *Tracker) run(ctx context.Context, sub Subscription) {
	defer sub.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case failure := <-sub.Failures():
			// Terminal by contract: the session ends and is never retried
			// automatically.
			_ = t.stop(failure.Reason)
			return
		case pos := <-sub.Updates():
			t.handleSample(ctx, pos)
		}
	}
}

func (t *Tracker) handleSample(ctx context.Context, pos Position) {
	sample := models.LocationSample{
		Coordinate: models.Coordinate{Lat: pos.Latitude, Lng: pos.Longitude},
		AccuracyM:  pos.AccuracyM,
		CapturedAt: time.Now(),
	}

	if !geo.Valid(sample.Coordinate) {
		t.logger.Debug().Float64("lat", pos.Latitude).Float64("lng", pos.Longitude).Msg("dropping invalid sample")
		return
	}

	if t.resolver != nil {
		res := t.resolver.Resolve(ctx, sample.Coordinate)
		t.mu.Lock()
		stopped := !t.running
		t.mu.Unlock()
		if stopped {
			// The session ended while the geocode was in flight; its result
			// is discarded.
			return
		}
		sample.ResolvedAddress = res.Address
		sample.ResolvedDistrict = res.District
	}

	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.history = append(t.history, sample)
	if len(t.history) > t.cfg.HistorySize {
		t.history = t.history[len(t.history)-t.cfg.HistorySize:]
	}

	save := false
	if t.reference == nil {
		ref := sample.Coordinate
		t.reference = &ref
	} else if geo.Haversine(*t.reference, sample.Coordinate) > t.cfg.AutoSaveThresholdM {
		ref := sample.Coordinate
		t.reference = &ref
		save = true
	}
	t.mu.Unlock()

	if t.callbacks.OnUpdate != nil {
		t.callbacks.OnUpdate(sample)
	}
	if save && t.callbacks.OnSave != nil {
		t.callbacks.OnSave(sample)
	}
}

// History returns a copy of the bounded sample history, oldest first.
func (t *Tracker) History() []models.LocationSample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.LocationSample, len(t.history))
	copy(out, t.history)
	return out
}

// Tracking reports whether a session is active.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the session duration so far, or the final duration after
// the session ended.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() {
		return 0
	}
	if !t.stoppedAt.IsZero() {
		return t.stoppedAt.Sub(t.startedAt)
	}
	return time.Since(t.startedAt)
}
