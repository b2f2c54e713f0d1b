package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"pressing-api/internal/geocode"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver resolves every coordinate to a fixed address.
type staticResolver struct {
	result geocode.Result
}

func (r *staticResolver) Resolve(ctx context.Context, c models.Coordinate) geocode.Result {
	return r.result
}

// recorder collects tracker events behind a mutex so tests can poll them.
type recorder struct {
	mu      sync.Mutex
	updates []models.LocationSample
	saves   []models.LocationSample
	stops   []StopReason
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnUpdate: func(s models.LocationSample) {
			r.mu.Lock()
			r.updates = append(r.updates, s)
			r.mu.Unlock()
		},
		OnSave: func(s models.LocationSample) {
			r.mu.Lock()
			r.saves = append(r.saves, s)
			r.mu.Unlock()
		},
		OnStop: func(reason StopReason) {
			r.mu.Lock()
			r.stops = append(r.stops, reason)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) counts() (updates, saves, stops int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates), len(r.saves), len(r.stops)
}

func TestTracker_AutoSaveOnThreshold(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	ref := models.Coordinate{Lat: 5.3235, Lng: -4.0244}

	tr := New(provider, nil, Config{
		AutoSaveThresholdM: 50,
		Reference:          &ref,
	}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	// ~11 m north of the reference: below threshold.
	provider.Offer(Position{Latitude: 5.3236, Longitude: -4.0244})
	// ~33 m: still below.
	provider.Offer(Position{Latitude: 5.3238, Longitude: -4.0244})

	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 2
	}, time.Second, 5*time.Millisecond)
	_, saves, _ := rec.counts()
	assert.Equal(t, 0, saves, "no save below the threshold")

	// ~78 m from the reference: one save, exactly at this sample.
	provider.Offer(Position{Latitude: 5.3242, Longitude: -4.0244})
	require.Eventually(t, func() bool {
		_, s, _ := rec.counts()
		return s == 1
	}, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	saved := rec.saves[0]
	rec.mu.Unlock()
	assert.InDelta(t, 5.3242, saved.Coordinate.Lat, 1e-9)

	// The reference moved: a nearby follow-up sample does not save again.
	provider.Offer(Position{Latitude: 5.3243, Longitude: -4.0244})
	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 4
	}, time.Second, 5*time.Millisecond)
	_, saves, _ = rec.counts()
	assert.Equal(t, 1, saves)
}

func TestTracker_FirstSampleSeedsReferenceWithoutSave(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	tr := New(provider, nil, Config{}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	provider.Offer(Position{Latitude: 5.33, Longitude: -4.02})
	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)

	_, saves, _ := rec.counts()
	assert.Equal(t, 0, saves, "the seeding sample is a baseline, not a save")

	// Next sample 500+ m away saves against the seeded reference.
	provider.Offer(Position{Latitude: 5.34, Longitude: -4.02})
	require.Eventually(t, func() bool {
		_, s, _ := rec.counts()
		return s == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTracker_HistoryIsBounded(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	tr := New(provider, nil, Config{HistorySize: 5}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	for i := 0; i < 12; i++ {
		provider.Offer(Position{Latitude: 5.30 + float64(i)*0.001, Longitude: -4.0})
	}

	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 12
	}, time.Second, 5*time.Millisecond)

	history := tr.History()
	require.Len(t, history, 5, "history never exceeds its capacity")
	assert.InDelta(t, 5.311, history[4].Coordinate.Lat, 1e-9, "newest sample is kept")
	assert.InDelta(t, 5.307, history[0].Coordinate.Lat, 1e-9, "oldest samples are evicted first")
}

func TestTracker_SamplesCarryResolvedAddress(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	resolver := &staticResolver{result: geocode.Result{Address: "Rue des Jardins", District: "Cocody"}}
	tr := New(provider, resolver, Config{}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	provider.Offer(Position{Latitude: 5.35, Longitude: -3.99})
	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	sample := rec.updates[0]
	rec.mu.Unlock()
	assert.Equal(t, "Rue des Jardins", sample.ResolvedAddress)
	assert.Equal(t, "Cocody", sample.ResolvedDistrict)
}

func TestTracker_InvalidSamplesAreDropped(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	tr := New(provider, nil, Config{}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	provider.Offer(Position{Latitude: 91, Longitude: 0})
	provider.Offer(Position{Latitude: 5.33, Longitude: -4.02})

	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)

	history := tr.History()
	require.Len(t, history, 1)
	assert.InDelta(t, 5.33, history[0].Coordinate.Lat, 1e-9)
}

func TestTracker_WatchFailureStopsWithDistinctReason(t *testing.T) {
	tests := []struct {
		name   string
		reason StopReason
		msg    string
	}{
		{name: "permission denied", reason: ReasonPermissionDenied, msg: "Autorisation de localisation refusée"},
		{name: "position unavailable", reason: ReasonUnavailable, msg: "Position indisponible"},
		{name: "timeout", reason: ReasonTimeout, msg: "Délai de localisation dépassé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewPushProvider()
			rec := &recorder{}
			tr := New(provider, nil, Config{}, rec.callbacks(), zerolog.Nop())

			require.NoError(t, tr.Start(context.Background()))

			provider.Fail(tt.reason)

			require.Eventually(t, func() bool {
				_, _, stops := rec.counts()
				return stops == 1
			}, time.Second, 5*time.Millisecond)

			rec.mu.Lock()
			reason := rec.stops[0]
			rec.mu.Unlock()
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.msg, reason.Message())
			assert.False(t, tr.Tracking(), "a watch failure ends the session")

			// No automatic retry: the tracker stays stopped.
			assert.ErrorIs(t, tr.Stop(), ErrNotTracking)
		})
	}
}

func TestTracker_StartStopLifecycle(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	tr := New(provider, nil, Config{}, rec.callbacks(), zerolog.Nop())

	assert.ErrorIs(t, tr.Stop(), ErrNotTracking)

	require.NoError(t, tr.Start(context.Background()))
	assert.True(t, tr.Tracking())
	assert.ErrorIs(t, tr.Start(context.Background()), ErrAlreadyTracking)

	require.NoError(t, tr.Stop())
	assert.False(t, tr.Tracking())

	_, _, stops := rec.counts()
	assert.Equal(t, 1, stops)

	// A stopped tracker can be restarted by the user.
	require.NoError(t, tr.Start(context.Background()))
	require.NoError(t, tr.Stop())
}

func TestTracker_NoSamplesAfterStop(t *testing.T) {
	provider := NewPushProvider()
	rec := &recorder{}
	tr := New(provider, nil, Config{}, rec.callbacks(), zerolog.Nop())

	require.NoError(t, tr.Start(context.Background()))
	provider.Offer(Position{Latitude: 5.33, Longitude: -4.02})
	require.Eventually(t, func() bool {
		u, _, _ := rec.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, tr.Stop())
	provider.Offer(Position{Latitude: 5.34, Longitude: -4.02})

	time.Sleep(50 * time.Millisecond)
	u, _, _ := rec.counts()
	assert.Equal(t, 1, u, "samples offered after stop are not emitted")
}
