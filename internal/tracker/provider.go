package tracker

import (
	"context"
	"time"
)

// StopReason classifies why a tracking session ended.
type StopReason string

const (
	ReasonUserStopped      StopReason = "user-stopped"
	ReasonPermissionDenied StopReason = "permission-denied"
	ReasonUnavailable      StopReason = "position-unavailable"
	ReasonTimeout          StopReason = "timeout"
)

// Message returns the user-facing French message for the reason.
func (r StopReason) Message() string {
	switch r {
	case ReasonPermissionDenied:
		return "Autorisation de localisation refusée"
	case ReasonUnavailable:
		return "Position indisponible"
	case ReasonTimeout:
		return "Délai de localisation dépassé"
	default:
		return "Suivi arrêté"
	}
}

// Position is one raw fix from the device.
type Position struct {
	Latitude  float64
	Longitude float64
	AccuracyM float64
}

// Failure is a terminal watch error from the device.
type Failure struct {
	Reason StopReason
}

// WatchOptions mirror the device geolocation capability knobs.
type WatchOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Subscription is a live position watch. Updates and Failures are closed or
// silent after Stop; a Failure ends the watch.
type Subscription interface {
	Updates() <-chan Position
	Failures() <-chan Failure
	Stop()
}

// LocationProvider abstracts the platform geolocation capability so the
// tracker can be driven by a device stream, an HTTP ingest feed, or a test
// harness.
type LocationProvider interface {
	Watch(ctx context.Context, opts WatchOptions) (Subscription, error)
}

// PushProvider is a LocationProvider fed programmatically, used by the HTTP
// tracking ingest and by tests.
type PushProvider struct {
	updates  chan Position
	failures chan Failure
}

// NewPushProvider creates a provider with a small ingest buffer.
func NewPushProvider() *PushProvider {
	return &PushProvider{
		updates:  make(chan Position, 16),
		failures: make(chan Failure, 1),
	}
}

// Offer feeds one position fix. It never blocks; fixes beyond the buffer are
// dropped, matching how device callbacks coalesce under backpressure.
func (p *PushProvider) Offer(pos Position) {
	select {
	case p.updates <- pos:
	default:
	}
}

// Fail injects a terminal watch failure.
func (p *PushProvider) Fail(reason StopReason) {
	select {
	case p.failures <- Failure{Reason: reason}:
	default:
	}
}

// Watch implements LocationProvider.
func (p *PushProvider) Watch(ctx context.Context, opts WatchOptions) (Subscription, error) {
	return p, nil
}

// Updates implements Subscription.
func (p *PushProvider) Updates() <-chan Position { return p.updates }

// Failures implements Subscription.
func (p *PushProvider) Failures() <-chan Failure { return p.failures }

// Stop implements Subscription. The channels are left open so a push
// provider can back a later session.
func (p *PushProvider) Stop() {}
