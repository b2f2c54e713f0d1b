package address

import (
	"context"
	"errors"
	"fmt"

	"pressing-api/internal/geo"
	"pressing-api/internal/models"

	"github.com/rs/zerolog"
)

// ErrOutsideServiceArea rejects coordinates beyond the Abidjan envelope.
var ErrOutsideServiceArea = errors.New("address: coordinates outside the service area")

// Backend is the slice of the API client the manager needs.
type Backend interface {
	GetProfile(ctx context.Context) (*models.PressingProfile, error)
	UpdateProfile(ctx context.Context, profile *models.PressingProfile) error
}

// NotificationSink surfaces user-facing outcomes. Wrapped as an interface so
// the delivery mechanism (toast, push, test spy) is swappable.
type NotificationSink interface {
	Success(msg string)
	Error(msg string)
}

// NopSink discards notifications.
type NopSink struct{}

func (NopSink) Success(string) {}
func (NopSink) Error(string)   {}

// LocationEvent is a finalized location from the manual selector or a
// tracker save.
type LocationEvent struct {
	Coordinate models.Coordinate `json:"coordinate"`
	Address    string            `json:"address"`
	District   string            `json:"district"`
}

// Manager merges location events into the canonical address record and
// persists it through the backend. Merge rules: coordinates always
// overwrite; district only when the event carries one; the street is never
// clobbered once a user has entered it.
type Manager struct {
	backend Backend
	notify  NotificationSink
	logger  zerolog.Logger
}

// NewManager creates a manager. A nil sink falls back to NopSink.
func NewManager(backend Backend, notify NotificationSink, logger zerolog.Logger) *Manager {
	if notify == nil {
		notify = NopSink{}
	}
	return &Manager{backend: backend, notify: notify, logger: logger}
}

// Merge applies the event to a copy of the record and returns it. Pure;
// exported for reuse by previews.
func Merge(record models.AddressRecord, ev LocationEvent) models.AddressRecord {
	record.Coordinates = ev.Coordinate
	if ev.District != "" {
		record.District = ev.District
	}
	if record.Street == "" {
		record.Street = ev.Address
	}
	if record.City == "" {
		record.City = "Abidjan"
	}
	if record.Country == "" {
		record.Country = "Côte d'Ivoire"
	}
	return record
}

// Apply validates, merges and persists the event. On failure the stored
// record is untouched and the caller's edit state can be retried as-is; the
// failed write must never look like it succeeded.
func (m *Manager) Apply(ctx context.Context, ev LocationEvent) (*models.AddressRecord, error) {
	if !geo.Valid(ev.Coordinate) {
		m.notify.Error("Coordonnées invalides")
		return nil, errors.New("address: invalid coordinates")
	}
	if !geo.InServiceArea(ev.Coordinate) {
		m.notify.Error("Cette position est hors de la zone desservie d'Abidjan")
		return nil, ErrOutsideServiceArea
	}

	profile, err := m.backend.GetProfile(ctx)
	if err != nil {
		m.notify.Error("Impossible de charger le profil")
		return nil, fmt.Errorf("address: failed to load profile: %w", err)
	}

	updated := *profile
	updated.Address = Merge(profile.Address, ev)

	if err := m.backend.UpdateProfile(ctx, &updated); err != nil {
		m.logger.Warn().Err(err).Msg("address update failed")
		m.notify.Error("Échec de la mise à jour de l'adresse")
		return nil, fmt.Errorf("address: failed to persist address: %w", err)
	}

	m.notify.Success("Adresse mise à jour avec succès")
	record := updated.Address
	return &record, nil
}

// ApplySample merges a tracker save sample, reusing the sample's resolved
// address and district.
func (m *Manager) ApplySample(ctx context.Context, sample models.LocationSample) (*models.AddressRecord, error) {
	return m.Apply(ctx, LocationEvent{
		Coordinate: sample.Coordinate,
		Address:    sample.ResolvedAddress,
		District:   sample.ResolvedDistrict,
	})
}
