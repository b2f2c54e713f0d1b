package selector

import (
	"context"
	"errors"
	"sync"

	"pressing-api/internal/geo"
	"pressing-api/internal/geocode"
	"pressing-api/internal/models"
)

// State is the selector lifecycle phase.
type State int

const (
	// StateIdle means the map engine is not initialized.
	StateIdle State = iota
	// StateMapReady means the map is up with a draggable marker placed.
	StateMapReady
	// StateSelecting means the marker has been moved from its initial spot.
	StateSelecting
	// StateConfirming means a confirm is resolving the address.
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMapReady:
		return "map-ready"
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned once the selector has been torn down.
	ErrClosed = errors.New("selector: closed")
	// ErrNotOpen is returned when the map engine is not initialized.
	ErrNotOpen = errors.New("selector: map not initialized")
	// ErrSuperseded is returned by Confirm when the marker moved while the
	// confirm's resolution was in flight; the stale result is discarded.
	ErrSuperseded = errors.New("selector: selection superseded")
)

// fallbackCenter is the Plateau city-center pin used when the caller's
// initial position is unusable.
var fallbackCenter = models.Coordinate{Lat: 5.3235, Lng: -4.0244}

// MapEngine abstracts the concrete map widget: draggable marker, click
// handling and centering live behind this interface so a map engine can be
// swapped or mocked.
type MapEngine interface {
	// Init brings up the map centered on the given coordinate with a marker
	// placed there.
	Init(ctx context.Context, center models.Coordinate) error
	// MoveMarker repositions the marker.
	MoveMarker(c models.Coordinate)
	// Release destroys the map instance. Called exactly once.
	Release()
}

// Resolver converts the confirmed coordinate into an address.
type Resolver interface {
	Resolve(ctx context.Context, c models.Coordinate) geocode.Result
}

// Selection is the finalized location payload emitted on confirm.
type Selection struct {
	Coordinate models.Coordinate `json:"coordinate"`
	Address    string            `json:"address"`
	District   string            `json:"district"`
}

// Selector drives manual map-pin placement. The working coordinate tracks
// every click or drag; district attribution is recomputed synchronously on
// each move while address resolution is deferred to Confirm. A generation
// counter guarantees a slow resolution can never emit a coordinate that is
// no longer the latest one.
type Selector struct {
	engine   MapEngine
	resolver Resolver
	onEmit   func(Selection)

	mu       sync.Mutex
	state    State
	closed   bool
	current  models.Coordinate
	district string
	gen      uint64
}

// New creates a selector around the given map engine and resolver. An
// invalid initial coordinate is replaced with the Plateau fallback center
// rather than rejected. onEmit may be nil.
func New(engine MapEngine, resolver Resolver, initial models.Coordinate, onEmit func(Selection)) *Selector {
	if !geo.Valid(initial) {
		initial = fallbackCenter
	}
	return &Selector{
		engine:   engine,
		resolver: resolver,
		onEmit:   onEmit,
		state:    StateIdle,
		current:  initial,
		district: geo.DistrictFor(initial),
	}
}

// Open initializes the map engine. If the selector is closed while Init is
// in flight, the freshly created map instance is released before returning.
func (s *Selector) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	center := s.current
	s.mu.Unlock()

	if err := s.engine.Init(ctx, center); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.engine.Release()
		return ErrClosed
	}
	s.state = StateMapReady
	s.mu.Unlock()
	return nil
}

// Select records a click or drag-end at c. The district is recomputed
// immediately; address resolution waits for Confirm. Any in-flight confirm
// becomes stale.
func (s *Selector) Select(c models.Coordinate) error {
	if !geo.Valid(c) {
		return errors.New("selector: invalid coordinate")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateIdle {
		return ErrNotOpen
	}
	s.current = c
	s.district = geo.DistrictFor(c)
	s.gen++
	if s.state == StateMapReady || s.state == StateConfirming {
		s.state = StateSelecting
	}
	s.engine.MoveMarker(c)
	return nil
}

// Confirm resolves the current coordinate's address and emits the finalized
// selection. Confirming with no prior Select resolves the initial
// coordinate. If the marker moves while the resolution is in flight, the
// result is discarded and ErrSuperseded returned: the emitted coordinate is
// always the last selected position.
func (s *Selector) Confirm(ctx context.Context) (Selection, error) {
	s.mu.Lock()
	if s.closed || s.state == StateIdle {
		s.mu.Unlock()
		return Selection{}, ErrNotOpen
	}
	coord := s.current
	district := s.district
	gen := s.gen
	s.state = StateConfirming
	s.mu.Unlock()

	// Resolution degrades internally and never fails; only staleness or
	// teardown can abort the confirm.
	res := s.resolver.Resolve(ctx, coord)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Selection{}, ErrClosed
	}
	if s.gen != gen {
		// A newer selection arrived meanwhile; that one owns the state.
		s.mu.Unlock()
		return Selection{}, ErrSuperseded
	}

	if res.District == "" {
		res.District = district
	}
	sel := Selection{Coordinate: coord, Address: res.Address, District: res.District}
	s.state = StateMapReady
	onEmit := s.onEmit
	s.mu.Unlock()

	if onEmit != nil {
		onEmit(sel)
	}
	return sel, nil
}

// Cancel aborts an in-progress confirm, returning to Selecting. Any
// in-flight resolution becomes stale.
func (s *Selector) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfirming {
		s.gen++
		s.state = StateSelecting
	}
}

// Close tears the selector down and releases the map engine. Safe to call
// from any state; Release runs at most once.
func (s *Selector) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	release := s.state != StateIdle
	s.state = StateIdle
	s.mu.Unlock()

	if release {
		s.engine.Release()
	}
}

// State returns the current lifecycle phase.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the working coordinate and its district.
func (s *Selector) Current() (models.Coordinate, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.district
}
