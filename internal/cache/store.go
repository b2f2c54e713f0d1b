package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	tags      []Tag
	region    Region
	fetchedAt time.Time
	lastUsed  time.Time
	stale     bool
}

// Store is the process-wide cache of backend reads. Invalidation is
// fire-and-forget: marking entries stale never triggers a network call, it
// only guarantees the next read is a miss. Mutate it only through the
// mutation table (TagsFor); no ad hoc writes.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	keepUnused time.Duration
	now        func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeepUnused overrides the unused-entry eviction horizon.
func WithKeepUnused(d time.Duration) StoreOption {
	return func(s *Store) { s.keepUnused = d }
}

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty cache store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:    make(map[string]*entry),
		keepUnused: DefaultKeepUnused,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached value for key if it is present, not stale, and
// within its region's TTL.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	now := s.now()
	e.lastUsed = now
	if e.stale || now.Sub(e.fetchedAt) > PolicyFor(e.region).TTL {
		return nil, false
	}
	return e.value, true
}

// Put stores a freshly fetched value under key. The first tag's region
// decides the TTL policy.
func (s *Store) Put(key string, value interface{}, tags ...Tag) {
	region := Region("")
	if len(tags) > 0 {
		region = tags[0].Region
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{
		value:     value,
		tags:      tags,
		region:    region,
		fetchedAt: now,
		lastUsed:  now,
	}
}

// Invalidate marks stale every entry carrying a tag matched by any of the
// given tags.
func (s *Store) Invalidate(tags []Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.stale {
			continue
		}
	tagLoop:
		for _, have := range e.tags {
			for _, stale := range tags {
				if have.Matches(stale) {
					e.stale = true
					break tagLoop
				}
			}
		}
	}
}

// InvalidateMutation applies the static mutation table.
func (s *Store) InvalidateMutation(m Mutation, id string) {
	s.Invalidate(TagsFor(m, id))
}

// TriggerKeys returns the keys whose region policy refreshes on the trigger.
// Callers refetch those in the background regardless of TTL.
func (s *Store) TriggerKeys(t Trigger) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key, e := range s.entries {
		if PolicyFor(e.region).RefreshesOn(t) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Sweep evicts entries unused for longer than the keep-unused horizon and
// returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.lastUsed) > s.keepUnused {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
