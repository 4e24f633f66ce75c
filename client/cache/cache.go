// Package cache holds the client's last-known-good view of server state.
// It is an explicit store passed to the coordinator, with snapshot and
// restore operations so speculative writes can be rolled back exactly.
package cache

import (
	"strings"
	"sync"
)

// Key identifies one cached view, e.g. "ticket:7" or "tickets:page=1".
type Key string

type entry struct {
	value any
	stale bool
}

// Store is a keyed cache of entities and list views.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]entry
}

// NewStore creates an empty cache.
func NewStore() *Store {
	return &Store{entries: make(map[Key]entry)}
}

// Get returns the cached value for key, if present.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key and clears any stale mark.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value}
}

// Delete removes key from the cache.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Keys returns every cached key with the given prefix.
func (s *Store) Keys(prefix string) []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0)
	for k := range s.entries {
		if strings.HasPrefix(string(k), prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Invalidate marks keys stale without dropping their values, so prior data
// stays visible until a reconciling fetch replaces it.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if e, ok := s.entries[key]; ok {
			e.stale = true
			s.entries[key] = e
		}
	}
}

// IsStale reports whether key is present but marked stale.
func (s *Store) IsStale(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return ok && e.stale
}

// Snapshot captures the exact state of the given keys, including absence,
// so a later Restore reproduces the pre-mutation cache precisely.
type Snapshot struct {
	states map[Key]snapState
}

type snapState struct {
	value   any
	stale   bool
	present bool
}

// Snapshot captures the current state of keys.
func (s *Store) Snapshot(keys ...Key) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make(map[Key]snapState, len(keys))
	for _, key := range keys {
		e, ok := s.entries[key]
		states[key] = snapState{value: e.value, stale: e.stale, present: ok}
	}
	return Snapshot{states: states}
}

// Restore puts every snapshotted key back to its captured state. Keys that
// were absent at snapshot time are removed again.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, state := range snap.states {
		if !state.present {
			delete(s.entries, key)
			continue
		}
		s.entries[key] = entry{value: state.value, stale: state.stale}
	}
}

// Keys returns the keys captured in the snapshot.
func (snap Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(snap.states))
	for k := range snap.states {
		keys = append(keys, k)
	}
	return keys
}
