// Package store holds the single process-wide elevation profile.
package store

import (
	"sync"

	"profile-server/models"
)

// ProfileStore is a single slot holding the most recent profile. The profile is
// replaced wholesale, never appended to or edited in place.
//
// Writers that sample asynchronously take a generation with Begin and hand it
// back to Apply; a result is applied only if no newer generation has been issued
// since, so a slow request can never overwrite a newer one.
type ProfileStore struct {
	mu      sync.RWMutex
	profile models.Profile
	issued  uint64
	applied uint64
}

// NewProfileStore returns an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

// Set replaces the stored profile unconditionally, e.g. with the seed profile.
func (s *ProfileStore) Set(profile models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile.Clone()
}

// Get returns the current profile. Callers must not modify it.
func (s *ProfileStore) Get() models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Begin issues a new generation; every earlier generation becomes stale.
func (s *ProfileStore) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply stores profile if gen is the latest issued generation. It reports
// whether the profile was stored.
func (s *ProfileStore) Apply(gen uint64, profile models.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.issued || gen <= s.applied {
		return false
	}
	s.profile = profile.Clone()
	s.applied = gen
	return true
}

// IsCurrent reports whether gen is still the latest issued generation.
func (s *ProfileStore) IsCurrent(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gen == s.issued
}

// Version returns the generation of the stored profile; 0 means seed or empty.
func (s *ProfileStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}
