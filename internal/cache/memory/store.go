// Package memory contains an in-memory cache store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	"leaderscraper/internal/scraper"
)

// Store keeps cache entries in maps guarded by a mutex.
type Store struct {
	mu      sync.RWMutex
	leaders map[string][]scraper.Leader
	bios    map[string]scraper.Biography
}

// New returns an empty memory Store.
func New() *Store {
	return &Store{
		leaders: make(map[string][]scraper.Leader),
		bios:    make(map[string]scraper.Biography),
	}
}

// Leaders returns the cached leader list for a country, if present.
func (s *Store) Leaders(_ context.Context, country string) ([]scraper.Leader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	leaders, ok := s.leaders[country]
	if !ok {
		return nil, false
	}
	out := make([]scraper.Leader, len(leaders))
	copy(out, leaders)
	return out, true
}

// PutLeaders replaces the cached leader list for a country.
func (s *Store) PutLeaders(_ context.Context, country string, leaders []scraper.Leader) error {
	cp := make([]scraper.Leader, len(leaders))
	copy(cp, leaders)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaders[country] = cp
	return nil
}

// Biography returns the cached biography for a leader, if present.
func (s *Store) Biography(_ context.Context, leaderID string) (scraper.Biography, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bio, ok := s.bios[leaderID]
	return bio, ok
}

// PutBiography replaces the cached biography for a leader.
func (s *Store) PutBiography(_ context.Context, bio scraper.Biography) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bios[bio.LeaderID] = bio
	return nil
}
