package memory

import (
	"context"
	"sync"
	"time"
)

// BlacklistStore keeps token hashes with their expiry in memory
type BlacklistStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewBlacklistStore creates an empty blacklist
func NewBlacklistStore() *BlacklistStore {
	return &BlacklistStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *BlacklistStore) Add(ctx context.Context, tokenHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.entries[tokenHash]; ok && s.now().Before(exp) {
		return false, nil
	}
	s.entries[tokenHash] = expiresAt
	return true, nil
}

func (s *BlacklistStore) Contains(ctx context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[tokenHash]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.entries, tokenHash)
		return false, nil
	}
	return true, nil
}

// PurgeExpired drops entries whose token has expired and returns how many were removed
func (s *BlacklistStore) PurgeExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := s.now()
	for hash, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, hash)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries
func (s *BlacklistStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
