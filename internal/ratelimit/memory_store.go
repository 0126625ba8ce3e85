package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps attempts in process memory. Limits are per process.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[string][]time.Time)}
}

var _ AttemptStore = (*MemoryStore)(nil)

// pruneLocked must be called with mu held.
func (s *MemoryStore) pruneLocked(key string, cutoff time.Time) []time.Time {
	current := s.attempts[key]
	kept := current[:0]
	for _, at := range current {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(s.attempts, key)
		return nil
	}
	s.attempts[key] = kept
	return kept
}

func (s *MemoryStore) Prune(_ context.Context, key string, cutoff time.Time) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pruneLocked(key, cutoff)
	out := make([]time.Time, len(kept))
	copy(out, kept)
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, key string, at time.Time, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = append(s.attempts[key], at)
	return nil
}

func (s *MemoryStore) TryAdd(_ context.Context, key string, at, cutoff time.Time, limit int, _ time.Duration) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.pruneLocked(key, cutoff)
	if len(kept) >= limit {
		return false, len(kept), nil
	}
	s.attempts[key] = append(kept, at)
	return true, len(kept) + 1, nil
}

func (s *MemoryStore) Remove(_ context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.attempts[key]
	for i, existing := range current {
		if existing.Equal(at) {
			s.attempts[key] = append(current[:i], current[i+1:]...)
			break
		}
	}
	if len(s.attempts[key]) == 0 {
		delete(s.attempts, key)
	}
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.attempts {
		if s.pruneLocked(key, cutoff) == nil {
			removed++
		}
	}
	return removed, nil
}
