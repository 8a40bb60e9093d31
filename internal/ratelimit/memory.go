package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development and tests. It is
// not shared across instances; production deployments should use the
// Redis store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates an in-memory rate-limit store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		counters: make(map[string]*windowCounter),
	}
	go s.cleanup()
	return s
}

// cleanup removes expired counters periodically
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, c := range s.counters {
			if now.After(c.resetAt) {
				delete(s.counters, key)
			}
		}
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, exists := s.counters[key]

	if !exists || now.After(c.resetAt) {
		c = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = c
	}

	c.count++
	return c.count, c.resetAt, nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
