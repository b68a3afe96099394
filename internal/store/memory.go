package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no entry exists for a key.
	ErrNotFound = errors.New("no cached data for key")
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// MemoryStore is a concurrency-safe keyed TTL cache.
//
// Entries older than ttl are stale but still readable through GetStale until
// they exceed maxAge. When the store holds maxEntries keys, a Set for a new
// key evicts the oldest entry found by a linear scan.
type MemoryStore[T any] struct {
	mu sync.RWMutex

	data map[string]entry[T]

	ttl        time.Duration
	maxEntries int           // 0 = unlimited
	maxAge     time.Duration // 0 = keep stale entries until evicted

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore[T any](ttl time.Duration, maxEntries int, maxAge time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		data:       make(map[string]entry[T]),
		ttl:        ttl,
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *MemoryStore[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Set stores value under key and enforces retention.
func (s *MemoryStore[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if s.maxAge > 0 {
		for k, e := range s.data {
			if now.Sub(e.storedAt) > s.maxAge {
				delete(s.data, k)
			}
		}
	}

	if _, exists := s.data[key]; !exists && s.maxEntries > 0 && len(s.data) >= s.maxEntries {
		s.evictOldestLocked()
	}

	s.data[key] = entry[T]{value: value, storedAt: now}
}

func (s *MemoryStore[T]) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range s.data {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(s.data, oldestKey)
	}
}

// Get returns the value for key if it is still fresh.
func (s *MemoryStore[T]) Get(key string) (T, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		var zero T
		return zero, time.Time{}, ErrNotFound
	}
	return e.value, e.storedAt, nil
}

// GetStale returns the value for key regardless of ttl, as long as it is
// younger than maxAge.
func (s *MemoryStore[T]) GetStale(key string) (T, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || (s.maxAge > 0 && s.now().Sub(e.storedAt) > s.maxAge) {
		var zero T
		return zero, time.Time{}, ErrNotFound
	}
	return e.value, e.storedAt, nil
}

// Delete removes key.
func (s *MemoryStore[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

// Len returns the number of keys held, fresh or stale.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
