package store

import (
	"sync"
	"time"
)

// Slot is a single-value TTL cache: one {data, timestamp} pair.
type Slot[T any] struct {
	mu       sync.RWMutex
	value    T
	storedAt time.Time
	filled   bool

	ttl    time.Duration
	maxAge time.Duration // 0 = stale data is served indefinitely

	now func() time.Time
}

func NewSlot[T any](ttl, maxAge time.Duration) *Slot[T] {
	return &Slot[T]{ttl: ttl, maxAge: maxAge, now: time.Now}
}

// SetClock replaces the time source. Intended for tests.
func (s *Slot[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Set replaces the held value and resets its timestamp.
func (s *Slot[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.storedAt = s.now()
	s.filled = true
	s.mu.Unlock()
}

// Get returns the value while it is fresh.
func (s *Slot[T]) Get() (T, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filled || s.now().Sub(s.storedAt) >= s.ttl {
		var zero T
		return zero, time.Time{}, false
	}
	return s.value, s.storedAt, true
}

// GetStale returns the value regardless of ttl, bounded by maxAge.
func (s *Slot[T]) GetStale() (T, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.filled || (s.maxAge > 0 && s.now().Sub(s.storedAt) > s.maxAge) {
		var zero T
		return zero, time.Time{}, false
	}
	return s.value, s.storedAt, true
}

// Age reports how long ago the value was stored. ok is false when empty.
func (s *Slot[T]) Age() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.filled {
		return 0, false
	}
	return s.now().Sub(s.storedAt), true
}
