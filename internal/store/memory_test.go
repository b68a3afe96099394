package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStoreFreshAndStale(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore[string](time.Minute, 10, time.Hour)
	s.SetClock(clock.Now)

	s.Set("nyc", "cams")

	v, at, err := s.Get("nyc")
	require.NoError(t, err)
	assert.Equal(t, "cams", v)
	assert.Equal(t, clock.t, at)

	clock.Advance(time.Minute)
	_, _, err = s.Get("nyc")
	assert.True(t, errors.Is(err, ErrNotFound), "entry at exactly ttl must be stale")

	v, _, err = s.GetStale("nyc")
	require.NoError(t, err)
	assert.Equal(t, "cams", v)

	clock.Advance(time.Hour)
	_, _, err = s.GetStale("nyc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore[int](time.Hour, 3, 0)
	s.SetClock(clock.Now)

	for i, k := range []string{"a", "b", "c"} {
		s.Set(k, i)
		clock.Advance(time.Second)
	}
	// Refreshing "a" makes "b" the oldest.
	s.Set("a", 10)
	clock.Advance(time.Second)

	s.Set("d", 3)

	assert.Equal(t, 3, s.Len())
	_, _, err := s.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)

	v, _, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestMemoryStoreUpdateDoesNotEvict(t *testing.T) {
	s := NewMemoryStore[int](time.Hour, 2, 0)
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("b", 3)

	assert.Equal(t, 2, s.Len())
	_, _, err := s.Get("a")
	assert.NoError(t, err)
}

func TestMemoryStorePurgesByAgeOnSet(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore[int](time.Minute, 0, 10*time.Minute)
	s.SetClock(clock.Now)

	s.Set("old", 1)
	clock.Advance(11 * time.Minute)
	s.Set("new", 2)

	assert.Equal(t, 1, s.Len())
}

func TestSlot(t *testing.T) {
	clock := newClock()
	s := NewSlot[[]int](30*time.Second, 0)
	s.SetClock(clock.Now)

	_, _, ok := s.Get()
	assert.False(t, ok)
	_, _, ok = s.GetStale()
	assert.False(t, ok)

	s.Set([]int{1, 2})
	v, _, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)

	clock.Advance(31 * time.Second)
	_, _, ok = s.Get()
	assert.False(t, ok)

	// maxAge 0 keeps stale data indefinitely.
	clock.Advance(24 * time.Hour)
	v, _, ok = s.GetStale()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)

	age, ok := s.Age()
	require.True(t, ok)
	assert.Greater(t, age, 24*time.Hour)
}

func TestSlotMaxAge(t *testing.T) {
	clock := newClock()
	s := NewSlot[string](time.Second, time.Minute)
	s.SetClock(clock.Now)

	s.Set("x")
	clock.Advance(2 * time.Minute)

	_, _, ok := s.GetStale()
	assert.False(t, ok)
}
