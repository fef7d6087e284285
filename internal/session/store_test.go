// ABOUTME: Tests for the MCP HTTP session store.
// ABOUTME: Validates idle expiry, size-capped LRU eviction, sweeping, and concurrency safety.

package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source for expiry tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, ttl time.Duration, maxSize int) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(ttl, maxSize)
	s.now = clock.now
	t.Cleanup(s.Close)
	return s, clock
}

func TestStore_CreateGetDelete(t *testing.T) {
	s, _ := newTestStore(t, time.Hour, 10)

	sess := s.Create("2025-06-18", "alice")
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "2025-06-18", sess.ProtocolVersion)
	assert.Equal(t, "alice", sess.Owner)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))

	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
}

func TestStore_UniqueIDs(t *testing.T) {
	s, _ := newTestStore(t, time.Hour, 100)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := s.Create("v", "").ID
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestStore_IdleExpiry(t *testing.T) {
	s, clock := newTestStore(t, time.Minute, 10)

	active := s.Create("v", "")
	idle := s.Create("v", "")

	clock.advance(40 * time.Second)
	_, ok := s.Get(active.ID)
	require.True(t, ok)

	// active was touched 40s in, idle was not
	clock.advance(40 * time.Second)
	_, ok = s.Get(active.ID)
	assert.True(t, ok)
	_, ok = s.Get(idle.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s, clock := newTestStore(t, 0, 10)
	sess := s.Create("v", "")
	clock.advance(1000 * time.Hour)
	_, ok := s.Get(sess.ID)
	assert.True(t, ok)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, _ := newTestStore(t, time.Hour, 2)

	first := s.Create("v", "")
	second := s.Create("v", "")

	// Touch first so second becomes the eviction candidate.
	_, ok := s.Get(first.ID)
	require.True(t, ok)

	third := s.Create("v", "")

	assert.Equal(t, 2, s.Len())
	_, ok = s.Get(first.ID)
	assert.True(t, ok)
	_, ok = s.Get(second.ID)
	assert.False(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(t, time.Minute, 10)
	s.Create("v", "")
	s.Create("v", "")
	clock.advance(2 * time.Minute)
	keep := s.Create("v", "")

	s.sweep()

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(keep.ID)
	assert.True(t, ok)
}

func TestStore_CloseTwice(t *testing.T) {
	s := New(time.Minute, 10)
	s.Close()
	assert.NotPanics(t, s.Close)
}

func TestStore_Concurrent(t *testing.T) {
	s, _ := newTestStore(t, time.Hour, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sess := s.Create("v", "")
				s.Get(sess.ID)
				if j%3 == 0 {
					s.Delete(sess.ID)
				}
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 50)
}
