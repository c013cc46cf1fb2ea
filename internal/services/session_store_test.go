package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbmflow/internal/dataprocessing"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration, max int) (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)}
	s := NewSessionStore(ttl, max, nil)
	s.now = clock.Now
	return s, clock
}

func TestSessionStorePutGet(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)
	ds := &dataprocessing.ParsedDataset{}

	sess, evicted, err := s.Put("orders.xlsx", ds)
	require.NoError(t, err)
	assert.Zero(t, evicted)
	assert.NotEmpty(t, sess.ID)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, ds, got.Dataset)
	assert.Equal(t, "orders.xlsx", got.Filename)
	assert.Equal(t, 1, s.Len())
}

func TestSessionStoreRejectsNilDataset(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)
	_, _, err := s.Put("orders.xlsx", nil)
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestSessionStoreUnknownID(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NotErrorIs(t, err, ErrSessionExpired)
}

func TestSessionStoreExpiry(t *testing.T) {
	s, clock := newTestStore(time.Hour, 0)
	a, _, err := s.Put("a.xlsx", &dataprocessing.ParsedDataset{})
	require.NoError(t, err)
	b, _, err := s.Put("b.xlsx", &dataprocessing.ParsedDataset{})
	require.NoError(t, err)

	clock.Advance(40 * time.Minute)
	_, err = s.Get(a.ID)
	require.NoError(t, err, "access refreshes the idle timer")

	clock.Advance(40 * time.Minute)
	_, err = s.Get(a.ID)
	assert.NoError(t, err)
	_, err = s.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, s.Len(), "expired session dropped on access")

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, s.EvictExpired())
	assert.Zero(t, s.Len())
}

func TestSessionStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s, clock := newTestStore(0, 2)
	a, _, _ := s.Put("a.xlsx", &dataprocessing.ParsedDataset{})
	clock.Advance(time.Second)
	b, _, _ := s.Put("b.xlsx", &dataprocessing.ParsedDataset{})
	clock.Advance(time.Second)
	_, err := s.Get(a.ID)
	require.NoError(t, err)
	clock.Advance(time.Second)

	c, evicted, err := s.Put("c.xlsx", &dataprocessing.ParsedDataset{})
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, s.Len())

	_, err = s.Get(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(a.ID)
	assert.NoError(t, err)
	_, err = s.Get(c.ID)
	assert.NoError(t, err)
}

func TestSessionStoreDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)
	sess, _, _ := s.Put("a.xlsx", &dataprocessing.ParsedDataset{})

	assert.True(t, s.Delete(sess.ID))
	assert.False(t, s.Delete(sess.ID))
	assert.Zero(t, s.Len())
}

func TestSessionStoreRunStopsOnCancel(t *testing.T) {
	s, clock := newTestStore(time.Minute, 0)
	_, _, err := s.Put("a.xlsx", &dataprocessing.ParsedDataset{})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(t.Context())
	evicted := make(chan int, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, 5*time.Millisecond, func(n int) { evicted <- n })
	}()

	select {
	case n := <-evicted:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
