package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a minimal in-test Store
type mapStore struct {
	clock   *fakeClock
	entries map[string]Entry
	sets    int
	setErr  error
	closed  bool
}

func newMapStore(clock *fakeClock) *mapStore {
	return &mapStore{clock: clock, entries: map[string]Entry{}}
}

func (s *mapStore) Get(_ context.Context, key string) (*Entry, bool) {
	e, ok := s.entries[key]
	if !ok || !e.Fresh(s.clock.Now()) {
		return nil, false
	}
	return &e, true
}

func (s *mapStore) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = newEntry(body, s.clock.Now(), ttl)
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func (s *mapStore) Close() error {
	s.closed = true
	return nil
}

func TestTiered_GetFromFirstLevel(t *testing.T) {
	clock := newFakeClock()
	l1, l2 := newMapStore(clock), newMapStore(clock)
	tiered := NewTiered([]Store{l1, l2}, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte(`1`), time.Minute))
	assert.Equal(t, 1, l1.sets)
	assert.Equal(t, 1, l2.sets)

	entry, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte(`1`), entry.Body)
}

func TestTiered_BackfillsWithRemainingLifetime(t *testing.T) {
	clock := newFakeClock()
	l1, l2 := newMapStore(clock), newMapStore(clock)
	tiered := NewTiered([]Store{l1, l2}, WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", []byte(`2`), 5*time.Minute))
	clock.Advance(2 * time.Minute)

	entry, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte(`2`), entry.Body)

	backfilled, ok := l1.entries["k"]
	require.True(t, ok, "L2 hit should be copied into L1")
	assert.True(t, backfilled.ExpiresAt.Equal(entry.ExpiresAt), "backfill must not extend the lifetime")
}

func TestTiered_Miss(t *testing.T) {
	clock := newFakeClock()
	tiered := NewTiered([]Store{newMapStore(clock), newMapStore(clock)}, WithClock(clock.Now))

	_, ok := tiered.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestTiered_SetJoinsErrors(t *testing.T) {
	clock := newFakeClock()
	l1, l2 := newMapStore(clock), newMapStore(clock)
	l2.setErr = errors.New("down")
	tiered := NewTiered([]Store{l1, l2})

	err := tiered.Set(context.Background(), "k", []byte(`1`), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l2")
	assert.Contains(t, l1.entries, "k", "a failing level must not block the others")
}

func TestTiered_Close(t *testing.T) {
	clock := newFakeClock()
	l1, l2 := newMapStore(clock), newMapStore(clock)
	tiered := NewTiered([]Store{l1, l2})

	require.NoError(t, tiered.Close())
	assert.True(t, l1.closed)
	assert.True(t, l2.closed)
	assert.Equal(t, 2, tiered.Levels())
}

func TestOpen_MemoryOnly(t *testing.T) {
	store, err := Open(context.Background(), Options{LifeWindow: time.Minute, MaxSizeMB: 8})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 1, store.Levels())
}
