package labels

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBackend struct {
	calls  int
	labels []string
	err    error
}

func (b *countingBackend) Labels(context.Context, string, int) ([]string, error) {
	b.calls++
	return b.labels, b.err
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	cache, err := NewCache("redis://"+s.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, s
}

func TestNewCacheBadURL(t *testing.T) {
	_, err := NewCache("not-a-url", time.Hour)
	require.Error(t, err)
}

func TestCachePutGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "Plan a trip", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	labels := []string{"Budget", "Route", "Packing"}
	require.NoError(t, cache.Put(ctx, "Plan a trip", 0, labels))

	got, ok, err := cache.Get(ctx, "Plan a trip", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, labels, got)

	_, ok, err = cache.Get(ctx, "Plan a trip", 1)
	require.NoError(t, err)
	assert.False(t, ok, "depth is part of the key")
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, s := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "seed", 0, []string{"a", "b", "c"}))
	s.FastForward(2 * time.Hour)

	_, ok, err := cache.Get(ctx, "seed", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedBackendHitSkipsBackend(t *testing.T) {
	cache, _ := setupTestCache(t)
	next := &countingBackend{labels: []string{"One", "Two", "Three"}}
	backend := NewCachedBackend(next, cache, nil)
	ctx := context.Background()

	first, err := backend.Labels(ctx, "seed", 2)
	require.NoError(t, err)
	second, err := backend.Labels(ctx, "seed", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
}

func TestCachedBackendDoesNotCacheFailures(t *testing.T) {
	cache, _ := setupTestCache(t)
	next := &countingBackend{err: errors.New("upstream down")}
	backend := NewCachedBackend(next, cache, nil)
	ctx := context.Background()

	_, err := backend.Labels(ctx, "seed", 0)
	require.Error(t, err)
	_, err = backend.Labels(ctx, "seed", 0)
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedBackendSurvivesRedisOutage(t *testing.T) {
	cache, s := setupTestCache(t)
	next := &countingBackend{labels: []string{"One", "Two", "Three"}}
	backend := NewCachedBackend(next, cache, nil)

	s.Close()

	got, err := backend.Labels(context.Background(), "seed", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two", "Three"}, got)
}
