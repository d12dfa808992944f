package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(t *testing.T, maxKeys int) (*memoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newMemoryCache(&Config{TTL: time.Minute, MaxKeys: maxKeys}, zap.NewNop(), clock.Now)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 10)

	require.NoError(t, c.Set(ctx, "principal:1", []byte("alice"), 30*time.Second))

	got, ok := c.Get(ctx, "principal:1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(got))

	clock.Advance(31 * time.Second)
	_, ok = c.Get(ctx, "principal:1")
	assert.False(t, ok)

	// zero ttl falls back to the default
	require.NoError(t, c.Set(ctx, "principal:2", []byte("bob"), 0))
	clock.Advance(59 * time.Second)
	_, ok = c.Get(ctx, "principal:2")
	assert.True(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, 2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	clock.Advance(time.Second)
	_, _ = c.Get(ctx, "a")
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCacheDeletePatternAndStats(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 10)

	require.NoError(t, c.Set(ctx, "principal:1", []byte("x"), time.Hour))
	require.NoError(t, c.Set(ctx, "principal:2", []byte("y"), time.Hour))
	require.NoError(t, c.Set(ctx, "other", []byte("z"), time.Hour))

	require.NoError(t, c.DeletePattern(ctx, "principal:*"))

	_, ok := c.Get(ctx, "principal:1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "other")
	assert.True(t, ok)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", stats.Provider)
	assert.EqualValues(t, 1, stats.Keys)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 2, stats.Deletes)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.001)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, 10)

	type principal struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}

	require.NoError(t, SetJSON(ctx, c, "p", principal{ID: "1", Role: "employer"}, time.Minute))

	got, err := GetJSON[principal](ctx, c, "p")
	require.NoError(t, err)
	assert.Equal(t, principal{ID: "1", Role: "employer"}, got)

	_, err = GetJSON[principal](ctx, c, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHealthAfterClose(t *testing.T) {
	c, _ := newTestCache(t, 10)
	require.NoError(t, c.Health(context.Background()))
	require.NoError(t, c.Close())
	assert.Error(t, c.Health(context.Background()))
	// second close is safe
	assert.NoError(t, c.Close())
}

func TestNewCacheRejectsUnknownProvider(t *testing.T) {
	_, err := NewCache(&Config{Provider: "memcached"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewCache(nil, nil)
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
