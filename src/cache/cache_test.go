package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "history:AAPL:2010-01-01:2024-01-01", GenerateKey("history", "AAPL", "2010-01-01", "2024-01-01"))
	assert.Equal(t, "plain", GenerateKey("plain"))
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(2)

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))

	// touch a so b becomes least recently used
	_, ok, _ := mc.Get(ctx, "a")
	require.True(t, ok)

	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))
	assert.Equal(t, 2, mc.Len())

	_, ok, _ = mc.Get(ctx, "b")
	assert.False(t, ok)
	v, ok, _ := mc.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := mc.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = mc.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, mc.Len())
}

func TestMemoryCachePurgeAndDelete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(10)
	_ = mc.Set(ctx, "a", []byte("1"), 0)
	_ = mc.Set(ctx, "b", []byte("2"), 0)

	require.NoError(t, mc.Delete(ctx, "a"))
	assert.Equal(t, 1, mc.Len())
	require.NoError(t, mc.Purge(ctx))
	assert.Zero(t, mc.Len())
}

type brokenCache struct{ sets int }

func (b *brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (b *brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	b.sets++
	return errors.New("connection refused")
}
func (b *brokenCache) Delete(context.Context, string) error { return nil }
func (b *brokenCache) Purge(context.Context) error          { return nil }
func (b *brokenCache) Close() error                         { return nil }

func TestLayeredCacheDegradesOnL2Failure(t *testing.T) {
	ctx := context.Background()
	l2 := &brokenCache{}
	lc := NewLayeredCache(NewMemoryCache(4), l2, logger.NewNopLogger())

	_, ok, err := lc.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lc.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 1, l2.sets)

	v, ok, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestLayeredCacheFillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache(4)
	_ = l2.Set(ctx, "k", []byte("from-l2"), 0)

	l1 := NewMemoryCache(4)
	lc := NewLayeredCache(l1, l2, logger.NewNopLogger())

	v, ok, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("from-l2"), v)
	assert.Equal(t, 1, l1.Len())
}

func TestPurgeScheduler(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(4)
	_ = mc.Set(ctx, "k", []byte("v"), 0)

	_, err := NewPurgeScheduler("not a cron", mc, logger.NewNopLogger())
	assert.Error(t, err)

	ps, err := NewPurgeScheduler("0 6 * * 1-5", mc, logger.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, ps.Cron.Entries(), 1)

	ps.purge()
	assert.Zero(t, mc.Len())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), models.MCacheConfig{Backend: "memcached"}, logger.NewNopLogger())
	assert.Error(t, err)

	c, err := New(context.Background(), models.MCacheConfig{Backend: "memory", MaxEntries: 8}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

// Runs against a live server only when SF_TEST_REDIS_ADDR is set, e.g. localhost:6379.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("SF_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SF_TEST_REDIS_ADDR not set")
	}
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	ctx := context.Background()
	rc, err := NewRedisCache(ctx, models.MCacheConfig{RedisHost: host, RedisPort: port, Prefix: "sf-test"})
	require.NoError(t, err)
	defer rc.Close()

	require.NoError(t, rc.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, rc.Purge(ctx))
	_, ok, err = rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
