package cache

import (
	"context"
	"time"

	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
)

// LayeredCache reads through a memory L1 to a shared L2. L2 errors degrade to
// misses so a Redis outage never fails a request.
type LayeredCache struct {
	l1     *MemoryCache
	l2     interfaces.ICache
	logger *logger.Logger
}

func NewLayeredCache(l1 *MemoryCache, l2 interfaces.ICache, log *logger.Logger) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2, logger: log}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok, _ := lc.l1.Get(ctx, key); ok {
		return v, true, nil
	}

	v, ok, err := lc.l2.Get(ctx, key)
	if err != nil {
		lc.logger.Warning("L2 cache get %s failed: %v", key, err)
		return nil, false, nil
	}
	if ok {
		_ = lc.l1.Set(ctx, key, v, 0)
	}
	return v, ok, nil
}

// Set writes through to both layers.
func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = lc.l1.Set(ctx, key, value, ttl)
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		lc.logger.Warning("L2 cache set %s failed: %v", key, err)
	}
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = lc.l1.Delete(ctx, key)
	return lc.l2.Delete(ctx, key)
}

func (lc *LayeredCache) Purge(ctx context.Context) error {
	_ = lc.l1.Purge(ctx)
	return lc.l2.Purge(ctx)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
