package datasource

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"stock-forecaster/src/cache"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"

	"golang.org/x/sync/singleflight"
)

// CachedHistoryProvider memoizes successful loads of an upstream provider.
// Concurrent requests for the same key share one upstream call. Failures are
// never stored.
type CachedHistoryProvider struct {
	Upstream interfaces.IHistoryProvider
	Cache    interfaces.ICache
	TTL      time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.Recorder
	group    singleflight.Group
}

// sharedLoadTimeout bounds an upstream load that outlives the caller that started it.
const sharedLoadTimeout = 2 * time.Minute

// -----------------------------------------------------------------------------

func NewCachedHistoryProvider(upstream interfaces.IHistoryProvider, c interfaces.ICache, ttl time.Duration, log *logger.Logger, rec *metrics.Recorder) *CachedHistoryProvider {
	return &CachedHistoryProvider{
		Upstream: upstream,
		Cache:    c,
		TTL:      ttl,
		Logger:   log,
		Metrics:  rec,
	}
}

// -----------------------------------------------------------------------------

// HistoryKey is the cache key of one symbol and range.
func HistoryKey(symbol string, start, end time.Time) string {
	return cache.GenerateKey("history", utils.NormalizeSymbol(symbol), start.Format(utils.DateLayout), end.Format(utils.DateLayout))
}

// -----------------------------------------------------------------------------

func (p *CachedHistoryProvider) LoadHistory(ctx context.Context, symbol string, start, end time.Time) (*models.MHistory, error) {
	key := HistoryKey(symbol, start, end)

	if h, ok := p.lookup(ctx, key); ok {
		p.Metrics.RecordCache("hit")
		return h, nil
	}
	p.Metrics.RecordCache("miss")

	// the shared load must not inherit one caller's cancellation
	ch := p.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		// a call that just finished may have filled the cache
		if h, ok := p.lookup(loadCtx, key); ok {
			return h, nil
		}
		h, err := p.Upstream.LoadHistory(loadCtx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		p.store(loadCtx, key, h)
		return h, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		p.Logger.Debug("Shared in-flight load for %s", key)
	}

	return cloneHistory(res.Val.(*models.MHistory)), nil
}

// cloneHistory copies src deep enough that callers can modify bars freely.
func cloneHistory(src *models.MHistory) *models.MHistory {
	h := *src
	h.Bars = slices.Clone(src.Bars)
	h.Attempts = slices.Clone(src.Attempts)
	return &h
}

// -----------------------------------------------------------------------------

func (p *CachedHistoryProvider) lookup(ctx context.Context, key string) (*models.MHistory, bool) {
	data, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		p.Logger.Warning("Cache get %s failed: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var h models.MHistory
	if err := json.Unmarshal(data, &h); err != nil {
		p.Logger.Warning("Dropping corrupt cache entry %s: %v", key, err)
		_ = p.Cache.Delete(ctx, key)
		return nil, false
	}
	h.FromCache = true
	return &h, true
}

// -----------------------------------------------------------------------------

func (p *CachedHistoryProvider) store(ctx context.Context, key string, h *models.MHistory) {
	data, err := json.Marshal(h)
	if err != nil {
		p.Logger.Warning("Cache encode %s failed: %v", key, err)
		return
	}
	if err := p.Cache.Set(ctx, key, data, p.TTL); err != nil {
		p.Logger.Warning("Cache set %s failed: %v", key, err)
	}
}
