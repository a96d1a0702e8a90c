package cache

import (
	"context"
	"fmt"
	"strings"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
)

// GenerateKey creates a cache key from a prefix and parts joined by ':'.
func GenerateKey(prefix string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

// -----------------------------------------------------------------------------

// New builds the backend named in the config. Redis backends are pinged at
// construction so a bad address fails at startup.
func New(ctx context.Context, cfg models.MCacheConfig, log *logger.Logger) (interfaces.ICache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(memoryEntries(cfg.MaxEntries, log)), nil
	case "redis":
		return NewRedisCache(ctx, cfg)
	case "layered":
		rc, err := NewRedisCache(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(NewMemoryCache(memoryEntries(cfg.MaxEntries, log)), rc, log), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// -----------------------------------------------------------------------------

// historyEntryKB is roughly one cached history: fifteen years of daily bars
// serialized as JSON.
const historyEntryKB = 800

// memoryEntries keeps the in-process LRU inside the host memory budget.
func memoryEntries(requested int, log *logger.Logger) int {
	entries := helpers.CacheEntriesFor(requested, historyEntryKB)
	if entries < requested && log != nil {
		log.Warning("Cache limited to %d entries (requested %d) by available memory", entries, requested)
	}
	return entries
}
