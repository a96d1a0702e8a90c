package cache

import (
	"context"
	"fmt"
	"time"

	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"

	"github.com/robfig/cron/v3"
)

// PurgeScheduler empties a cache on a cron schedule so long running
// processes pick up fresh history.
type PurgeScheduler struct {
	Cron   *cron.Cron
	cache  interfaces.ICache
	logger *logger.Logger
}

// NewPurgeScheduler registers the purge job. schedule uses the standard five
// field cron syntax, e.g. "0 6 * * 1-5".
func NewPurgeScheduler(schedule string, c interfaces.ICache, log *logger.Logger) (*PurgeScheduler, error) {
	ps := &PurgeScheduler{Cron: cron.New(), cache: c, logger: log}
	if _, err := ps.Cron.AddFunc(schedule, ps.purge); err != nil {
		return nil, fmt.Errorf("register cache purge %q: %w", schedule, err)
	}
	return ps, nil
}

func (ps *PurgeScheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ps.cache.Purge(ctx); err != nil {
		ps.logger.Error("Cache purge failed: %v", err)
		return
	}
	ps.logger.Info("Cache purged")
}

// Start starts the cron scheduler.
func (ps *PurgeScheduler) Start() {
	ps.Cron.Start()
	ps.logger.Info("Cache purge scheduler started")
}

// Stop waits for a running purge to finish.
func (ps *PurgeScheduler) Stop() {
	<-ps.Cron.Stop().Done()
	ps.logger.Info("Cache purge scheduler stopped")
}
