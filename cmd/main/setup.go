package main

import (
	"context"
	"fmt"
	"time"

	"stock-forecaster/src/analysis"
	"stock-forecaster/src/cache"
	datasource "stock-forecaster/src/data_source"
	"stock-forecaster/src/forecast"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"
	"stock-forecaster/src/network"
	"stock-forecaster/src/utils"
)

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(config, "NetworkManager")
	return network.NewNetworkManager(config, networkLogger)
}

// -----------------------------------------------------------------------------

// setupCache builds the history cache and, when configured, its purge job.
func setupCache(ctx context.Context, config *models.MConfig) (interfaces.ICache, *cache.PurgeScheduler, error) {
	cacheLogger := logger.NewLogger(config, "Cache")
	c, err := cache.New(ctx, config.Cache, cacheLogger)
	if err != nil {
		return nil, nil, err
	}

	if config.Cache.PurgeCron == "" {
		return c, nil, nil
	}
	purger, err := cache.NewPurgeScheduler(config.Cache.PurgeCron, c, cacheLogger)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, purger, nil
}

// -----------------------------------------------------------------------------

// setupDataSources wraps the configured providers in the fallback manager and
// the cache.
func setupDataSources(
	config *models.MConfig,
	appLogger *logger.Logger,
	networkManager interfaces.INetworkManager,
	c interfaces.ICache,
	rec *metrics.Recorder,
) (interfaces.IHistoryProvider, error) {
	appLogger.Info("Initializing data sources...")

	sources, err := datasource.BuildSources(config, networkManager, logger.NewLogger(config, "DataSource"))
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid data sources")
	}

	manager := datasource.NewFallbackSourceManager(sources, logger.NewLogger(config, "FallbackSourceManager"), rec)
	appLogger.Info("Source order: %s", manager.Name())

	ttl := time.Duration(config.Cache.TTLSeconds) * time.Second
	return datasource.NewCachedHistoryProvider(manager, c, ttl, logger.NewLogger(config, "HistoryCache"), rec), nil
}

// -----------------------------------------------------------------------------

// setupAnalysis initializes the forecaster and the page pipeline
func setupAnalysis(
	config *models.MConfig,
	history interfaces.IHistoryProvider,
	rec *metrics.Recorder,
) *analysis.ForecastFacade {
	symbols := make([]string, 0, len(config.UI.Instruments))
	for _, inst := range config.UI.Instruments {
		symbols = append(symbols, inst.Symbol)
	}
	scheduler := utils.NewMarketScheduler(symbols, logger.NewLogger(config, "MarketScheduler"))

	forecaster := forecast.NewForecaster(config.Forecast, scheduler, logger.NewLogger(config, "Forecaster"), rec)
	return analysis.NewForecastFacade(config, history, forecaster, scheduler, logger.NewLogger(config, "Analysis"), rec)
}
