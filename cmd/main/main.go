package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-forecaster/src/config"
	"stock-forecaster/src/favorites"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/server"
)

// favoritesLimit caps the tickers a single visitor can keep.
const favoritesLimit = 50

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "", "path to config file (defaults and environment only when empty)")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Setup Components
	rec := metrics.New()
	networkManager := setupNetwork(conf.MConfig)

	historyCache, purger, err := setupCache(ctx, conf.MConfig)
	if err != nil {
		appLogger.Critical("Failed to init cache: %v", err)
	}
	defer historyCache.Close()

	history, err := setupDataSources(conf.MConfig, appLogger, networkManager, historyCache, rec)
	if err != nil {
		appLogger.Critical("Failed to init data sources: %v", err)
	}

	pages := setupAnalysis(conf.MConfig, history, rec)
	srv := server.NewFastAPIServer(conf.MConfig, pages, favorites.NewStore(favoritesLimit), rec, logger.NewLogger(conf.MConfig, "Server"))

	// 2. Start Servers and background jobs
	health := startServers(srv, conf.MConfig, appLogger)

	if purger != nil {
		purger.Start()
		defer purger.Stop()
	}

	status, err := startStatusBroadcast(srv, pages, appLogger)
	if err != nil {
		appLogger.Error("Market status broadcast disabled: %v", err)
	} else {
		defer func() { <-status.Stop().Done() }()
	}

	// 3. Wait for shutdown
	<-ctx.Done()
	appLogger.Info("Shutting down...")

	if health != nil {
		health.Stop()
	}
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}
