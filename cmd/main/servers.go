package main

import (
	"stock-forecaster/src/grpc_control"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"

	"github.com/robfig/cron/v3"
)

// statusSchedule is how often open/closed markets are pushed to sessions.
const statusSchedule = "@every 1m"

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components. The
// returned health server is nil when gRPC is disabled.
func startServers(
	srv interfaces.IDataExchanger,
	config *models.MConfig,
	appLogger *logger.Logger,
) *grpc_control.HealthServer {

	// 1. HTTP and websocket server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC health server
	if config.GrpcPort == 0 {
		return nil
	}
	health := grpc_control.NewHealthServer(config, logger.NewLogger(config, "HealthServer"))
	if err := health.Start(); err != nil {
		appLogger.Error("gRPC health server disabled: %v", err)
		return nil
	}
	return health
}

// -----------------------------------------------------------------------------

// startStatusBroadcast pushes the market status to every websocket session.
func startStatusBroadcast(srv interfaces.IDataExchanger, pages interfaces.IPageBuilder, appLogger *logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	push := func() { srv.Broadcast(pages.MarketStatus()) }
	if _, err := c.AddFunc(statusSchedule, push); err != nil {
		return nil, err
	}
	c.Start()
	appLogger.Info("Market status broadcast scheduled (%s)", statusSchedule)
	return c, nil
}
