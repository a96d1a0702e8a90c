package grpc_control

import (
	"fmt"
	"net"

	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ForecastService is the service name reported next to the overall "" status.
const ForecastService = "stockforecaster.Forecast"

// HealthServer exposes grpc.health.v1 so orchestrators can probe the process
// without going through the HTTP UI.
type HealthServer struct {
	Server *grpc.Server
	Health *health.Server
	Addr   string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHealthServer(cfg *models.MConfig, log *logger.Logger) *HealthServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ForecastService, healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{
		Server: srv,
		Health: hs,
		Addr:   fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort),
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Serve blocks until Stop is called or the listener fails.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.Logger.Info("Starting gRPC health server on %s", lis.Addr())
	return s.Server.Serve(lis)
}

// Start listens on the configured address and serves in the background.
func (s *HealthServer) Start() error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen for gRPC on %s: %w", s.Addr, err)
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			s.Logger.Error("gRPC health server stopped: %v", err)
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

// SetServing flips the forecast service status, e.g. while no source is
// reachable.
func (s *HealthServer) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.Health.SetServingStatus(ForecastService, status)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight calls.
func (s *HealthServer) Stop() {
	s.Health.Shutdown()
	s.Server.GracefulStop()
	s.Logger.Info("gRPC health server stopped")
}
