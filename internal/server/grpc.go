package server

import (
	"context"
	"net"

	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer serves the standard health service. It starts NOT_SERVING and
// flips to SERVING once the row store answers.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	probe  Probe
	logger logger.ZapLogger
}

func NewGRPCServer(probe Probe, log logger.ZapLogger) *GRPCServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &GRPCServer{srv: srv, health: hs, probe: probe, logger: log}
}

// Check runs the store probe and publishes the result.
func (s *GRPCServer) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := s.probe(ctx); err != nil {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		s.logger.Warn("row store not reachable", zap.Error(err))
		return err
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return nil
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Stop reports NOT_SERVING to watchers before draining.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *GRPCServer) Health() healthpb.HealthServer {
	return s.health
}
