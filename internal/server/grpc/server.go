// Package grpc serves the standard gRPC health protocol next to the HTTP API.
package grpc

import (
	"context"
	"net"
	"sync"

	"github.com/dmitrijs2005/ponyexpress/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service entry reported next to the overall status.
const ServiceName = "ponyexpress.PonyExpress"

type GRPCServer struct {
	address string
	health  *health.Server
	logger  logging.Logger

	mu       sync.Mutex
	stopping bool
}

func NewGRPCServer(a string, l logging.Logger) *GRPCServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCServer{
		address: a,
		health:  hs,
		logger:  l.With("module", "grpc_server"),
	}
}

// SetServing flips both the overall and the named service status.
// Once shutdown has begun the status stays NOT_SERVING.
func (s *GRPCServer) SetServing(serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if serving && s.stopping {
		return
	}
	s.setStatus(serving)
}

// markStopping pins the health status to NOT_SERVING for good.
func (s *GRPCServer) markStopping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopping = true
	s.setStatus(false)
}

func (s *GRPCServer) setStatus(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		s.markStopping()
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.markStopping()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
