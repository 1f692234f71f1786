package server

import (
	"errors"
	"fmt"
	"log"
	"net"

	perrors "github.com/louisbranch/echowire/internal/platform/errors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// adminServer exposes the stock gRPC health service on a separate port so
// operators and orchestrators can observe the running flag without speaking
// the echo protocol.
type adminServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
	started  bool
}

// newAdminServer binds the admin listener and registers the health service.
// The service reports NOT_SERVING until Run flips the running flag.
func newAdminServer(addr string) (*adminServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeBindFailed, fmt.Sprintf("bind admin %s", addr), err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &adminServer{
		listener: listener,
		grpc:     grpcServer,
		health:   healthServer,
	}, nil
}

// addr returns the bound admin address.
func (a *adminServer) addr() string {
	return a.listener.Addr().String()
}

// start marks the health service SERVING and begins serving gRPC.
func (a *adminServer) start() {
	a.started = true
	a.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() {
		if err := a.grpc.Serve(a.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Printf("serve admin gRPC: %v", err)
		}
	}()
}

// markStopped flips the health service to NOT_SERVING after Stop.
func (a *adminServer) markStopped() {
	a.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// close shuts the admin endpoint down gracefully. GracefulStop only closes
// listeners handed to Serve, so the listener is released explicitly when the
// server was constructed but never run.
func (a *adminServer) close() {
	a.health.Shutdown()
	a.grpc.GracefulStop()
	if !a.started {
		_ = a.listener.Close()
	}
}
