package grpc

import (
	"net"
	"os"

	"github.com/buildbarn/bb-remote-node/pkg/configuration"
	"github.com/buildbarn/bb-remote-node/pkg/util"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
)

func init() {
	// Add Prometheus timing metrics.
	grpc_prometheus.EnableHandlingTimeHistogram()
}

// NewServersFromConfigurationAndServe creates a series of gRPC servers
// based on a list of GRPCServerConfiguration messages. It registers the
// node's services against each of them, starts Prometheus metrics,
// gRPC reflection and a health check service, and begins serving on
// every configured TCP address and UNIX socket path. Every listener's
// Serve call is added to group, so the caller can wait for them to
// terminate alongside the rest of the program.
func NewServersFromConfigurationAndServe(configs []configuration.GRPCServerConfiguration, maximumMessageSizeBytes int, registrationFunc func(grpc.ServiceRegistrar), group *errgroup.Group) error {
	for _, config := range configs {
		if len(config.ListenAddresses)+len(config.ListenPaths) == 0 {
			return util.StatusWrap(os.ErrInvalid, "gRPC server configured without any listen addresses or paths")
		}

		serverOptions := []grpc.ServerOption{
			grpc.StatsHandler(otelgrpc.NewServerHandler()),
			grpc.ChainUnaryInterceptor(
				grpc_prometheus.UnaryServerInterceptor,
				RequestMetadataTracingUnaryInterceptor),
			grpc.ChainStreamInterceptor(
				grpc_prometheus.StreamServerInterceptor,
				RequestMetadataTracingStreamInterceptor),
		}
		if maximumMessageSizeBytes > 0 {
			serverOptions = append(serverOptions, grpc.MaxRecvMsgSize(maximumMessageSizeBytes))
		}
		s := grpc.NewServer(serverOptions...)
		registrationFunc(s)

		grpc_prometheus.Register(s)
		reflection.Register(s)
		h := health.NewServer()
		grpc_health_v1.RegisterHealthServer(s, h)
		h.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		for _, listenAddress := range config.ListenAddresses {
			listenAddress := listenAddress
			sock, err := net.Listen("tcp", listenAddress)
			if err != nil {
				return util.StatusWrapf(err, "Failed to create listening socket for %#v", listenAddress)
			}
			group.Go(func() error {
				if err := s.Serve(sock); err != nil {
					return util.StatusWrapf(err, "gRPC server failed for %#v", listenAddress)
				}
				return nil
			})
		}

		for _, listenPath := range config.ListenPaths {
			listenPath := listenPath
			if err := os.Remove(listenPath); err != nil && !os.IsNotExist(err) {
				return util.StatusWrapf(err, "Could not remove stale socket %#v", listenPath)
			}
			sock, err := net.Listen("unix", listenPath)
			if err != nil {
				return util.StatusWrapf(err, "Failed to create listening socket for %#v", listenPath)
			}
			group.Go(func() error {
				if err := s.Serve(sock); err != nil {
					return util.StatusWrapf(err, "gRPC server failed for %#v", listenPath)
				}
				return nil
			})
		}
	}
	return nil
}
