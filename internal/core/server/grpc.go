// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/vizcore/internal/core/api"
	"github.com/solatis/vizcore/internal/core/auth"
	"github.com/solatis/vizcore/internal/core/config"
	"github.com/solatis/vizcore/internal/core/metrics"
)

// shutdownTimeout bounds GracefulStop when the caller's context has no deadline.
const shutdownTimeout = 30 * time.Second

// healthMethods bypass authentication so load balancers can probe.
var healthMethods = []string{
	"/grpc.health.v1.Health/Check",
	"/grpc.health.v1.Health/Watch",
	"/grpc.health.v1.Health/List",
}

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config *config.StyleAPIConfig
	logger *zap.Logger
}

// Option configures a GRPCServer.
type Option func(*options)

type options struct {
	authenticator *auth.Authenticator
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// WithAuthenticator requires an API key on every call except health checks.
func WithAuthenticator(a *auth.Authenticator) Option {
	return func(o *options) {
		o.authenticator = a
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewGRPCServer creates gRPC server with interceptors and service registration.
//
// Interceptor order: metrics (so rejected calls are counted), auth, then
// the per-request timeout.
func NewGRPCServer(cfg *config.StyleAPIConfig, service api.StyleAPIServer, opts ...Option) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	var interceptors []grpc.UnaryServerInterceptor
	if o.metrics != nil {
		interceptors = append(interceptors, o.metrics.UnaryInterceptor())
	}
	if o.authenticator != nil {
		interceptors = append(interceptors, o.authenticator.UnaryInterceptor(healthMethods...))
	}
	if cfg.RequestTimeout > 0 {
		interceptors = append(interceptors, timeoutInterceptor(cfg.RequestTimeout))
	}

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(interceptors...),
	}
	if cfg.MaxConnections > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConnections)))
	}

	server := grpc.NewServer(serverOpts...)
	api.RegisterStyleAPIServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		logger: o.logger,
	}, nil
}

// timeoutInterceptor bounds every unary call by d. A shorter client
// deadline still wins.
func timeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Addr returns the configured listen address.
func (s *GRPCServer) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
}

// Start binds the configured address and serves gRPC requests.
// Serve blocks until Shutdown is called.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := s.Addr()
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.logger.Info("style API listening", zap.String("addr", listener.Addr().String()))
	return s.server.Serve(listener)
}

// Shutdown marks the server not serving and stops it gracefully. In-flight
// calls finish unless ctx ends first, or 30 seconds pass when ctx has no
// deadline; then remaining calls are cancelled.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		<-stopped
		return fmt.Errorf("graceful shutdown interrupted, forced stop: %w", ctx.Err())
	}
}
