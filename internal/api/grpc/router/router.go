package router

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskboard-server/internal/api/grpc/middleware"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/metrics"
)

// Router represents the gRPC router of the probe endpoint.
// It registers the health service behind the interceptor chain.
type Router struct {
	health  *grpchealth.Server
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// New creates new gRPC Router instance.
func New(health *grpchealth.Server, metrics *metrics.Metrics, logger *logger.Logger) *Router {
	return &Router{
		health:  health,
		metrics: metrics,
		logger:  logger,
	}
}

// Register builds the gRPC server with metrics, logging and panic recovery
// interceptors, the health service and reflection.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(r.recoverPanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			r.metrics.GRPC.UnaryServerInterceptor(),
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			r.metrics.GRPC.StreamServerInterceptor(),
			logging.HandleGRPCStream,
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)
	r.metrics.GRPC.InitializeMetrics(s)

	return s
}

func (r *Router) recoverPanic(_ context.Context, p any) error {
	r.logger.Error("gRPC: panic recovered",
		"panic", fmt.Sprint(p),
		"stack", string(debug.Stack()))
	return status.Error(codes.Internal, "internal server error")
}
