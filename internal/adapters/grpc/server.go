// Package grpc exposes the internal ops surface: gRPC health checks for
// orchestration probes plus a small operational service for funding-session
// reconciliation. It listens on its own port and is never reachable through
// the partner-facing HTTP API.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServerConfig configures the ops listener.
type ServerConfig struct {
	Address string
	Logger  *slog.Logger
}

// Server wraps the grpc.Server and its listener lifecycle.
type Server struct {
	address    string
	logger     *slog.Logger
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer assembles the ops server: health, reflection, and the ops
// service, all behind the otelgrpc stats handler so RPCs appear in the same
// traces as the HTTP surface.
func NewServer(cfg *ServerConfig, ops *OpsService) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	grpcServer.RegisterService(&opsServiceDesc, ops)
	reflection.Register(grpcServer)

	return &Server{
		address:    cfg.Address,
		logger:     cfg.Logger,
		grpcServer: grpcServer,
		health:     healthServer,
	}
}

// Run listens and serves until Shutdown is called.
func (s *Server) Run() error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.logger.Info("gRPC ops server listening", slog.String("address", s.address))
	return s.grpcServer.Serve(lis)
}

// Shutdown stops accepting RPCs and waits for in-flight ones, respecting the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}

// OpsService is the operational RPC surface. Its request and response
// messages are protobuf well-known types, so the service needs no generated
// code; the service descriptor below is maintained by hand.
type OpsService struct {
	fundingSessionRepo ports.FundingSessionRepository
	uow                ports.UnitOfWork
	expireSweep        *funding.ExpireSweepUseCase
}

func NewOpsService(fundingSessionRepo ports.FundingSessionRepository, uow ports.UnitOfWork, expireSweep *funding.ExpireSweepUseCase) *OpsService {
	return &OpsService{fundingSessionRepo: fundingSessionRepo, uow: uow, expireSweep: expireSweep}
}

// ReconcileFundingSession re-evaluates one session's expiry and returns its
// status. Ops tooling calls this when a session looks stuck between the
// background sweeps.
func (s *OpsService) ReconcileFundingSession(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	sessionID, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "session id must be a uuid")
	}

	var sessionStatus entities.FundingSessionStatus
	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		session, err := s.fundingSessionRepo.FindByIDForUpdate(txCtx, sessionID)
		if err != nil {
			return err
		}
		if session.IsExpired(time.Now().UTC()) {
			if err := session.Expire(); err != nil {
				return err
			}
			if err := s.fundingSessionRepo.Save(txCtx, session); err != nil {
				return err
			}
		}
		sessionStatus = session.Status()
		return nil
	})
	if err != nil {
		return nil, status.Error(codes.NotFound, "funding session not found")
	}
	return wrapperspb.String(string(sessionStatus)), nil
}

// ExpireFundingSessions runs one expiry sweep immediately and returns the
// number of sessions it transitioned.
func (s *OpsService) ExpireFundingSessions(ctx context.Context, _ *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	n, err := s.expireSweep.Execute(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "expiry sweep failed")
	}
	return wrapperspb.Int64(int64(n)), nil
}

const opsServiceName = "payflow.ops.v1.Ops"

// opsServiceDesc is the hand-maintained service descriptor for OpsService.
var opsServiceDesc = grpc.ServiceDesc{
	ServiceName: opsServiceName,
	HandlerType: (*opsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReconcileFundingSession", Handler: reconcileFundingSessionHandler},
		{MethodName: "ExpireFundingSessions", Handler: expireFundingSessionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payflow/ops/v1/ops.proto",
}

// opsServer is the interface the descriptor binds OpsService against.
type opsServer interface {
	ReconcileFundingSession(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	ExpireFundingSessions(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
}

func reconcileFundingSessionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(opsServer).ReconcileFundingSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + opsServiceName + "/ReconcileFundingSession"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(opsServer).ReconcileFundingSession(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func expireFundingSessionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(opsServer).ExpireFundingSessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + opsServiceName + "/ExpireFundingSessions"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(opsServer).ExpireFundingSessions(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
