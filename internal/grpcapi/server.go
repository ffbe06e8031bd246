package grpcapi

import (
	"context"
	"crypto/subtle"
	"io"
	"log"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
)

type Dependencies struct {
	Logger *log.Logger
	Hub    *broadcast.Hub
	// Token, when set, must be presented as "authorization: Bearer <token>"
	// on every call except health checks.
	Token string
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *log.Logger
}

func NewServer(d Dependencies) *Server {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}

	gs := grpc.NewServer(
		grpc.ChainStreamInterceptor(loggingStream(d.Logger), tokenStream(d.Token)),
		grpc.ChainUnaryInterceptor(tokenUnary(d.Token)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	gs.RegisterService(&changeFeedDesc, NewFeed(d.Hub))
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpc: gs, health: hs, logger: d.Logger}
}

// Serve blocks until lis is closed or the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Printf("grpc listening on %s", lis.Addr())
	return s.grpc.Serve(lis)
}

// Shutdown marks the services NOT_SERVING and drains open streams, forcing
// them closed if ctx expires first.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
		<-done
	}
}

func isHealth(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/")
}

func checkToken(ctx context.Context, want string) error {
	if want == "" {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	for _, v := range md.Get("authorization") {
		got, ok := strings.CutPrefix(v, "Bearer ")
		if ok && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
			return nil
		}
	}
	return status.Error(codes.Unauthenticated, "missing or invalid token")
}

func tokenStream(token string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !isHealth(info.FullMethod) {
			if err := checkToken(ss.Context(), token); err != nil {
				return err
			}
		}
		return handler(srv, ss)
	}
}

func tokenUnary(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !isHealth(info.FullMethod) {
			if err := checkToken(ctx, token); err != nil {
				return nil, err
			}
		}
		return handler(ctx, req)
	}
}

func loggingStream(logger *log.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if !isHealth(info.FullMethod) {
			logger.Printf("grpc %s ended: %v", info.FullMethod, status.Code(err))
		}
		return err
	}
}
