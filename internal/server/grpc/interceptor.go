package grpc

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every call with its duration and status code and
// turns handler panics into codes.Internal.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	start := time.Now()
	log := s.logger.With("request_id", uuid.NewString(), "method", info.FullMethod)

	defer func() {
		if p := recover(); p != nil {
			log.Error(ctx, "handler panic", "panic", p)
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
		log.Info(ctx, "call", "code", status.Code(err).String(), "duration", time.Since(start))
	}()

	return handler(ctx, req)
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
