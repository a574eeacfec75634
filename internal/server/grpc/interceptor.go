package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/apierror"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedMethods require an authenticated caller.
var protectedMethods = map[string]struct{}{
	pb.UserService_Profile_FullMethodName: {},
}

// authInterceptor runs the gate for every call. It never rejects.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	return handler(s.gate.Attach(ctx, header), req)
}

// policyInterceptor rejects anonymous callers of protected methods.
func (s *GRPCServer) policyInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, protected := protectedMethods[info.FullMethod]; protected {
		if _, ok := auth.PrincipalFromContext(ctx); !ok {
			return nil, apierror.GRPCStatus(common.ErrAuthenticationRequired)
		}
	}
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc finished", args...)
	} else {
		s.logger.Info(ctx, "rpc finished", args...)
	}
	return resp, err
}

func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in handler", "method", info.FullMethod, "panic", r)
			resp, err = nil, status.Error(codes.Internal, "An unexpected error occurred")
		}
	}()
	return handler(ctx, req)
}
