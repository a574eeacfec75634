package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/apierror"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/services"
	"github.com/dmitrijs2005/userservice/internal/server/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.RegisterRequest
	if err := pb.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return nil, apierror.GRPCStatus(err)
	}

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	user, err := s.users.Register(ctx, services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return encode(pb.RegisterResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		Message:   pb.RegisteredMessage,
	})
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.LoginRequest
	if err := pb.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return nil, apierror.GRPCStatus(err)
	}

	s.logger.Info(ctx, "Login request", "identifier", req.EmailOrUsername)

	res, err := s.users.Login(ctx, req.EmailOrUsername, req.Password)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return encode(pb.LoginResponse{
		Token:     res.Token,
		TokenType: common.TokenType,
		ExpiresIn: res.ExpiresIn,
		UserID:    res.UserID,
		Username:  res.Username,
		Email:     res.Email,
		FullName:  res.FullName,
		LoginTime: res.IssuedAt.UTC().Format(time.RFC3339),
	})
}

// Profile returns the caller's own record. The policy interceptor guarantees
// a principal is present.
func (s *GRPCServer) Profile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, apierror.GRPCStatus(common.ErrAuthenticationRequired)
	}

	user, err := s.users.Profile(ctx, p.Username)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return encode(pb.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		Message:   pb.ProfileMessage,
	})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return encode(pb.PingResponse{Status: "OK"})
}

func encode(v any) (*structpb.Struct, error) {
	out, err := pb.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "An unexpected error occurred")
	}
	return out, nil
}

// fail converts a service error into a status. The cause of an internal
// failure is logged here since the client only sees a generic message.
func (s *GRPCServer) fail(ctx context.Context, err error) error {
	if apierror.FromError(err).Internal() {
		s.logger.Error(ctx, "request failed", "error", err.Error())
	}
	return apierror.GRPCStatus(err)
}
