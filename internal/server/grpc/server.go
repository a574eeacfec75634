// Package grpc exposes the user service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/userservice/internal/logging"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	pb.UnimplementedUserServiceServer
	address string
	users   *services.UserService
	gate    *auth.Gate
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, gate *auth.Gate) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		gate:    gate,
	}
}

// NewServer builds a grpc.Server with the service and its interceptors
// registered, without binding a listener.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.loggingInterceptor,
		s.authInterceptor,
		s.policyInterceptor,
	))
	srv := grpc.NewServer(opts...)
	pb.RegisterUserServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
