package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userservice/internal/common"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is the API surface used by the CLI services.
type Client interface {
	Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error)
	Login(ctx context.Context, identifier, password string) (*pb.LoginResponse, error)
	Profile(ctx context.Context) (*pb.ProfileResponse, error)
	Ping(ctx context.Context) error
	SetToken(token string)
	Close() error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.UserServiceClient

	mu    sync.RWMutex
	token string
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) bearerInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.currentToken(); token != "" {
		ctx = withBearer(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; extra options are appended after
// the defaults, which lets tests swap the dialer.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.bearerInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewUserServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *GRPCClient) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	var resp pb.RegisterResponse
	if err := s.call(ctx, s.client.Register, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, identifier, password string) (*pb.LoginResponse, error) {
	var resp pb.LoginResponse
	req := &pb.LoginRequest{EmailOrUsername: identifier, Password: password}
	if err := s.call(ctx, s.client.Login, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*pb.ProfileResponse, error) {
	var resp pb.ProfileResponse
	if err := s.call(ctx, s.client.Profile, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp pb.PingResponse
	return s.call(ctx, s.client.Ping, struct{}{}, &resp)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

type rpc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (s *GRPCClient) call(ctx context.Context, method rpc, req, resp any) error {
	in, err := pb.Encode(req)
	if err != nil {
		return err
	}

	out, err := method(ctx, in)
	if err != nil {
		return s.mapError(err)
	}

	return pb.Decode(out, resp)
}

func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.AlreadyExists, codes.NotFound, codes.Unauthenticated, codes.Internal:
		apiErr := &APIError{Code: st.Code(), Message: st.Message()}
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok {
				apiErr.Fields = make(map[string]string, len(br.GetFieldViolations()))
				for _, v := range br.GetFieldViolations() {
					apiErr.Fields[v.GetField()] = v.GetDescription()
				}
			}
		}
		return apiErr
	default:
		return err
	}
}
