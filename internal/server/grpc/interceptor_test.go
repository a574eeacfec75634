package grpc

import (
	"context"
	"testing"

	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestAuthInterceptor_AttachesPrincipal(t *testing.T) {
	s, codec := newGRPCServer(t, "")
	tok, err := codec.Issue(1, "alice", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	info := &grpc.UnaryServerInfo{FullMethod: pb.UserService_Ping_FullMethodName}

	var seen *auth.Principal
	h := func(ctx context.Context, req any) (any, error) {
		seen, _ = auth.PrincipalFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.authInterceptor(ctx, nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.Username != "alice" {
		t.Fatalf("expected principal alice, got %+v", seen)
	}
}

func TestAuthInterceptor_NeverRejects(t *testing.T) {
	s, _ := newGRPCServer(t, "")

	for _, md := range []metadata.MD{nil, metadata.Pairs("authorization", "Bearer junk"), metadata.Pairs("authorization", "Basic abc")} {
		ctx := context.Background()
		if md != nil {
			ctx = metadata.NewIncomingContext(ctx, md)
		}

		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			if _, ok := auth.PrincipalFromContext(ctx); ok {
				t.Fatal("no principal expected")
			}
			return nil, nil
		}
		if _, err := s.authInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, h); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatal("handler was not called")
		}
	}
}

func TestPolicyInterceptor(t *testing.T) {
	s, _ := newGRPCServer(t, "")
	info := &grpc.UnaryServerInfo{FullMethod: pb.UserService_Profile_FullMethodName}

	h := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	_, err := s.policyInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{Username: "alice"})
	resp, err := s.policyInterceptor(ctx, nil, info, h)
	if err != nil || resp != "ok" {
		t.Fatalf("expected pass-through, got %v, %v", resp, err)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	s, _ := newGRPCServer(t, "")
	h := func(ctx context.Context, req any) (any, error) { panic("boom") }

	_, err := s.recoveryInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, h)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}
