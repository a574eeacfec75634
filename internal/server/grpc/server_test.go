package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/server/services"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret-key-for-testing-purposes-only"

type testEnv struct {
	server *GRPCServer
	codec  *auth.TokenCodec
	client pb.UserServiceClient
}

func newGRPCServer(t *testing.T, address string) (*GRPCServer, *auth.TokenCodec) {
	t.Helper()

	codec, err := auth.NewTokenCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	verifier, err := auth.NewBcryptVerifier(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptVerifier: %v", err)
	}

	users := services.NewUserService(repomanager.NewInMemoryRepositoryManager(), codec, verifier, logging.Nop{})
	return NewGRPCServer(address, logging.Nop{}, users, auth.NewGate(codec, logging.Nop{})), codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, codec := newGRPCServer(t, "bufnet")

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &testEnv{server: s, codec: codec, client: pb.NewUserServiceClient(conn)}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv, _ := newGRPCServer(t, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv, _ := newGRPCServer(t, "127.0.0.1:99999")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestProtectedMethods(t *testing.T) {
	if _, ok := protectedMethods[pb.UserService_Profile_FullMethodName]; !ok {
		t.Fatal("Profile must be protected")
	}
	for _, m := range []string{pb.UserService_Register_FullMethodName, pb.UserService_Login_FullMethodName, pb.UserService_Ping_FullMethodName} {
		if _, ok := protectedMethods[m]; ok {
			t.Fatalf("%s must be public", m)
		}
	}
	if common.AuthorizationHeaderName != "authorization" {
		t.Fatal("gRPC metadata keys are lower case")
	}
}
