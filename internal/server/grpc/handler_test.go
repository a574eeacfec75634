package grpc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustEncode(t *testing.T, v any) *structpb.Struct {
	t.Helper()
	s, err := pb.Encode(v)
	require.NoError(t, err)
	return s
}

func register(t *testing.T, env *testEnv, username, email string) pb.RegisterResponse {
	t.Helper()
	out, err := env.client.Register(context.Background(), mustEncode(t, pb.RegisterRequest{
		Username: username, Email: email, Password: "password123", FullName: "Alice A",
	}))
	require.NoError(t, err)

	var resp pb.RegisterResponse
	require.NoError(t, pb.Decode(out, &resp))
	return resp
}

func login(t *testing.T, env *testEnv, in map[string]any) (pb.LoginResponse, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)

	out, err := env.client.Login(context.Background(), req)
	if err != nil {
		return pb.LoginResponse{}, err
	}
	var resp pb.LoginResponse
	require.NoError(t, pb.Decode(out, &resp))
	return resp, nil
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	resp := register(t, env, "alice", "alice@x.com")
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@x.com", resp.Email)
	assert.Equal(t, "Alice A", resp.FullName)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.CreatedAt)
}

func TestRegister_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "alice@x.com")

	_, err := env.client.Register(context.Background(), mustEncode(t, pb.RegisterRequest{Username: "alice", Email: "bob@x.com", Password: "password123"}))
	st := status.Convert(err)
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.Equal(t, "Username 'alice' already exists", st.Message())

	_, err = env.client.Register(context.Background(), mustEncode(t, pb.RegisterRequest{Username: "bob", Email: "alice@x.com", Password: "password123"}))
	st = status.Convert(err)
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.Equal(t, "Email 'alice@x.com' already exists", st.Message())
}

func TestRegister_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Register(context.Background(), mustEncode(t, pb.RegisterRequest{Username: "al", Email: "nope", Password: "short"}))
	st := status.Convert(err)
	require.Equal(t, codes.InvalidArgument, st.Code())

	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)

	got := map[string]string{}
	for _, v := range br.GetFieldViolations() {
		got[v.GetField()] = v.GetDescription()
	}
	assert.Equal(t, map[string]string{
		"username": "Username must be between 3 and 50 characters",
		"email":    "Email should be valid",
		"password": "Password must be at least 8 characters long",
	}, got)
}

func TestRegister_MultibytePasswordOverByteLimit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Register(context.Background(), mustEncode(t, pb.RegisterRequest{
		Username: "alice", Email: "alice@x.com", Password: strings.Repeat("é", 40),
	}))
	st := status.Convert(err)
	require.Equal(t, codes.InvalidArgument, st.Code())

	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.GetFieldViolations(), 1)
	assert.Equal(t, "password", br.GetFieldViolations()[0].GetField())
	assert.Equal(t, "Password must not exceed 72 bytes", br.GetFieldViolations()[0].GetDescription())
}

func TestFail_LogsOnlyInternalCauses(t *testing.T) {
	var buf bytes.Buffer
	s, _ := newGRPCServer(t, "")
	s.logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := s.fail(context.Background(), common.ErrUserNotFound)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Empty(t, buf.String())

	err = s.fail(context.Background(), fmt.Errorf("%w: insert: disk full", common.ErrRegistrationFailed))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "disk full")
}

func TestLogin_Flow(t *testing.T) {
	env := newTestEnv(t)
	reg := register(t, env, "alice", "alice@x.com")

	for _, in := range []map[string]any{
		{"emailOrUsername": "alice@x.com", "password": "password123"},
		{"emailOrUsername": "alice", "password": "password123"},
		{"email": "alice@x.com", "password": "password123"},
		{"username": "alice", "password": "password123"},
	} {
		resp, err := login(t, env, in)
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600000), resp.ExpiresIn)
		assert.Equal(t, reg.ID, resp.UserID)
		assert.NotEmpty(t, resp.LoginTime)

		sub, err := env.codec.Subject(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", sub)
	}

	_, err := login(t, env, map[string]any{"emailOrUsername": "alice", "password": "wrongpass"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Invalid credentials provided", status.Convert(err).Message())

	_, err = login(t, env, map[string]any{"emailOrUsername": "nobody", "password": "password123"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestProfile_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice", "alice@x.com")
	lr, err := login(t, env, map[string]any{"emailOrUsername": "alice", "password": "password123"})
	require.NoError(t, err)

	_, err = env.client.Profile(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer not-a-token")
	_, err = env.client.Profile(bad, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+lr.Token)
	out, err := env.client.Profile(ctx, &structpb.Struct{})
	require.NoError(t, err)

	var p pb.ProfileResponse
	require.NoError(t, pb.Decode(out, &p))
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@x.com", p.Email)
	assert.Equal(t, pb.ProfileMessage, p.Message)
}

func TestPublicMethodsIgnoreBadTokens(t *testing.T) {
	env := newTestEnv(t)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer garbage")
	out, err := env.client.Ping(ctx, &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "OK", out.GetFields()["status"].GetStringValue())
}
