package validation

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/userservice/internal/common"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_RegisterRequest(t *testing.T) {
	tests := []struct {
		name string
		req  pb.RegisterRequest
		want map[string]string
	}{
		{
			name: "valid",
			req:  pb.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "password123", FullName: "Alice A"},
		},
		{
			name: "everything missing",
			req:  pb.RegisterRequest{},
			want: map[string]string{
				"username": "Username is required",
				"email":    "Email is required",
				"password": "Password is required",
			},
		},
		{
			name: "blank is not present",
			req:  pb.RegisterRequest{Username: "   ", Email: "alice@x.com", Password: "password123"},
			want: map[string]string{"username": "Username is required"},
		},
		{
			name: "bounds",
			req: pb.RegisterRequest{
				Username: "al",
				Email:    "not-an-email",
				Password: "short",
				FullName: strings.Repeat("a", 101),
			},
			want: map[string]string{
				"username": "Username must be between 3 and 50 characters",
				"email":    "Email should be valid",
				"password": "Password must be at least 8 characters long",
				"fullName": "Full name must not exceed 100 characters",
			},
		},
		{
			name: "password above bcrypt limit",
			req:  pb.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: strings.Repeat("p", 73)},
			want: map[string]string{"password": "Password must not exceed 72 characters"},
		},
		{
			name: "multibyte password above bcrypt byte limit",
			req:  pb.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: strings.Repeat("é", 40)},
			want: map[string]string{"password": "Password must not exceed 72 bytes"},
		},
		{
			name: "multibyte password at bcrypt byte limit",
			req:  pb.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: strings.Repeat("é", 36)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestStruct_LoginRequest(t *testing.T) {
	require.NoError(t, Struct(pb.LoginRequest{EmailOrUsername: "alice@x.com", Password: "password123"}))

	err := Struct(pb.LoginRequest{EmailOrUsername: "al", Password: "1234567"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{
		"emailOrUsername": "Email or username must be between 3 and 100 characters",
		"password":        "Password must be at least 8 characters long",
	}, verr.Fields)
}

func TestError_Message(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "Invalid input data: a: first; b: second", err.Error())
}
