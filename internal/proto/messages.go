// Package proto holds the wire contract of the user service: request and
// response messages shared by the gRPC and HTTP transports, and the gRPC
// service description. Messages travel over gRPC as google.protobuf.Struct
// values whose keys match the JSON field names below.
package proto

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const RegisteredMessage = "User registered successfully"

const ProfileMessage = "User profile accessed successfully! This is a protected endpoint."

type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,min=3,max=50"`
	Email    string `json:"email" validate:"notblank,email,max=100"`
	Password string `json:"password" validate:"notblank,min=8,max=72,maxbytes=72"`
	FullName string `json:"fullName" validate:"max=100"`
}

type RegisterResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
	Message   string `json:"message"`
}

// LoginRequest carries a username or an email as the identifier.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"notblank,min=3,max=100"`
	Password        string `json:"password" validate:"notblank,min=8"`
}

// UnmarshalJSON also accepts the identifier under "email" or "username"
// when "emailOrUsername" is absent or empty.
func (r *LoginRequest) UnmarshalJSON(b []byte) error {
	type plain LoginRequest
	aux := struct {
		*plain
		Email    string `json:"email"`
		Username string `json:"username"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	switch {
	case r.EmailOrUsername != "":
	case aux.Email != "":
		r.EmailOrUsername = aux.Email
	case aux.Username != "":
		r.EmailOrUsername = aux.Username
	}
	return nil
}

type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	LoginTime string `json:"loginTime"`
}

type ProfileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
	Message   string `json:"message"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// Encode converts a message into a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return s, nil
}

// Decode fills v from s. A nil Struct decodes as an empty object.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}

	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
