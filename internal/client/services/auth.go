// Package services contains the CLI's application services. AuthService
// drives registration, login and profile calls against the server and keeps
// the resulting token in the local session store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/client/client"
	"github.com/dmitrijs2005/userservice/internal/client/repositories/session"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
)

// SessionStore persists the login session between CLI runs.
type SessionStore interface {
	Save(ctx context.Context, s session.Session) error
	Load(ctx context.Context) (session.Session, error)
	Clear(ctx context.Context) error
	Close() error
}

// AuthService defines authentication operations for the CLI.
type AuthService interface {
	Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error)
	Login(ctx context.Context, identifier, password string) (*pb.LoginResponse, error)
	Profile(ctx context.Context) (*pb.ProfileResponse, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (session.Session, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions SessionStore
	now      func() time.Time
}

func NewAuthService(c client.Client, sessions SessionStore) AuthService {
	return &authService{client: c, sessions: sessions, now: time.Now}
}

func (a *authService) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	return a.client.Register(ctx, req)
}

// Login authenticates and replaces any stored session with the new token.
func (a *authService) Login(ctx context.Context, identifier, password string) (*pb.LoginResponse, error) {
	resp, err := a.client.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	s := session.Session{
		Token:     resp.Token,
		Username:  resp.Username,
		Email:     resp.Email,
		ExpiresAt: a.now().Add(time.Duration(resp.ExpiresIn) * time.Millisecond),
	}
	if err := a.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	a.client.SetToken(resp.Token)
	return resp, nil
}

// Profile calls the protected endpoint with the stored token. A session the
// server no longer accepts is dropped.
func (a *authService) Profile(ctx context.Context) (*pb.ProfileResponse, error) {
	s, err := a.Current(ctx)
	if err != nil {
		return nil, err
	}

	a.client.SetToken(s.Token)
	resp, err := a.client.Profile(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		_ = a.Logout(ctx)
	}
	return resp, err
}

// Current returns the stored session. An expired session is cleared and
// reported as session.ErrNoSession.
func (a *authService) Current(ctx context.Context) (session.Session, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return session.Session{}, err
	}

	if s.Expired(a.now()) {
		if err := a.Logout(ctx); err != nil {
			return session.Session{}, err
		}
		return session.Session{}, session.ErrNoSession
	}
	return s, nil
}

// Logout forgets the local session. Tokens are stateless, so the server is
// not contacted.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	return a.sessions.Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.sessions.Close())
}
