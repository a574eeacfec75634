package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userservice/internal/client/client"
	"github.com/dmitrijs2005/userservice/internal/client/repositories/session"
	pb "github.com/dmitrijs2005/userservice/internal/proto"
)

// Register prompts for the new account's fields and creates it.
func (a *App) Register(ctx context.Context) error {
	var req pb.RegisterRequest
	var err error

	if req.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.FullName, err = getSimpleText(a.reader, "Enter full name (optional)", a.out); err != nil {
		return err
	}
	if req.Password, err = getPassword(a.out); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.authService.Register(ctx, &req)
	if err != nil {
		return a.report("Registration failed", err)
	}

	fmt.Fprintf(a.out, "%s (id %d)\n", resp.Message, resp.ID)
	return nil
}

// Login prompts for an email or username and a password, and stores the
// issued token.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.authService.Login(ctx, identifier, password)
	if err != nil {
		return a.report("Login failed", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", resp.Username)
	return nil
}

// Profile shows the logged-in user's profile.
func (a *App) Profile(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.authService.Profile(ctx)
	if err != nil {
		return a.report("Profile unavailable", err)
	}

	fmt.Fprintln(a.out, resp.Message)
	fmt.Fprintf(a.out, "  id:        %d\n", resp.ID)
	fmt.Fprintf(a.out, "  username:  %s\n", resp.Username)
	fmt.Fprintf(a.out, "  email:     %s\n", resp.Email)
	fmt.Fprintf(a.out, "  full name: %s\n", resp.FullName)
	fmt.Fprintf(a.out, "  created:   %s\n", resp.CreatedAt)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return a.report("Logout failed", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status prints who is logged in according to the local session.
func (a *App) Status(ctx context.Context) error {
	s, err := a.authService.Current(ctx)
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err != nil {
		return a.report("Status unavailable", err)
	}

	fmt.Fprintf(a.out, "Logged in as %s <%s> until %s\n", s.Username, s.Email, s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		return a.report("Server unreachable", err)
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

// report prints a user-facing line for err and returns it.
func (a *App) report(prefix string, err error) error {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.out, "%s: %s\n", prefix, apiErr.Message)
		for field, msg := range apiErr.Fields {
			fmt.Fprintf(a.out, "  %s: %s\n", field, msg)
		}
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintf(a.out, "%s: not logged in, run 'login' first\n", prefix)
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintf(a.out, "%s: server unavailable\n", prefix)
	default:
		fmt.Fprintf(a.out, "%s: %v\n", prefix, err)
	}
	return err
}
