package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/userservice/internal/client/client"
	"github.com/dmitrijs2005/userservice/internal/client/config"
	"github.com/dmitrijs2005/userservice/internal/client/repositories/session"
	"github.com/dmitrijs2005/userservice/internal/client/services"
)

// ErrUnknownCommand is returned by Run for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// getSimpleText and getPassword are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	authService services.AuthService
	timeout     time.Duration
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the session database and prepares the gRPC client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing session database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		authService: services.NewAuthService(apiClient, store),
		timeout:     c.RequestTimeout,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run executes the command named by args[0], or starts the interactive loop
// when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.authService.Close(ctx)

	if len(args) == 0 {
		fmt.Fprintln(a.out, "User service CLI (type 'help' for commands)")
		runREPL(ctx, a, a.status, a.reader, a.out)
		return nil
	}

	return a.Exec(ctx, args[0])
}

// Exec runs a single command by name.
func (a *App) Exec(ctx context.Context, cmd string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "profile":
		return a.Profile(ctx)
	case "logout":
		return a.Logout(ctx)
	case "status":
		return a.Status(ctx)
	case "ping":
		return a.Ping(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// status is shown in the interactive prompt.
func (a *App) status() string {
	s, err := a.authService.Current(context.Background())
	if err != nil {
		return ""
	}
	return "(" + s.Username + ")"
}
