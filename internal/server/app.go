// Package server wires configuration, storage, authentication and the gRPC
// and HTTP transports into a runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/dmitrijs2005/userservice/internal/server/config"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/server/rest"
	"github.com/dmitrijs2005/userservice/internal/server/services"

	gs "github.com/dmitrijs2005/userservice/internal/server/grpc"
)

// runner is a transport that serves until its context is done.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *services.UserService
	gate        *auth.Gate
}

// NewApp builds every component from c. The store is Postgres when a DSN is
// configured and in-memory otherwise.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	tokens, err := auth.NewTokenCodec(c.JWTSecret, c.JWTExpiration)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	credentials, err := auth.NewBcryptVerifier(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}

	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "DATABASE_DSN is empty, using in-memory user store")
	}

	rm, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	logger.Info(ctx, "Token codec ready", "algorithm", tokens.Algorithm(), "expiration_ms", tokens.ExpirationMillis())

	return &App{
		config:      c,
		logger:      logger,
		repos:       rm,
		userService: services.NewUserService(rm, tokens, credentials, logger),
		gate:        auth.NewGate(tokens, logger),
	}, nil
}

func (app *App) runners() []runner {
	var rs []runner
	if app.config.EndpointAddrGRPC != "" {
		rs = append(rs, gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.gate))
	}
	if app.config.EndpointAddrHTTP != "" {
		rs = append(rs, rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.gate))
	}
	return rs
}

// Run serves every configured transport until ctx is cancelled, a
// termination signal arrives, or one of the transports fails. The first
// failure stops the others and is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(context.Background(), "failed to close store", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for _, r := range app.runners() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				once.Do(func() { firstErr = err })
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")

	return firstErr
}
