// Package config handles configuration for the user service, layering
// defaults, environment (optionally from a .env file), a JSON file and
// command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/userservice/internal/logging"
)

// MinSecretLength mirrors the token signer's requirement so that a bad secret
// is reported at startup rather than on first login.
const MinSecretLength = 32

// MinJWTExpiration is the shortest token lifetime the signer accepts.
const MinJWTExpiration = time.Second

// Config holds runtime settings for the user service.
//
// An empty DatabaseDSN selects the in-memory user store.
type Config struct {
	EndpointAddrGRPC string
	EndpointAddrHTTP string
	DatabaseDSN      string
	JWTSecret        string
	JWTExpiration    time.Duration
	BcryptCost       int
	LogBackend       string
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the default secret is public and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.JWTSecret = "dev-only-user-service-signing-secret-change-me"
	c.JWTExpiration = 86400000 * time.Millisecond
	c.BcryptCost = 10
	c.LogBackend = logging.BackendSlog
	c.LogLevel = "info"
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLength, len(c.JWTSecret)))
	}
	if c.JWTExpiration < MinJWTExpiration {
		errs = append(errs, fmt.Errorf("jwt expiration must be at least %s, got %s", MinJWTExpiration, c.JWTExpiration))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [4, 31]", c.BcryptCost))
	}
	if c.LogBackend != logging.BackendSlog && c.LogBackend != logging.BackendZap {
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.LogBackend))
	}
	if c.EndpointAddrGRPC == "" && c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("at least one of grpc or http address must be set"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, then .env and the environment,
// then an optional JSON file and finally command-line flags. Malformed JSON
// or flags panic; the resulting settings are validated.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv, ".env")
}

func load(args []string, lookup func(string) (string, bool), envFiles ...string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, lookup, envFiles...); err != nil {
		return nil, err
	}
	parseJson(cfg, args)
	parseFlags(cfg, args)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
