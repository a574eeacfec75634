package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envGRPCAddress   = "GRPC_ADDRESS"
	envHTTPAddress   = "HTTP_ADDRESS"
	envDatabaseDSN   = "DATABASE_DSN"
	envJWTSecret     = "JWT_SECRET"
	envJWTExpiration = "JWT_EXPIRATION"
	envBcryptCost    = "BCRYPT_COST"
	envLogBackend    = "LOG_BACKEND"
	envLogLevel      = "LOG_LEVEL"
)

// parseEnv overlays values from the environment. Variables from envFiles are
// used only when the process environment does not define them; missing files
// are skipped. JWT_EXPIRATION is in milliseconds.
func parseEnv(config *Config, lookup func(string) (string, bool), envFiles ...string) error {
	fileVars := map[string]string{}
	for _, name := range envFiles {
		vars, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		for k, v := range vars {
			if _, ok := fileVars[k]; !ok {
				fileVars[k] = v
			}
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := get(envGRPCAddress); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := get(envHTTPAddress); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := get(envDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get(envJWTSecret); ok {
		config.JWTSecret = v
	}
	if v, ok := get(envJWTExpiration); ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envJWTExpiration, err)
		}
		config.JWTExpiration = time.Duration(ms) * time.Millisecond
	}
	if v, ok := get(envBcryptCost); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envBcryptCost, err)
		}
		config.BcryptCost = cost
	}
	if v, ok := get(envLogBackend); ok {
		config.LogBackend = v
	}
	if v, ok := get(envLogLevel); ok {
		config.LogLevel = v
	}

	return nil
}

