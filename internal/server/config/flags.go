package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string   gRPC bind address
//	-w string   HTTP bind address
//	-d string   PostgreSQL DSN (empty for in-memory)
//	-s string   JWT signing secret
//	-t int      token lifetime in milliseconds
//	-b int      bcrypt cost
//	-l string   log backend (slog|zap)
//	-v string   log level
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-w", "-d", "-s", "-t", "-b", "-l", "-v"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT signing secret")
	expiration := fs.Int64("t", config.JWTExpiration.Milliseconds(), "token lifetime (in milliseconds)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.JWTExpiration = time.Duration(*expiration) * time.Millisecond
}
