package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

// parseFlags applies -a (server address), -s (session database path) and
// -t (request timeout in seconds). Other arguments are ignored so that
// subcommands can share the command line.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the user service gRPC endpoint")
	fs.StringVar(&cfg.SessionDB, "s", cfg.SessionDB, "path to the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
