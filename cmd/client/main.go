package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/userservice/internal/client/cli"
	"github.com/dmitrijs2005/userservice/internal/client/config"
)

// flagsWithValue lists the flags whose next argument is their value.
var flagsWithValue = map[string]bool{"-a": true, "-s": true, "-t": true, "-c": true, "-config": true}

// commandArgs drops flags (and their values) and returns what remains.
func commandArgs(args []string) []string {
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if flagsWithValue[arg] {
				i++
			}
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, commandArgs(os.Args[1:])); err != nil {
		os.Exit(1)
	}
}
