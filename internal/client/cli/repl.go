package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// executor is the command surface the loop needs; App satisfies it.
type executor interface {
	Exec(ctx context.Context, cmd string) error
}

// runREPL reads commands line by line and dispatches them until EOF or
// "exit". It shares reader with the prompts so that no input is buffered
// away from them. Command errors are already reported by the handlers and do
// not stop the loop.
func runREPL(ctx context.Context, a executor, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "us %s> ", statusFn())

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			fmt.Fprintln(w, "Available commands: register, login, profile, status, logout, ping, exit")
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			if err := a.Exec(ctx, cmd); errors.Is(err, ErrUnknownCommand) {
				fmt.Fprintln(w, "Unknown command:", cmd)
			}
		}

		if err != nil {
			return
		}
	}
}
