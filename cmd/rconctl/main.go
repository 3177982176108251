// rconctl sends a single command to a Source RCON server and prints the
// response.
//
// Usage: rconctl [flags] [command words...]
//
// The command is the positional words joined with spaces; with no words
// and a non-terminal stdin, the command is read from stdin instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/srcds-tools/rcon"
)

const exitInterrupt = 130

func main() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(exitInterrupt)
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, os.Getenv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cmd, err := commandText(cfg.Args, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := zerolog.Nop()
	if cfg.Verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	client, err := rcon.Dial(rcon.ClientConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
		Logger:   &logger,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	out, err := client.Command(ctx, cmd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return 0
}

// commandText determines the command to send: positional words joined
// with single spaces, or trimmed stdin when no words were given and stdin
// is not an interactive terminal.
func commandText(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if term.IsTerminal(int(stdin.Fd())) {
		return "", errors.New("no command given (pass command words as arguments or pipe them via stdin)")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading command from stdin: %w", err)
	}
	cmd := strings.TrimSpace(string(data))
	if cmd == "" {
		return "", errors.New("no command given")
	}
	return cmd, nil
}
