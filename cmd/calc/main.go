// Command calc is a terminal scientific calculator. It runs as a line editor
// by default and as a full-screen keypad with --tui.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"scicalc/internal/observability"
	"scicalc/internal/session"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "calc:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags("calc", args, os.Stderr)
	if err != nil {
		return err
	}

	if err := observability.InitCLILogger(opts.verbose); err != nil {
		return err
	}
	defer observability.SyncLogger()

	s := newSurface(opts.angle)
	if opts.dbPath != "" {
		store, err := session.NewSQLite(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		s, err = openSurface(ctx, session.NewManager(store), opts.angle)
		if err != nil {
			return err
		}
		observability.Logger.Debug("resumed session",
			zap.String("db", opts.dbPath),
			zap.Int("history", s.state.History.Len()),
		)
	}

	if opts.tui {
		return runTUI(ctx, s)
	}
	return runREPL(ctx, s)
}
