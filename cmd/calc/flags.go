package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"scicalc/internal/evaluator"
)

type options struct {
	angle   evaluator.AngleMode
	dbPath  string
	tui     bool
	verbose bool
}

func parseFlags(name string, args []string, stderr io.Writer) (options, error) {
	var (
		opts  options
		angle string
	)

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&angle, "angle", "a", "deg", "angle mode for trig functions: deg or rad")
	fs.StringVarP(&opts.dbPath, "db", "d", "", "keep the session and its history in this SQLite file")
	fs.BoolVarP(&opts.tui, "tui", "t", false, "start the full-screen keypad instead of the line editor")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every input event to stderr")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [options]\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	mode, err := evaluator.ParseAngleMode(angle)
	if err != nil {
		return options{}, fmt.Errorf("--angle: %w", err)
	}
	opts.angle = mode

	return opts, nil
}
