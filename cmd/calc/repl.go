package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
)

const (
	prompt    = "> "
	escBold   = "\x1b[1m"
	escNormal = "\x1b[0m"
)

const replHelp = `Type an expression and press Enter, e.g. 2(3+4) or sin(30).
A line starting with an operator continues the last result: +1, ×2, ^2.
So does -5 (result minus 5); type 0-5 or (-5) for a new negative number.

  :deg          trig functions take degrees
  :rad          trig functions take radians
  :history      list past calculations, newest first
  :use N        show the result of history entry N
  :clear        forget the history
  :help         show this text
  :quit         leave`

var errQuit = errors.New("quit")

var replCompleter = readline.NewPrefixCompleter(
	readline.PcItem(":deg"),
	readline.PcItem(":rad"),
	readline.PcItem(":history"),
	readline.PcItem(":use"),
	readline.PcItem(":clear"),
	readline.PcItem(":help"),
	readline.PcItem(":quit"),
)

func runREPL(ctx context.Context, s *surface) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          escBold + prompt + escNormal,
		AutoComplete:    replCompleter,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintf(rl.Stdout(), "scicalc (%s). :help for commands.\n", s.state.Angle)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		out, err := handleLine(ctx, s, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		if out != "" {
			fmt.Fprintln(rl.Stdout(), out)
		}
	}
}

// handleLine runs one line of REPL input and returns what to print.
func handleLine(ctx context.Context, s *surface, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if strings.HasPrefix(line, ":") {
		return handleCommand(ctx, s, line)
	}

	expression := line
	if s.state.Mode == accumulator.ResultShown && startsWithOperator(line) {
		expression = s.state.Buffer + line
	}

	out, err := s.apply(ctx, accumulator.Event{Type: accumulator.EventSubmit, Value: expression})
	if err != nil {
		return "", err
	}
	return formatOutcome(*out), nil
}

func handleCommand(ctx context.Context, s *surface, line string) (string, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":deg", ":rad":
		mode := evaluator.AngleMode(strings.TrimPrefix(fields[0], ":"))
		if _, err := s.apply(ctx, accumulator.Event{Type: accumulator.EventAngle, Value: string(mode)}); err != nil {
			return "", err
		}
		return "angle mode: " + string(s.state.Angle), nil
	case ":history":
		lines := s.state.History.Lines()
		if len(lines) == 0 {
			return "(no history)", nil
		}
		var b strings.Builder
		for i, l := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%3d  %s", i, l)
		}
		return b.String(), nil
	case ":use":
		if len(fields) != 2 {
			return "", errors.New("usage: :use N")
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", fmt.Errorf(":use: %q is not a number", fields[1])
		}
		if _, ok := s.state.History.At(index); !ok {
			return "", fmt.Errorf(":use: no history entry %d", index)
		}
		if s.state.Mode == accumulator.ErrorShown {
			if _, err := s.apply(ctx, accumulator.Event{Type: accumulator.EventClear}); err != nil {
				return "", err
			}
		}
		if _, err := s.apply(ctx, accumulator.Event{Type: accumulator.EventSelect, Value: fields[1]}); err != nil {
			return "", err
		}
		return "= " + s.state.Buffer, nil
	case ":clear":
		if _, err := s.apply(ctx, accumulator.Event{Type: accumulator.EventClearHistory}); err != nil {
			return "", err
		}
		return "history cleared", nil
	case ":help":
		return replHelp, nil
	case ":quit", ":q", ":exit":
		return "", errQuit
	}
	return "", fmt.Errorf("unknown command %s (try :help)", fields[0])
}

func formatOutcome(out evaluator.Outcome) string {
	if !out.OK {
		return fmt.Sprintf("%s (%s)", out.Display, strings.ReplaceAll(out.Reason.String(), "_", " "))
	}
	return "= " + out.Display
}

func startsWithOperator(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	switch r {
	case evaluator.GlyphAdd, evaluator.GlyphSubtract, evaluator.GlyphMultiply, evaluator.GlyphDivide, evaluator.GlyphPower,
		'-', '*', '/':
		return true
	}
	return false
}
