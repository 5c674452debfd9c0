package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
	"scicalc/internal/session"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags("calc", nil, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.angle != evaluator.Degrees || opts.dbPath != "" || opts.tui || opts.verbose {
		t.Fatalf("unexpected defaults %+v", opts)
	}

	opts, err = parseFlags("calc", []string{"--angle", "RAD", "-d", "calc.db", "--tui", "-v"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.angle != evaluator.Radians || opts.dbPath != "calc.db" || !opts.tui || !opts.verbose {
		t.Fatalf("unexpected options %+v", opts)
	}

	for _, args := range [][]string{{"--angle", "grad"}, {"extra"}, {"--nope"}} {
		if _, err := parseFlags("calc", args, io.Discard); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
}

func TestHandleLine(t *testing.T) {
	ctx := context.Background()
	s := newSurface(evaluator.Degrees)

	steps := []struct {
		line string
		want string
	}{
		{line: "2(3+4", want: "= 14"},
		{line: "+1", want: "= 15"},
		{line: "×2", want: "= 30"},
		{line: "sin(30)", want: "= 0.5"},
		{line: ":rad", want: "angle mode: rad"},
		{line: "cos(0)", want: "= 1"},
		{line: "1÷0", want: "Error (non finite result)"},
		{line: "   ", want: ""},
		{line: ":history", want: "  0  cos(0) = 1\n  1  sin(30) = 0.5\n  2  15×2 = 30\n  3  14+1 = 15\n  4  2(3+4 = 14"},
		{line: ":use 3", want: "= 15"},
		{line: ":clear", want: "history cleared"},
		{line: ":history", want: "(no history)"},
	}

	for _, step := range steps {
		got, err := handleLine(ctx, s, step.line)
		if err != nil {
			t.Fatalf("%q: %v", step.line, err)
		}
		if got != step.want {
			t.Fatalf("%q: expected %q, got %q", step.line, step.want, got)
		}
	}
}

func TestHandleLineLeadingMinus(t *testing.T) {
	ctx := context.Background()
	s := newSurface(evaluator.Degrees)

	steps := []struct {
		line string
		want string
	}{
		{line: "8", want: "= 8"},
		{line: "-5", want: "= 3"},
		{line: "(-5)", want: "= -5"},
		{line: "0-5", want: "= -5"},
	}
	for _, step := range steps {
		got, err := handleLine(ctx, s, step.line)
		if err != nil {
			t.Fatalf("%q: %v", step.line, err)
		}
		if got != step.want {
			t.Fatalf("%q: expected %q, got %q", step.line, step.want, got)
		}
	}

	help, err := handleLine(ctx, s, ":help")
	if err != nil {
		t.Fatalf(":help: %v", err)
	}
	if !strings.Contains(help, "(-5)") {
		t.Fatalf("expected :help to explain leading minus, got %q", help)
	}
}

func TestHandleLineCommandErrors(t *testing.T) {
	ctx := context.Background()
	s := newSurface(evaluator.Degrees)

	for _, line := range []string{":use", ":use x", ":use 0", ":bogus"} {
		if _, err := handleLine(ctx, s, line); err == nil {
			t.Fatalf("expected %q to fail", line)
		}
	}

	if _, err := handleLine(ctx, s, ":quit"); err != errQuit {
		t.Fatalf("expected errQuit, got %v", err)
	}
}

func TestSurfacePersistsWithDB(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calc.db")

	store, err := session.NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	s, err := openSurface(ctx, session.NewManager(store), evaluator.Radians)
	if err != nil {
		t.Fatalf("openSurface: %v", err)
	}
	if _, err := handleLine(ctx, s, "2^10"); err != nil {
		t.Fatalf("handleLine: %v", err)
	}
	store.Close()

	store, err = session.NewSQLite(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer store.Close()

	s, err = openSurface(ctx, session.NewManager(store), evaluator.Degrees)
	if err != nil {
		t.Fatalf("openSurface: %v", err)
	}
	if s.state.Buffer != "1024" || s.state.Angle != evaluator.Radians {
		t.Fatalf("expected resumed session, got %+v", s.state)
	}
	if lines := s.state.History.Lines(); len(lines) != 1 || lines[0] != "2^10 = 1024" {
		t.Fatalf("unexpected history %v", lines)
	}
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func specialKey(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func displayLine(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	line := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		runes := cells[y*w+x].Runes
		if len(runes) == 0 {
			line = append(line, ' ')
			continue
		}
		line = append(line, runes[0])
	}
	return strings.TrimSpace(string(line))
}

func TestKeypad(t *testing.T) {
	k := &keypad{ctx: context.Background(), surface: newSurface(evaluator.Degrees)}

	for _, r := range "9*9" {
		k.handleKey(runeKey(r))
	}
	k.handleKey(specialKey(tcell.KeyEnter))
	for _, r := range "2^3" {
		k.handleKey(runeKey(r))
	}
	k.handleKey(specialKey(tcell.KeyEnter))

	if got := k.surface.state.Buffer; got != "8" {
		t.Fatalf("expected 8 on the display, got %q", got)
	}

	k.handleKey(specialKey(tcell.KeyDown))
	k.handleKey(specialKey(tcell.KeyDown))
	if k.cursor != 1 {
		t.Fatalf("expected cursor to stop at the oldest entry, got %d", k.cursor)
	}
	k.handleKey(specialKey(tcell.KeyTab))
	if got := k.surface.state.Buffer; got != "81" {
		t.Fatalf("expected selected result 81, got %q", got)
	}

	k.handleKey(runeKey('#'))
	if !k.failed || k.status == "" {
		t.Fatal("expected unbound key to be reported")
	}

	k.handleKey(specialKey(tcell.KeyCtrlL))
	if k.surface.state.History.Len() != 0 || k.cursor != 0 {
		t.Fatalf("expected history cleared, got %d entries", k.surface.state.History.Len())
	}

	if !k.handleKey(specialKey(tcell.KeyCtrlQ)) {
		t.Fatal("expected Ctrl-Q to quit")
	}
}

func TestKeypadDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 20)

	k := &keypad{ctx: context.Background(), surface: newSurface(evaluator.Degrees)}
	for _, r := range "1÷0" {
		k.handleKey(runeKey(r))
	}
	k.handleKey(specialKey(tcell.KeyEnter))

	k.draw(screen)
	screen.Show()

	if got := displayLine(screen, 2); got != evaluator.ErrorDisplay {
		t.Fatalf("expected %q on the display line, got %q", evaluator.ErrorDisplay, got)
	}
	if got := displayLine(screen, 3); got != "Error (non finite result)" {
		t.Fatalf("unexpected status line %q", got)
	}
	if k.surface.state.Mode != accumulator.ErrorShown {
		t.Fatalf("expected error mode, got %s", k.surface.state.Mode)
	}
}
