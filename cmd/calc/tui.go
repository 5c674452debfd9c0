package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"scicalc/internal/accumulator"
)

var (
	stTitle    = tcell.StyleDefault.Bold(true)
	stDisplay  = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	stGray     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x80, 0x80, 0x80))
	stErr      = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xFF, 0x00, 0x00))
	stSelected = tcell.StyleDefault.Reverse(true)
)

var keypadHelp = []string{
	"digits . + - * / ^ ( )     Enter or = evaluates, Backspace deletes, Esc clears",
	"s sin  o cos  t tan  l log  n ln  r √  p π  e e  q x²  _ ±  a deg/rad",
	"Up/Down pick history, Tab uses it, Ctrl-L clears history, Ctrl-Q quits",
}

// keypad is the full-screen front-end: a display line, a status line and
// the history pane.
type keypad struct {
	ctx     context.Context
	surface *surface
	cursor  int
	status  string
	failed  bool
}

func runTUI(ctx context.Context, s *surface) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	k := &keypad{ctx: ctx, surface: s}
	for {
		k.draw(screen)
		screen.Show()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if k.handleKey(ev) {
				return nil
			}
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (k *keypad) handleKey(ev *tcell.EventKey) bool {
	k.status, k.failed = "", false

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return true
	case tcell.KeyUp:
		if k.cursor > 0 {
			k.cursor--
		}
		return false
	case tcell.KeyDown:
		if k.cursor < k.surface.state.History.Len()-1 {
			k.cursor++
		}
		return false
	case tcell.KeyTab:
		k.apply(accumulator.Event{Type: accumulator.EventSelect, Value: fmt.Sprint(k.cursor)})
		return false
	case tcell.KeyCtrlL:
		k.apply(accumulator.Event{Type: accumulator.EventClearHistory})
		k.cursor = 0
		return false
	case tcell.KeyEnter:
		return k.key("Enter")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return k.key("Backspace")
	case tcell.KeyEsc:
		return k.key("Escape")
	case tcell.KeyRune:
		return k.key(string(ev.Rune()))
	}
	return false
}

func (k *keypad) key(name string) bool {
	ev, ok := accumulator.EventForKey(name)
	if !ok {
		k.status, k.failed = fmt.Sprintf("no key bound to %q", name), true
		return false
	}
	k.apply(ev)
	return false
}

func (k *keypad) apply(ev accumulator.Event) {
	out, err := k.surface.apply(k.ctx, ev)
	if err != nil {
		k.status, k.failed = err.Error(), true
		return
	}
	if out != nil && !out.OK {
		k.status, k.failed = formatOutcome(*out), true
	}
	if n := k.surface.state.History.Len(); k.cursor >= n {
		k.cursor = max(n-1, 0)
	}
}

func (k *keypad) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()
	st := k.surface.state

	printAt(screen, 0, 0, "scicalc", stTitle)
	angle := string(st.Angle)
	printAt(screen, w-utf8.RuneCountInString(angle), 0, angle, stGray)

	display := st.Buffer
	style := stDisplay
	if st.Mode == accumulator.ErrorShown {
		style = stErr
	}
	printAt(screen, w-utf8.RuneCountInString(display), 2, display, style)

	if k.status != "" {
		style := stGray
		if k.failed {
			style = stErr
		}
		printAt(screen, 0, 3, k.status, style)
	}

	for i, line := range keypadHelp {
		printAt(screen, 0, 5+i, line, stGray)
	}

	top := 6 + len(keypadHelp)
	printAt(screen, 0, top, "History", stTitle)
	for i, line := range st.History.Lines() {
		y := top + 1 + i
		if y >= h {
			break
		}
		style := tcell.StyleDefault
		if i == k.cursor {
			style = stSelected
		}
		printAt(screen, 0, y, line, style)
	}
}

func printAt(screen tcell.Screen, x, y int, msg string, st tcell.Style) int {
	if x < 0 {
		x = 0
	}
	i := 0
	for _, c := range msg {
		screen.SetContent(x+i, y, c, nil, st)
		i++
	}
	return i
}
