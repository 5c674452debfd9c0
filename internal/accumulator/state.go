// Package accumulator builds the calculator display keystroke by keystroke.
//
// State is a value: every operation returns the next State and never mutates
// the receiver. The display is in exactly one of three modes. Composing holds
// user input, ResultShown holds a just-computed value and ErrorShown holds
// the "Error" sentinel, which only Clear leaves.
package accumulator

import (
	"strings"
	"unicode/utf8"

	"scicalc/internal/evaluator"
	"scicalc/internal/history"
)

// Mode is the display mode.
type Mode int

const (
	Composing Mode = iota
	ResultShown
	ErrorShown
)

func (m Mode) String() string {
	switch m {
	case Composing:
		return "composing"
	case ResultShown:
		return "result"
	case ErrorShown:
		return "error"
	}
	return "unknown"
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{Composing, ResultShown, ErrorShown} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

const (
	emptyBuffer = "0"

	// binaryOperators continue a displayed result instead of replacing it.
	binaryOperators = "+−×÷^"
	// segmentDelimiters split the buffer into numeric segments for the
	// decimal point rule.
	segmentDelimiters = "+−×÷^()"
	// operandBoundaries mark where the trailing operand starts for sign toggling.
	operandBoundaries = "+−×÷^("
)

// State is one calculator surface: display buffer, mode, angle mode and the
// history ledger.
type State struct {
	Buffer  string
	Mode    Mode
	Angle   evaluator.AngleMode
	History history.Ledger
}

// New returns a cleared calculator using the given angle mode.
func New(angle evaluator.AngleMode) State {
	if angle == "" {
		angle = evaluator.Degrees
	}
	return State{Buffer: emptyBuffer, Mode: Composing, Angle: angle}
}

// Restore rebuilds a state from persisted fields, enforcing the mode
// invariants: an "Error" buffer is always ErrorShown and an empty buffer
// collapses to "0".
func Restore(buffer string, mode Mode, angle evaluator.AngleMode, ledger history.Ledger) State {
	s := New(angle)
	s.History = ledger
	switch {
	case buffer == evaluator.ErrorDisplay || mode == ErrorShown:
		s.Buffer, s.Mode = evaluator.ErrorDisplay, ErrorShown
	case buffer == "":
		s.Buffer, s.Mode = emptyBuffer, Composing
	default:
		s.Buffer, s.Mode = buffer, mode
	}
	return s
}

func (s State) compose(buffer string) State {
	if buffer == "" {
		buffer = emptyBuffer
	}
	s.Buffer = buffer
	s.Mode = Composing
	return s
}

// appendOrReplace implements the shared rule for tokens and functions: a
// displayed result is replaced unless tok continues it with a binary
// operator, and a bare "0" is replaced rather than prefixed.
func (s State) appendOrReplace(tok string, continuesResult bool) State {
	if s.Mode == ResultShown && !continuesResult {
		return s.compose(tok)
	}
	if s.Buffer == emptyBuffer {
		return s.compose(tok)
	}
	return s.compose(s.Buffer + tok)
}

// AppendToken appends a digit, operator, parenthesis or constant glyph.
func (s State) AppendToken(tok string) State {
	if s.Mode == ErrorShown || tok == "" {
		return s
	}
	return s.appendOrReplace(tok, isBinaryOperator(tok))
}

// AppendFunction appends name followed by an opening parenthesis.
func (s State) AppendFunction(name string) State {
	if s.Mode == ErrorShown || name == "" {
		return s
	}
	return s.appendOrReplace(name+"(", false)
}

// AppendDecimalPoint adds a decimal point to the number being typed, or
// "0." when no number has been started yet.
func (s State) AppendDecimalPoint() State {
	switch s.Mode {
	case ErrorShown:
		return s
	case ResultShown:
		return s.compose("0.")
	}

	segment := trailingSegment(s.Buffer, segmentDelimiters)
	switch {
	case segment != "" && !strings.Contains(segment, "."):
		return s.compose(s.Buffer + ".")
	case segment == "" && s.Buffer != "" && !strings.HasSuffix(s.Buffer, "("):
		return s.compose(s.Buffer + "0.")
	}
	return s
}

// ToggleSign negates the whole displayed result, or only the trailing
// operand while composing.
func (s State) ToggleSign() State {
	switch s.Mode {
	case ErrorShown:
		return s
	case ResultShown:
		if s.Buffer == emptyBuffer {
			return s.compose(s.Buffer)
		}
		return s.compose(toggleLeadingMinus(s.Buffer))
	}

	operand := trailingOperand(s.Buffer)
	if operand == "" {
		return s
	}
	prefix := s.Buffer[:len(s.Buffer)-len(operand)]
	return s.compose(prefix + toggleLeadingMinus(operand))
}

// Square wraps the whole buffer as "(buffer)^2".
func (s State) Square() State {
	if s.Mode == ErrorShown {
		return s
	}
	return s.compose("(" + s.Buffer + ")^2")
}

// Backspace removes the last character. On a displayed result it clears.
func (s State) Backspace() State {
	switch s.Mode {
	case ErrorShown:
		return s
	case ResultShown:
		return s.Clear()
	}
	_, size := utf8.DecodeLastRuneInString(s.Buffer)
	return s.compose(s.Buffer[:len(s.Buffer)-size])
}

// Clear resets the display to "0". It is the only way out of ErrorShown.
// History and angle mode are kept.
func (s State) Clear() State {
	return s.compose(emptyBuffer)
}

// Equals evaluates the buffer. It reports false and leaves the state alone
// unless the calculator is composing. A successful evaluation is recorded in
// the history and shown as a result; a failure shows "Error".
func (s State) Equals() (State, evaluator.Outcome, bool) {
	if s.Mode != Composing {
		return s, evaluator.Outcome{}, false
	}
	out := evaluator.Evaluate(s.Buffer, s.Angle)
	if !out.OK {
		s.Buffer, s.Mode = evaluator.ErrorDisplay, ErrorShown
		return s, out, true
	}
	s.History = history.Record(s.History, s.Buffer, out.Display)
	s.Buffer, s.Mode = out.Display, ResultShown
	return s, out, true
}

// Submit replaces the buffer with a complete expression and evaluates it.
// It works from any mode, including ErrorShown.
func (s State) Submit(expression string) (State, evaluator.Outcome) {
	next, out, _ := s.compose(strings.TrimSpace(expression)).Equals()
	return next, out
}

// SelectHistory shows the result of history entry index as if it had just
// been computed.
func (s State) SelectHistory(index int) (State, bool) {
	if s.Mode == ErrorShown {
		return s, false
	}
	result, ok := history.SelectEntry(s.History, index)
	if !ok {
		return s, false
	}
	s.Buffer, s.Mode = result, ResultShown
	return s, true
}

// ClearHistory empties the history ledger.
func (s State) ClearHistory() State {
	s.History = s.History.Clear()
	return s
}

// SetAngle switches the angle mode used by the next evaluation.
func (s State) SetAngle(mode evaluator.AngleMode) State {
	s.Angle = mode
	return s
}

// ToggleAngle flips between degrees and radians.
func (s State) ToggleAngle() State {
	return s.SetAngle(s.Angle.Toggle())
}

func isBinaryOperator(tok string) bool {
	return utf8.RuneCountInString(tok) == 1 && strings.Contains(binaryOperators, tok)
}

// trailingSegment returns the part of buffer after the last rune in
// delimiters, or the whole buffer if there is none.
func trailingSegment(buffer, delimiters string) string {
	i := strings.LastIndexAny(buffer, delimiters)
	if i < 0 {
		return buffer
	}
	_, size := utf8.DecodeRuneInString(buffer[i:])
	return buffer[i+size:]
}

// trailingOperand is the trailing segment after the last operand boundary,
// where the "+" of an exponent such as "1e+21" belongs to the number.
func trailingOperand(buffer string) string {
	end := len(buffer)
	for {
		i := strings.LastIndexAny(buffer[:end], operandBoundaries)
		if i < 0 {
			return buffer
		}
		if !isExponentSign(buffer, i) {
			_, size := utf8.DecodeRuneInString(buffer[i:])
			return buffer[i+size:]
		}
		end = i
	}
}

func isExponentSign(buffer string, i int) bool {
	if buffer[i] != '+' || i < 2 {
		return false
	}
	if c := buffer[i-1]; c != 'e' && c != 'E' {
		return false
	}
	c := buffer[i-2]
	return c >= '0' && c <= '9' || c == '.'
}

func toggleLeadingMinus(s string) string {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return rest
	}
	return "-" + s
}
