package accumulator

import (
	"testing"

	"scicalc/internal/evaluator"
	"scicalc/internal/history"
)

func check(t *testing.T, s State, buffer string, mode Mode) {
	t.Helper()
	if s.Buffer != buffer || s.Mode != mode {
		t.Fatalf("wrong state\n  got: %q (%s)\n want: %q (%s)", s.Buffer, s.Mode, buffer, mode)
	}
}

func typeTokens(s State, tokens ...string) State {
	for _, tok := range tokens {
		s = s.AppendToken(tok)
	}
	return s
}

func equals(t *testing.T, s State) State {
	t.Helper()
	next, _, ran := s.Equals()
	if !ran {
		t.Fatalf("expected equals to run from %q (%s)", s.Buffer, s.Mode)
	}
	return next
}

func TestNewState(t *testing.T) {
	s := New("")
	check(t, s, "0", Composing)
	if s.Angle != evaluator.Degrees {
		t.Fatalf("expected default angle %q, got %q", evaluator.Degrees, s.Angle)
	}
}

func TestAppendTokenReplacesZero(t *testing.T) {
	s := typeTokens(New(evaluator.Degrees), "7", "+", "0", "5")
	check(t, s, "7+05", Composing)

	s = New(evaluator.Degrees).AppendToken("+")
	check(t, s, "+", Composing)
}

func TestAppendTokenAfterResult(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "2", "+", "2"))
	check(t, s, "4", ResultShown)

	// An operator continues the result.
	cont := s.AppendToken("×")
	check(t, cont, "4×", Composing)

	// Anything else starts over.
	fresh := s.AppendToken("9")
	check(t, fresh, "9", Composing)

	paren := s.AppendToken("(")
	check(t, paren, "(", Composing)
}

func TestAppendFunction(t *testing.T) {
	s := New(evaluator.Degrees).AppendFunction("sin")
	check(t, s, "sin(", Composing)

	s = typeTokens(s, "3", "0")
	s = s.AppendToken("+").AppendFunction("√")
	check(t, s, "sin(30+√(", Composing)

	result := equals(t, typeTokens(New(evaluator.Degrees), "9"))
	check(t, result.AppendFunction("log"), "log(", Composing)
}

func TestAppendDecimalPoint(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		want   string
	}{
		{name: "number without dot", buffer: "5", want: "5."},
		{name: "dot already present", buffer: "5.", want: "5."},
		{name: "dot in trailing segment", buffer: "1+2.5", want: "1+2.5"},
		{name: "dot only in earlier segment", buffer: "1.5+2", want: "1.5+2."},
		{name: "after operator", buffer: "5+", want: "5+0."},
		{name: "after unicode operator", buffer: "5×", want: "5×0."},
		{name: "after open paren", buffer: "sin(", want: "sin("},
		{name: "lone open paren", buffer: "(", want: "("},
		{name: "zero", buffer: "0", want: "0."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := State{Buffer: tc.buffer, Mode: Composing, Angle: evaluator.Degrees}
			check(t, s.AppendDecimalPoint(), tc.want, Composing)
		})
	}
}

func TestAppendDecimalPointAfterResult(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "8"))
	check(t, s.AppendDecimalPoint(), "0.", Composing)
}

func TestToggleSignComposing(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		want   string
	}{
		{name: "whole number", buffer: "5", want: "-5"},
		{name: "negative number", buffer: "-5", want: "5"},
		{name: "trailing operand only", buffer: "5+3", want: "5+-3"},
		{name: "back again", buffer: "5+-3", want: "5+3"},
		{name: "after unicode operator", buffer: "12×4.5", want: "12×-4.5"},
		{name: "inside function", buffer: "sin(30", want: "sin(-30"},
		{name: "ends in operator", buffer: "5+", want: "5+"},
		{name: "ends in open paren", buffer: "(", want: "("},
		{name: "exponent form", buffer: "1e+21", want: "-1e+21"},
		{name: "exponent after operator", buffer: "3×2.5e+30", want: "3×-2.5e+30"},
		{name: "constant e then plus", buffer: "e+2", want: "e+-2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := State{Buffer: tc.buffer, Mode: Composing, Angle: evaluator.Degrees}
			check(t, s.ToggleSign(), tc.want, Composing)
		})
	}
}

func TestToggleSignedOperandEvaluates(t *testing.T) {
	s := typeTokens(New(evaluator.Degrees), "5", "+", "3").ToggleSign()
	s = equals(t, s)
	check(t, s, "2", ResultShown)

	big := State{Buffer: "2+1e+21", Mode: Composing, Angle: evaluator.Degrees}.ToggleSign()
	check(t, big, "2+-1e+21", Composing)
	check(t, equals(t, big), "-1e+21", ResultShown)
}

func TestToggleSignResult(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "2", "+", "2"))

	neg := s.ToggleSign()
	check(t, neg, "-4", Composing)
	check(t, neg.ToggleSign(), "4", Composing)

	// A toggled result is fresh input: digits append.
	check(t, neg.AppendToken("1"), "-41", Composing)

	zero := equals(t, typeTokens(New(evaluator.Degrees), "5", "−", "5"))
	check(t, zero, "0", ResultShown)
	check(t, zero.ToggleSign(), "0", Composing)
}

func TestSquare(t *testing.T) {
	s := typeTokens(New(evaluator.Degrees), "5", "+", "3").Square()
	check(t, s, "(5+3)^2", Composing)
	check(t, equals(t, s), "64", ResultShown)

	result := equals(t, typeTokens(New(evaluator.Degrees), "3"))
	check(t, result.Square(), "(3)^2", Composing)
}

func TestBackspace(t *testing.T) {
	s := typeTokens(New(evaluator.Degrees), "1", "2", "×")
	s = s.Backspace()
	check(t, s, "12", Composing)
	s = s.Backspace().Backspace()
	check(t, s, "0", Composing)
	check(t, s.Backspace(), "0", Composing)

	result := equals(t, typeTokens(New(evaluator.Degrees), "4", "2"))
	check(t, result.Backspace(), "0", Composing)
}

func TestEqualsRecordsHistory(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "2", "π"))
	check(t, s, "6.28318530717959", ResultShown)

	head, ok := s.History.Head()
	if !ok || head.String() != "2π = 6.28318530717959" {
		t.Fatalf("unexpected history head %q", head.String())
	}

	// Equals on a displayed result does nothing.
	again, _, ran := s.Equals()
	if ran {
		t.Fatal("expected equals on a result to be ignored")
	}
	if again.History.Len() != 1 {
		t.Fatalf("expected 1 history entry, got %d", again.History.Len())
	}
}

func TestEqualsUsesAngleMode(t *testing.T) {
	s := New(evaluator.Degrees).AppendFunction("sin")
	s = typeTokens(s, "3", "0")

	check(t, equals(t, s), "0.5", ResultShown)

	rad := equals(t, s.ToggleAngle())
	if rad.Buffer == "0.5" {
		t.Fatal("expected radian evaluation to differ from degree evaluation")
	}
}

func TestErrorStateIsAbsorbing(t *testing.T) {
	s := typeTokens(New(evaluator.Degrees), "5", "÷", "0")
	s, out, ran := s.Equals()
	if !ran || out.OK {
		t.Fatal("expected a failed evaluation")
	}
	if out.Reason != evaluator.ReasonNonFiniteResult {
		t.Fatalf("expected non-finite reason, got %s", out.Reason)
	}
	check(t, s, "Error", ErrorShown)

	check(t, s.AppendToken("7"), "Error", ErrorShown)
	check(t, s.AppendFunction("sin"), "Error", ErrorShown)
	check(t, s.AppendDecimalPoint(), "Error", ErrorShown)
	check(t, s.ToggleSign(), "Error", ErrorShown)
	check(t, s.Square(), "Error", ErrorShown)
	check(t, s.Backspace(), "Error", ErrorShown)
	if _, _, ran := s.Equals(); ran {
		t.Fatal("expected equals to be ignored in error state")
	}
	if s.History.Len() != 0 {
		t.Fatalf("expected failed evaluation to stay out of history, got %d entries", s.History.Len())
	}

	check(t, s.Clear(), "0", Composing)
}

func TestSelectHistory(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "1", "+", "1"))
	s = equals(t, typeTokens(s, "×", "3"))
	check(t, s, "6", ResultShown)

	selected, ok := s.Clear().SelectHistory(1)
	if !ok {
		t.Fatal("expected entry 1 to exist")
	}
	check(t, selected, "2", ResultShown)

	// A selected entry behaves like a computed result.
	check(t, selected.AppendToken("5"), "5", Composing)
	check(t, selected.AppendToken("+"), "2+", Composing)

	if _, ok := s.SelectHistory(5); ok {
		t.Fatal("expected out of range selection to fail")
	}
}

func TestClearHistoryKeepsDisplay(t *testing.T) {
	s := equals(t, typeTokens(New(evaluator.Degrees), "8"))
	cleared := s.ClearHistory()

	if cleared.History.Len() != 0 {
		t.Fatalf("expected empty history, got %d", cleared.History.Len())
	}
	check(t, cleared, "8", ResultShown)
}

func TestSubmit(t *testing.T) {
	s, out := New(evaluator.Degrees).Submit(" (1+2 ")
	if !out.OK {
		t.Fatalf("expected success, got %v", out.Err())
	}
	check(t, s, "3", ResultShown)

	s, out = s.Submit("1+")
	if !out.OK || s.Buffer != "1" {
		t.Fatalf("expected %q, got %q (%v)", "1", s.Buffer, out.Err())
	}

	s, _ = s.Submit("(")
	check(t, s, "Error", ErrorShown)

	s, out = s.Submit("2×3")
	if !out.OK {
		t.Fatalf("expected submit to recover from error, got %v", out.Err())
	}
	check(t, s, "6", ResultShown)
}

func TestRestore(t *testing.T) {
	ledger := history.Record(history.Ledger{}, "1+1", "2")

	s := Restore("Error", Composing, evaluator.Radians, ledger)
	check(t, s, "Error", ErrorShown)
	if s.Angle != evaluator.Radians || s.History.Len() != 1 {
		t.Fatalf("expected angle and history to be restored, got %+v", s)
	}

	check(t, Restore("", ResultShown, evaluator.Degrees, ledger), "0", Composing)
	check(t, Restore("12", ResultShown, evaluator.Degrees, ledger), "12", ResultShown)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Composing, ResultShown, ErrorShown} {
		got, ok := ParseMode(m.String())
		if !ok || got != m {
			t.Fatalf("ParseMode(%q): expected %s, got %s", m.String(), m, got)
		}
	}
	if _, ok := ParseMode("bogus"); ok {
		t.Fatal("expected unknown mode to fail")
	}
}
