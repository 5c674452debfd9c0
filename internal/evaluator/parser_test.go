package evaluator

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		expr string
		mode AngleMode
		want string
	}{
		{expr: "2(3+4", mode: Radians, want: "2×(3+4)"},
		{expr: "(1)(2)", mode: Radians, want: "(1)×(2)"},
		{expr: "3π", mode: Radians, want: "3×π"},
		{expr: "5+-3", mode: Radians, want: "5+−3"},
		{expr: "8/2*1-1", mode: Radians, want: "8÷2×1−1"},
		{expr: "sqrt(4)", mode: Radians, want: "√(4)"},
		{expr: "sin(30)", mode: Radians, want: "sin(30)"},
		{expr: "sin(30)", mode: Degrees, want: "sin((π÷180)×(30))"},
		{expr: "cos(sin(1", mode: Degrees, want: "cos((π÷180)×(sin((π÷180)×(1))))"},
		{expr: "log(100)", mode: Degrees, want: "log(100)"},
		{expr: "9×", mode: Degrees, want: "9"},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			n, err := Parse(tc.expr, tc.mode)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.expr, err)
			}
			if got := n.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseReportsPosition(t *testing.T) {
	_, err := Parse("12+#", Degrees)

	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
	if syntaxErr.Pos != 3 {
		t.Fatalf("expected position 3, got %d", syntaxErr.Pos)
	}
}

func TestParseLimitsNesting(t *testing.T) {
	tests := map[string]string{
		"parentheses": strings.Repeat("(", 100_000) + "1",
		"functions":   strings.Repeat("sin(", maxNesting+1) + "1",
		"signs":       strings.Repeat("−", 100_000) + "1",
		"exponents":   strings.Repeat("2^", maxNesting+1) + "2",
	}

	for name, expr := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(expr, Degrees)

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
			}
			if !strings.Contains(syntaxErr.Msg, "nested deeper") {
				t.Fatalf("unexpected message %q", syntaxErr.Msg)
			}

			if out := Evaluate(expr, Degrees); out.OK || out.Reason != ReasonMalformedExpression {
				t.Fatalf("expected malformed outcome, got %+v", out)
			}
		})
	}

	if _, err := Parse(strings.Repeat("(", maxNesting/2)+"1", Radians); err != nil {
		t.Fatalf("moderate nesting rejected: %v", err)
	}
}

func TestLexDoesNotSplitWordsOnE(t *testing.T) {
	tokens, err := lex("e+ln(2e)")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}

	var kinds []tokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
	}
	want := []tokenKind{tokConst, tokAdd, tokFunc, tokLParen, tokNumber, tokConst, tokRParen, tokEOF}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("expected kinds %v, got %v", want, kinds)
	}
}

func TestLexExponentLiteral(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: "1e+21", want: "1e+21"},
		{src: "1.5e-7", want: "1.5e-7"},
		{src: "2E3", want: "2E3"},
		{src: "2e", want: "2"},
		{src: "2e+", want: "2"},
	}

	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			tokens, err := lex(tc.src)
			if err != nil {
				t.Fatalf("lex(%q): %v", tc.src, err)
			}
			if tokens[0].kind != tokNumber || tokens[0].text != tc.want {
				t.Fatalf("expected number %q, got %s", tc.want, tokens[0])
			}
		})
	}
}

func TestFunctionsAndDepth(t *testing.T) {
	n, err := Parse("√(ln((2", Radians)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got, want := Functions(n), []string{"√", "ln"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected functions %v, got %v", want, got)
	}
	if got := Depth(n); got != 3 {
		t.Fatalf("expected depth 3, got %d", got)
	}
}
