package evaluator

import "fmt"

// Display glyphs produced by the calculator keypad.
const (
	GlyphAdd      = '+'
	GlyphSubtract = '−' // U+2212
	GlyphMultiply = '×' // U+00D7
	GlyphDivide   = '÷' // U+00F7
	GlyphPower    = '^'
	GlyphPi       = 'π'
	GlyphSqrt     = '√'
	GlyphEuler    = 'e'
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokConst
	tokFunc
	tokAdd
	tokSub
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokNumber:
		return "number"
	case tokConst:
		return "constant"
	case tokFunc:
		return "function"
	case tokAdd:
		return "+"
	case tokSub:
		return "−"
	case tokMul:
		return "×"
	case tokDiv:
		return "÷"
	case tokPow:
		return "^"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	}
	return "unknown"
}

// token is a single lexeme. text keeps the literal as typed so that
// implicit multiplication can look at the last character of a number.
type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokNumber, tokConst, tokFunc:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return t.kind.String()
}

// endsInDigit reports whether a number literal's last character is a digit.
func (t token) endsInDigit() bool {
	if t.kind != tokNumber || t.text == "" {
		return false
	}
	c := t.text[len(t.text)-1]
	return c >= '0' && c <= '9'
}
