package evaluator

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// functions maps every accepted function spelling to its canonical name.
var functions = map[string]string{
	"sin":  "sin",
	"cos":  "cos",
	"tan":  "tan",
	"ln":   "ln",
	"log":  "log",
	"sqrt": "√",
}

// constants maps every accepted constant spelling to its canonical glyph.
var constants = map[string]string{
	"e":  "e",
	"pi": "π",
}

type lexer struct {
	src    string
	pos    int
	tokens []token
}

// lex splits src into tokens. Letters are only ever read as whole words, so
// an "e" inside a function name can never be mistaken for Euler's number.
func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		start := l.pos
		switch {
		case r == utf8.RuneError && size <= 1:
			return nil, syntaxErrorf(start, "invalid UTF-8")
		case unicode.IsSpace(r):
			l.pos += size
		case isDigit(r) || r == '.':
			if err := l.number(); err != nil {
				return nil, err
			}
		case isLetter(r):
			if err := l.word(); err != nil {
				return nil, err
			}
		default:
			kind, text, ok := operator(r)
			if !ok {
				return nil, syntaxErrorf(start, "unexpected character %q", r)
			}
			l.pos += size
			l.emit(kind, text, start)
		}
	}
	l.emit(tokEOF, "", l.pos)
	return l.tokens, nil
}

func (l *lexer) emit(kind tokenKind, text string, pos int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, pos: pos})
}

// number scans a decimal literal: digits with at most one '.', optionally
// followed by an exponent ("1e+21"). A trailing 'e' that is not followed by
// digits is left for the constant scanner.
func (l *lexer) number() error {
	start := l.pos
	digits, dots := 0, 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '.' {
			dots++
			if dots > 1 {
				return syntaxErrorf(l.pos, "second decimal point in number")
			}
		} else if c >= '0' && c <= '9' {
			digits++
		} else {
			break
		}
		l.pos++
	}
	if digits == 0 {
		return syntaxErrorf(start, "decimal point without digits")
	}
	if n := l.exponentLen(); n > 0 {
		l.pos += n
	}
	l.emit(tokNumber, l.src[start:l.pos], start)
	return nil
}

// exponentLen returns the length of an exponent suffix at the current
// position, or 0 when there is none.
func (l *lexer) exponentLen() int {
	i := l.pos
	if i >= len(l.src) || (l.src[i] != 'e' && l.src[i] != 'E') {
		return 0
	}
	i++
	if i < len(l.src) && (l.src[i] == '+' || l.src[i] == '-') {
		i++
	}
	j := i
	for j < len(l.src) && l.src[j] >= '0' && l.src[j] <= '9' {
		j++
	}
	if j == i {
		return 0
	}
	// "2e5x" style words are not exponents either.
	if j < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[j:]); isLetter(r) {
			return 0
		}
	}
	return j - l.pos
}

func (l *lexer) word() error {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isLetter(r) {
			break
		}
		l.pos += size
	}
	w := l.src[start:l.pos]
	if name, ok := functions[w]; ok {
		l.emit(tokFunc, name, start)
		return nil
	}
	if glyph, ok := constants[w]; ok {
		l.emit(tokConst, glyph, start)
		return nil
	}
	return syntaxErrorf(start, "unknown name %q", w)
}

func operator(r rune) (tokenKind, string, bool) {
	switch r {
	case GlyphAdd:
		return tokAdd, "+", true
	case GlyphSubtract, '-':
		return tokSub, "−", true
	case GlyphMultiply, '*':
		return tokMul, "×", true
	case GlyphDivide, '/':
		return tokDiv, "÷", true
	case GlyphPower:
		return tokPow, "^", true
	case '(':
		return tokLParen, "(", true
	case ')':
		return tokRParen, ")", true
	case GlyphPi:
		return tokConst, "π", true
	case GlyphSqrt:
		return tokFunc, "√", true
	}
	return 0, "", false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isLetter accepts ASCII letters only; π and √ are handled as operators.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// SyntaxError describes why an expression could not be tokenized or parsed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("at byte %d: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
