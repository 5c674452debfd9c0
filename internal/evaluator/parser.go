package evaluator

import (
	"strings"
	"unicode/utf8"
)

// danglingSuffixes are the trailing characters dropped before evaluation, so
// "5+" followed by equals evaluates as "5".
const danglingSuffixes = "+−×÷^."

// maxNesting bounds how deeply parentheses, calls, signs and exponents may
// nest.
const maxNesting = 1000

// Parse normalizes expression and parses it into an AST. Trig arguments are
// already converted to radians according to mode.
func Parse(expression string, mode AngleMode) (Node, error) {
	tokens, err := lex(trimDangling(expression))
	if err != nil {
		return nil, err
	}
	tokens, err = autoClose(tokens)
	if err != nil {
		return nil, err
	}
	tokens = insertImplicitMultiplication(tokens)

	p := &parser{tokens: tokens}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErrorf(t.pos, "unexpected %s", t)
	}
	return resolveAngles(n, mode), nil
}

func trimDangling(s string) string {
	r, size := utf8.DecodeLastRuneInString(s)
	if size > 0 && strings.ContainsRune(danglingSuffixes, r) {
		return s[:len(s)-size]
	}
	return s
}

// autoClose appends the closing parentheses the user never typed. More
// closing than opening parentheses cannot be repaired.
func autoClose(tokens []token) ([]token, error) {
	depth := 0
	for _, t := range tokens {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		}
	}
	if depth < 0 {
		return nil, syntaxErrorf(tokens[len(tokens)-1].pos, "%d unmatched closing parentheses", -depth)
	}
	if depth == 0 {
		return tokens, nil
	}
	eof := tokens[len(tokens)-1]
	out := make([]token, 0, len(tokens)+depth)
	out = append(out, tokens[:len(tokens)-1]...)
	for i := 0; i < depth; i++ {
		out = append(out, token{kind: tokRParen, text: ")", pos: eof.pos})
	}
	return append(out, eof), nil
}

// insertImplicitMultiplication adds a × for ")(", digit π, ")π" and digit "(".
// Any other adjacency is left alone and rejected by the parser.
func insertImplicitMultiplication(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i, t := range tokens {
		if i > 0 && implicitProduct(tokens[i-1], t) {
			out = append(out, token{kind: tokMul, text: "×", pos: t.pos})
		}
		out = append(out, t)
	}
	return out
}

func implicitProduct(prev, next token) bool {
	pi := next.kind == tokConst && next.text == "π"
	switch {
	case prev.kind == tokRParen && next.kind == tokLParen:
		return true
	case prev.endsInDigit() && pi:
		return true
	case prev.kind == tokRParen && pi:
		return true
	case prev.endsInDigit() && next.kind == tokLParen:
		return true
	}
	return false
}

// parser is a recursive-descent parser over the normalized token stream.
//
//	expr    = term { ("+" | "−") term }
//	term    = unary { ("×" | "÷") unary }
//	unary   = ("+" | "−") unary | power
//	power   = primary [ "^" unary ]
//	primary = number | constant | function "(" expr ")" | "(" expr ")"
type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) error {
	if t := p.next(); t.kind != kind {
		return syntaxErrorf(t.pos, "expected %s, found %s", kind, t)
	}
	return nil
}

func (p *parser) expr() (Node, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokAdd && t.kind != tokSub {
			return x, nil
		}
		p.next()
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = &binaryNode{op: t.kind, x: x, y: y}
	}
}

func (p *parser) term() (Node, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokMul && t.kind != tokDiv {
			return x, nil
		}
		p.next()
		y, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = &binaryNode{op: t.kind, x: x, y: y}
	}
}

// unary is on every recursive path through the grammar, so it is where
// nesting is counted.
func (p *parser) unary() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()

	t := p.peek()
	if p.depth > maxNesting {
		return nil, syntaxErrorf(t.pos, "expression nested deeper than %d levels", maxNesting)
	}
	if t.kind != tokAdd && t.kind != tokSub {
		return p.power()
	}
	p.next()
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &unaryNode{op: t.kind, x: x}, nil
}

// power binds tighter than unary minus, so -2^2 is -(2^2). The exponent
// may itself be signed and is right-associative: 2^3^2 is 2^(3^2).
func (p *parser) power() (Node, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return x, nil
	}
	p.next()
	y, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: tokPow, x: x, y: y}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return newNumber(t)
	case tokConst:
		return &constNode{name: t.text}, nil
	case tokFunc:
		if err := p.expect(tokLParen); err != nil {
			return nil, err
		}
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &callNode{fn: t.text, arg: arg}, nil
	case tokLParen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &parenNode{x: x}, nil
	case tokEOF:
		return nil, syntaxErrorf(t.pos, "unexpected end of expression")
	}
	return nil, syntaxErrorf(t.pos, "unexpected %s", t)
}
