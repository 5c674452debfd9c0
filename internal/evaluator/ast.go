package evaluator

import (
	"errors"
	"math"
	"strconv"
)

// Node is a parsed expression.
type Node interface {
	// Eval computes the node's value. Domain errors surface as NaN or ±Inf.
	Eval() float64
	// String renders the node using calculator glyphs.
	String() string
}

type numberNode struct {
	value float64
	text  string
}

func newNumber(t token) (Node, error) {
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		// Out-of-range literals become ±Inf and fail later as non-finite.
		if !errors.Is(err, strconv.ErrRange) {
			return nil, syntaxErrorf(t.pos, "invalid number %q", t.text)
		}
	}
	return &numberNode{value: v, text: t.text}, nil
}

func (n *numberNode) Eval() float64  { return n.value }
func (n *numberNode) String() string { return n.text }

type constNode struct {
	name string
}

func (n *constNode) Eval() float64 {
	if n.name == "e" {
		return math.E
	}
	return math.Pi
}

func (n *constNode) String() string { return n.name }

type unaryNode struct {
	op tokenKind
	x  Node
}

func (n *unaryNode) Eval() float64 {
	if n.op == tokSub {
		return -n.x.Eval()
	}
	return n.x.Eval()
}

func (n *unaryNode) String() string {
	return n.op.String() + n.x.String()
}

type binaryNode struct {
	op   tokenKind
	x, y Node
}

func (n *binaryNode) Eval() float64 {
	x, y := n.x.Eval(), n.y.Eval()
	switch n.op {
	case tokAdd:
		return x + y
	case tokSub:
		return x - y
	case tokMul:
		return x * y
	case tokDiv:
		return x / y
	case tokPow:
		return math.Pow(x, y)
	}
	return math.NaN()
}

func (n *binaryNode) String() string {
	return n.x.String() + n.op.String() + n.y.String()
}

type parenNode struct {
	x Node
}

func (n *parenNode) Eval() float64  { return n.x.Eval() }
func (n *parenNode) String() string { return "(" + n.x.String() + ")" }

type callNode struct {
	fn  string
	arg Node
}

func (n *callNode) Eval() float64 {
	x := n.arg.Eval()
	switch n.fn {
	case "sin":
		return math.Sin(x)
	case "cos":
		return math.Cos(x)
	case "tan":
		return math.Tan(x)
	case "ln":
		return math.Log(x)
	case "log":
		return math.Log10(x)
	case "√":
		return math.Sqrt(x)
	}
	return math.NaN()
}

func (n *callNode) String() string {
	return n.fn + "(" + n.arg.String() + ")"
}

func isTrig(fn string) bool {
	switch fn {
	case "sin", "cos", "tan":
		return true
	}
	return false
}

// degreesToRadians is the π/180 factor applied to trig arguments in degree mode.
var degreesToRadians Node = &parenNode{x: &binaryNode{
	op: tokDiv,
	x:  &constNode{name: "π"},
	y:  &numberNode{value: 180, text: "180"},
}}

// resolveAngles rewrites every trig call so that, in degree mode, its whole
// argument is scaled by π/180 before the function is applied.
func resolveAngles(n Node, mode AngleMode) Node {
	switch n := n.(type) {
	case *unaryNode:
		return &unaryNode{op: n.op, x: resolveAngles(n.x, mode)}
	case *binaryNode:
		return &binaryNode{op: n.op, x: resolveAngles(n.x, mode), y: resolveAngles(n.y, mode)}
	case *parenNode:
		return &parenNode{x: resolveAngles(n.x, mode)}
	case *callNode:
		arg := resolveAngles(n.arg, mode)
		if mode == Degrees && isTrig(n.fn) {
			arg = &binaryNode{op: tokMul, x: degreesToRadians, y: &parenNode{x: arg}}
		}
		return &callNode{fn: n.fn, arg: arg}
	}
	return n
}

// walk calls fn for n and each of its descendants, depth first.
func walk(n Node, fn func(Node)) {
	fn(n)
	switch n := n.(type) {
	case *unaryNode:
		walk(n.x, fn)
	case *binaryNode:
		walk(n.x, fn)
		walk(n.y, fn)
	case *parenNode:
		walk(n.x, fn)
	case *callNode:
		walk(n.arg, fn)
	}
}

// Functions lists the function names used in n, in order of appearance.
func Functions(n Node) []string {
	var names []string
	walk(n, func(n Node) {
		if c, ok := n.(*callNode); ok {
			names = append(names, c.fn)
		}
	})
	return names
}

// Depth reports the deepest parenthesis or call nesting in n.
func Depth(n Node) int {
	switch n := n.(type) {
	case *unaryNode:
		return Depth(n.x)
	case *binaryNode:
		return max(Depth(n.x), Depth(n.y))
	case *parenNode:
		return Depth(n.x) + 1
	case *callNode:
		return Depth(n.arg) + 1
	}
	return 0
}
