// Package evaluator turns calculator display strings such as "2(3+4)" or
// "sin(30)" into numbers. Input is tokenized and parsed into an AST; nothing
// is ever executed dynamically.
package evaluator

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrorDisplay is what the calculator shows for every failed evaluation.
const ErrorDisplay = "Error"

var (
	ErrMalformedExpression = errors.New("malformed expression")
	ErrNonFiniteResult     = errors.New("non-finite result")
	ErrUnknownAngleMode    = errors.New("unknown angle mode")
)

// AngleMode selects how trig functions interpret their argument.
type AngleMode string

const (
	Degrees AngleMode = "deg"
	Radians AngleMode = "rad"
)

// ParseAngleMode accepts "deg" or "rad" in any case. An empty string yields
// Degrees.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Degrees):
		return Degrees, nil
	case string(Radians):
		return Radians, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAngleMode, s)
}

// Toggle returns the other angle mode.
func (m AngleMode) Toggle() AngleMode {
	if m == Radians {
		return Degrees
	}
	return Radians
}

// Reason classifies a failed evaluation.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMalformedExpression
	ReasonNonFiniteResult
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMalformedExpression:
		return "malformed_expression"
	case ReasonNonFiniteResult:
		return "non_finite_result"
	}
	return "unknown"
}

// Outcome is the result of Evaluate. On success Display holds the formatted
// value; on failure it holds ErrorDisplay and Reason says why.
type Outcome struct {
	OK      bool
	Value   float64
	Display string
	Reason  Reason

	err error
}

// Err returns nil for a successful outcome, otherwise an error wrapping
// ErrMalformedExpression or ErrNonFiniteResult.
func (o Outcome) Err() error {
	return o.err
}

func success(v float64, display string) Outcome {
	return Outcome{OK: true, Value: v, Display: display}
}

func malformed(err error) Outcome {
	return Outcome{
		Display: ErrorDisplay,
		Reason:  ReasonMalformedExpression,
		err:     fmt.Errorf("%w: %v", ErrMalformedExpression, err),
	}
}

func nonFinite(v float64) Outcome {
	return Outcome{
		Value:   v,
		Display: ErrorDisplay,
		Reason:  ReasonNonFiniteResult,
		err:     fmt.Errorf("%w: %v", ErrNonFiniteResult, v),
	}
}

// Evaluate computes expression in the given angle mode. It never panics:
// every problem is reported through the returned Outcome.
func Evaluate(expression string, mode AngleMode) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = malformed(fmt.Errorf("internal error: %v", r))
		}
	}()

	n, err := Parse(expression, mode)
	if err != nil {
		return malformed(err)
	}
	return classify(n.Eval())
}

func classify(v float64) Outcome {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nonFinite(v)
	}
	display, ok := FormatResult(v)
	if !ok {
		return nonFinite(v)
	}
	return success(v, display)
}
