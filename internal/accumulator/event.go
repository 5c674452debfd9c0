package accumulator

import (
	"errors"
	"fmt"
	"strconv"

	"scicalc/internal/evaluator"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidEvent = errors.New("invalid event value")
)

// EventType names an input event.
type EventType string

const (
	EventToken        EventType = "token"
	EventFunction     EventType = "function"
	EventDot          EventType = "dot"
	EventSign         EventType = "sign"
	EventSquare       EventType = "square"
	EventBackspace    EventType = "backspace"
	EventClear        EventType = "clear"
	EventEquals       EventType = "equals"
	EventAngle        EventType = "angle"
	EventSelect       EventType = "select"
	EventClearHistory EventType = "clear_history"
	EventKey          EventType = "key"
	EventSubmit       EventType = "submit"
)

// Event is one discrete input. Value carries the token, function name,
// angle mode ("" toggles), history index, keyboard key or expression,
// depending on Type.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value,omitempty"`
}

func (e Event) String() string {
	if e.Value == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s(%s)", e.Type, e.Value)
}

// Apply performs ev. The returned outcome is non-nil only when an
// evaluation actually ran.
func (s State) Apply(ev Event) (State, *evaluator.Outcome, error) {
	switch ev.Type {
	case EventToken:
		return s.AppendToken(ev.Value), nil, nil
	case EventFunction:
		return s.AppendFunction(ev.Value), nil, nil
	case EventDot:
		return s.AppendDecimalPoint(), nil, nil
	case EventSign:
		return s.ToggleSign(), nil, nil
	case EventSquare:
		return s.Square(), nil, nil
	case EventBackspace:
		return s.Backspace(), nil, nil
	case EventClear:
		return s.Clear(), nil, nil
	case EventClearHistory:
		return s.ClearHistory(), nil, nil
	case EventEquals:
		next, out, ran := s.Equals()
		if !ran {
			return next, nil, nil
		}
		return next, &out, nil
	case EventSubmit:
		next, out := s.Submit(ev.Value)
		return next, &out, nil
	case EventAngle:
		if ev.Value == "" {
			return s.ToggleAngle(), nil, nil
		}
		mode, err := evaluator.ParseAngleMode(ev.Value)
		if err != nil {
			return s, nil, err
		}
		return s.SetAngle(mode), nil, nil
	case EventSelect:
		index, err := strconv.Atoi(ev.Value)
		if err != nil {
			return s, nil, fmt.Errorf("%w: history index %q", ErrInvalidEvent, ev.Value)
		}
		next, _ := s.SelectHistory(index)
		return next, nil, nil
	case EventKey:
		mapped, ok := EventForKey(ev.Value)
		if !ok {
			return s, nil, fmt.Errorf("%w: key %q", ErrUnknownEvent, ev.Value)
		}
		return s.Apply(mapped)
	}
	return s, nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}

// ApplyAll performs events in order and collects the outcome of every
// evaluation. It stops at the first invalid event, returning the state
// reached so far.
func (s State) ApplyAll(events []Event) (State, []evaluator.Outcome, error) {
	var outcomes []evaluator.Outcome
	for i, ev := range events {
		next, out, err := s.Apply(ev)
		if err != nil {
			return s, outcomes, fmt.Errorf("event %d: %w", i, err)
		}
		if out != nil {
			outcomes = append(outcomes, *out)
		}
		s = next
	}
	return s, outcomes, nil
}
