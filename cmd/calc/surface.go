package main

import (
	"context"

	"go.uber.org/zap"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
	"scicalc/internal/observability"
	"scicalc/internal/session"
)

// cliSessionID names the session the terminal front-ends share in --db mode.
const cliSessionID = "cli"

// surface is the calculator the terminal front-ends drive. With a manager
// every event is saved as it happens; otherwise state lives in memory only.
type surface struct {
	state    accumulator.State
	sessions *session.Manager
}

func newSurface(angle evaluator.AngleMode) *surface {
	return &surface{state: accumulator.New(angle)}
}

// openSurface resumes the persisted CLI session, creating it on first use.
func openSurface(ctx context.Context, m *session.Manager, angle evaluator.AngleMode) (*surface, error) {
	s, err := m.Open(ctx, cliSessionID, angle)
	if err != nil {
		return nil, err
	}
	return &surface{state: s.State, sessions: m}, nil
}

func (s *surface) apply(ctx context.Context, ev accumulator.Event) (*evaluator.Outcome, error) {
	var (
		next accumulator.State
		out  *evaluator.Outcome
		err  error
	)
	if s.sessions != nil {
		var sess *session.Session
		sess, out, err = s.sessions.Step(ctx, cliSessionID, ev)
		if sess != nil {
			next = sess.State
		}
	} else {
		next, out, err = s.state.Apply(ev)
	}
	if err != nil {
		observability.Logger.Debug("event rejected", zap.Stringer("event", ev), zap.Error(err))
		return nil, err
	}

	s.state = next
	observability.Logger.Debug("event applied",
		zap.Stringer("event", ev),
		zap.String("buffer", s.state.Buffer),
		zap.Stringer("mode", s.state.Mode),
	)
	return out, nil
}
