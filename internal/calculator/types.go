package calculator

import (
	"time"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
	"scicalc/internal/session"
)

// EvaluateRequest is the JSON body for POST /calculator/evaluate and
// POST /calculator/parse. An empty angle_mode uses the server default.
type EvaluateRequest struct {
	Expression string `json:"expression"`
	AngleMode  string `json:"angle_mode"`
}

// OutcomeView is one evaluation as seen by clients. Result is omitted when
// the evaluation failed.
type OutcomeView struct {
	OK      bool     `json:"ok"`
	Result  *float64 `json:"result,omitempty"`
	Display string   `json:"display"`
	Reason  string   `json:"reason,omitempty"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	AngleMode  string `json:"angle_mode"`
	OutcomeView
}

// ParseResponse is the JSON response for POST /calculator/parse.
type ParseResponse struct {
	Expression string   `json:"expression"`
	AngleMode  string   `json:"angle_mode"`
	Normalized string   `json:"normalized"`
	Functions  []string `json:"functions"`
	Depth      int      `json:"depth"`
}

// CreateSessionRequest is the optional JSON body for POST /calculator/sessions.
type CreateSessionRequest struct {
	AngleMode string `json:"angle_mode"`
}

// HistoryItem is one ledger entry, newest first in SessionView.History.
type HistoryItem struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Line       string `json:"line"`
}

// SessionView is the JSON representation of a calculator session.
type SessionView struct {
	ID        string        `json:"id"`
	Buffer    string        `json:"buffer"`
	Mode      string        `json:"mode"`
	AngleMode string        `json:"angle_mode"`
	History   []HistoryItem `json:"history"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// EventsRequest is the JSON body for POST /calculator/sessions/{id}/events.
type EventsRequest struct {
	Events []accumulator.Event `json:"events"`
}

// EventsResponse carries the session after all events ran, plus the outcome
// of every evaluation they triggered.
type EventsResponse struct {
	Session  SessionView   `json:"session"`
	Outcomes []OutcomeView `json:"outcomes"`
}

func newOutcomeView(out evaluator.Outcome) OutcomeView {
	v := OutcomeView{OK: out.OK, Display: out.Display}
	if out.OK {
		result := out.Value
		v.Result = &result
	} else {
		v.Reason = out.Reason.String()
	}
	return v
}

func newSessionView(s *session.Session) SessionView {
	entries := s.State.History.Entries()
	items := make([]HistoryItem, len(entries))
	for i, e := range entries {
		items[i] = HistoryItem{Expression: e.Expression, Result: e.Result, Line: e.String()}
	}
	return SessionView{
		ID:        s.ID,
		Buffer:    s.State.Buffer,
		Mode:      s.State.Mode.String(),
		AngleMode: string(s.State.Angle),
		History:   items,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
