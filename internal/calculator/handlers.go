package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
	"scicalc/internal/handlers"
	"scicalc/internal/observability"
	"scicalc/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var errHistoryEntryNotFound = errors.New("history entry not found")

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// Handler serves the calculator endpoints.
type Handler struct {
	sessions     *session.Manager
	defaultAngle evaluator.AngleMode
}

// NewHandler returns a Handler that keeps sessions in m. Requests that do
// not name an angle mode use defaultAngle.
func NewHandler(m *session.Manager, defaultAngle evaluator.AngleMode) *Handler {
	if defaultAngle == "" {
		defaultAngle = evaluator.Degrees
	}
	return &Handler{sessions: m, defaultAngle: defaultAngle}
}

func (h *Handler) angle(s string) (evaluator.AngleMode, error) {
	if s == "" {
		return h.defaultAngle, nil
	}
	return evaluator.ParseAngleMode(s)
}

// decodeBody reads the JSON request body into v and returns the status to
// reply with when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, err
	}
	return http.StatusBadRequest, err
}

// ---------------------------------------------------------------------------
// Stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate. A failed evaluation is still a
// 200 response with ok=false; only unreadable requests are rejected.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	const opName = "evaluate"

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req EvaluateRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, status, w)
		return
	}

	mode, err := h.angle(req.AngleMode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid angle_mode", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.expression", req.Expression),
		attribute.String("calculator.angle_mode", string(mode)),
	)

	out := evaluate(ctx, span, logger, opName, req.Expression, mode)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression:  req.Expression,
		AngleMode:   string(mode),
		OutcomeView: newOutcomeView(out),
	})
}

// Parse handles POST /calculator/parse and returns the normalized form of
// the expression without evaluating it.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	const opName = "parse"

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.parse")
	defer span.End()

	var req EvaluateRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, status, w)
		return
	}

	mode, err := h.angle(req.AngleMode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid angle_mode", err, http.StatusBadRequest, w)
		return
	}

	n, err := evaluator.Parse(req.Expression, mode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusUnprocessableEntity, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, ParseResponse{
		Expression: req.Expression,
		AngleMode:  string(mode),
		Normalized: n.String(),
		Functions:  evaluator.Functions(n),
		Depth:      evaluator.Depth(n),
	})
}

// evaluate runs one evaluation and records its metrics, span attributes and
// log line.
func evaluate(ctx context.Context, span trace.Span, logger *zap.Logger, opName, expression string, mode evaluator.AngleMode) evaluator.Outcome {
	start := time.Now()
	out := evaluator.Evaluate(expression, mode)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	recordOutcome(ctx, span, logger, opName, expression, out, elapsed)
	return out
}

func recordOutcome(ctx context.Context, span trace.Span, logger *zap.Logger, opName, expression string, out evaluator.Outcome, elapsed float64) {
	attrs := metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.Bool("ok", out.OK),
	)
	evalCounter.Add(ctx, 1, attrs)
	evalHistogram.Record(ctx, elapsed, attrs)

	if !out.OK {
		errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", opName),
			attribute.String("reason", out.Reason.String()),
		))
		span.RecordError(out.Err())
		span.SetStatus(codes.Error, out.Reason.String())

		logger.Warn("evaluation failed",
			zap.String("operation", opName),
			zap.String("expression", expression),
			zap.Stringer("reason", out.Reason),
			zap.Error(out.Err()),
			observability.RequestIDField(ctx),
		)
		return
	}

	resultGauge.Record(ctx, out.Value, metric.WithAttributes(attribute.String("operation", opName)))

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Float64("result", out.Value),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.display", out.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("evaluation completed",
		zap.String("operation", opName),
		zap.String("expression", expression),
		zap.String("display", out.Display),
		observability.RequestIDField(ctx),
		zap.Float64("duration_ms", elapsed),
	)
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions. The body is optional.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	const opName = "session.create"

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	var req CreateSessionRequest
	if status, err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, status, w)
		return
	}

	mode, err := h.angle(req.AngleMode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid angle_mode", err, http.StatusBadRequest, w)
		return
	}

	s, err := h.sessions.Create(ctx, mode)
	if err != nil {
		h.sessionError(ctx, span, logger, opName, err, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", s.ID))
	span.SetStatus(codes.Ok, "")
	logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("angle_mode", string(mode)),
		observability.RequestIDField(ctx),
	)

	handlers.WriteJSON(w, http.StatusCreated, newSessionView(s))
}

// GetSession handles GET /calculator/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.sessionSpan(r, "calculator.session.get")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	s, err := h.sessions.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.sessionError(ctx, span, logger, "session.get", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionView(s))
}

// DeleteSession handles DELETE /calculator/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.sessionSpan(r, "calculator.session.delete")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(ctx, id); err != nil {
		h.sessionError(ctx, span, logger, "session.delete", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("session deleted",
		zap.String("session_id", id),
		observability.RequestIDField(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// ApplyEvents handles POST /calculator/sessions/{id}/events. Events run in
// order, each under its own child span. The batch is all or nothing: when
// one event is invalid the session is left as it was.
func (h *Handler) ApplyEvents(w http.ResponseWriter, r *http.Request) {
	const opName = "session.events"

	ctx, span := h.sessionSpan(r, "calculator.session.events")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	var req EventsRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, status, w)
		return
	}

	if len(req.Events) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "no events provided", fmt.Errorf("events array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("session.events_count", len(req.Events)))

	var outcomes []OutcomeView
	s, err := h.sessions.Update(ctx, chi.URLParam(r, "id"), func(st accumulator.State) (accumulator.State, error) {
		outcomes = outcomes[:0]
		for i, ev := range req.Events {
			next, out, err := applyEvent(ctx, logger, i, ev, st)
			if err != nil {
				span.SetStatus(codes.Error, fmt.Sprintf("failed at event %d", i))
				return st, fmt.Errorf("event %d: %w", i, err)
			}
			if out != nil {
				outcomes = append(outcomes, newOutcomeView(*out))
			}
			st = next
		}
		return st, nil
	})
	if err != nil {
		h.sessionError(ctx, span, logger, opName, err, w)
		return
	}

	span.AddEvent("events.complete", trace.WithAttributes(
		attribute.String("buffer", s.State.Buffer),
		attribute.Int("evaluations", len(outcomes)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("session events applied",
		zap.String("session_id", s.ID),
		zap.Int("events", len(req.Events)),
		zap.String("buffer", s.State.Buffer),
		observability.RequestIDField(ctx),
	)

	if outcomes == nil {
		outcomes = []OutcomeView{}
	}
	handlers.WriteJSON(w, http.StatusOK, EventsResponse{
		Session:  newSessionView(s),
		Outcomes: outcomes,
	})
}

// applyEvent performs one event under a child span.
func applyEvent(ctx context.Context, logger *zap.Logger, i int, ev accumulator.Event, st accumulator.State) (accumulator.State, *evaluator.Outcome, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.session.event.%d.%s", i, ev.Type),
		trace.WithAttributes(
			attribute.Int("session.event.index", i),
			attribute.String("session.event.type", string(ev.Type)),
			attribute.String("session.event.value", ev.Value),
			attribute.String("session.event.input", st.Buffer),
		),
	)
	defer span.End()

	start := time.Now()
	next, out, err := st.Apply(ev)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	eventCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", string(ev.Type))))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return st, nil, err
	}

	if out != nil {
		expression := st.Buffer
		if ev.Type == accumulator.EventSubmit {
			expression = ev.Value
		}
		recordOutcome(ctx, span, logger, "session.equals", expression, *out, elapsed)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.SetAttributes(
		attribute.String("session.event.result", next.Buffer),
		attribute.String("session.mode", next.Mode.String()),
	)

	logger.Debug("session event applied",
		zap.Int("event", i),
		zap.Stringer("input", ev),
		zap.String("buffer", next.Buffer),
		zap.Stringer("mode", next.Mode),
	)
	return next, out, nil
}

// ClearHistory handles DELETE /calculator/sessions/{id}/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.sessionSpan(r, "calculator.session.history.clear")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	s, err := h.sessions.Update(ctx, chi.URLParam(r, "id"), func(st accumulator.State) (accumulator.State, error) {
		return st.ClearHistory(), nil
	})
	if err != nil {
		h.sessionError(ctx, span, logger, "session.history.clear", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionView(s))
}

// SelectHistory handles POST /calculator/sessions/{id}/history/{index}/select
// and shows the entry's result as if it had just been computed. Index 0 is
// the newest entry.
func (h *Handler) SelectHistory(w http.ResponseWriter, r *http.Request) {
	const opName = "session.history.select"

	ctx, span := h.sessionSpan(r, "calculator.session.history.select")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid history index", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.Int("session.history.index", index))

	s, err := h.sessions.Update(ctx, chi.URLParam(r, "id"), func(st accumulator.State) (accumulator.State, error) {
		next, ok := st.SelectHistory(index)
		if !ok {
			return st, fmt.Errorf("%w: index %d", errHistoryEntryNotFound, index)
		}
		return next, nil
	})
	if err != nil {
		h.sessionError(ctx, span, logger, opName, err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionView(s))
}

func (h *Handler) sessionSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return tracer.Start(r.Context(), name,
		trace.WithAttributes(
			attribute.String("session.id", chi.URLParam(r, "id")),
			attribute.String("request.id", observability.RequestIDFromContext(r.Context())),
		),
	)
}

// sessionError maps session and event errors onto HTTP statuses.
func (h *Handler) sessionError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
	case errors.Is(err, errHistoryEntryNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, errHistoryEntryNotFound.Error(), err, http.StatusNotFound, w)
	case errors.Is(err, accumulator.ErrUnknownEvent),
		errors.Is(err, accumulator.ErrInvalidEvent),
		errors.Is(err, evaluator.ErrUnknownAngleMode):
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}
