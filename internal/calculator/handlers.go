package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"go-chi-calculator/internal/calculator/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// API serves the session endpoints backed by a Store.
type API struct {
	store *Store
}

func NewAPI(store *Store) *API {
	return &API{store: store}
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	v, err := a.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", err.Error(), err, statusFor(err), w)
		return
	}

	span.SetAttributes(attribute.String("calculator.session.id", v.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", v.ID),
		zap.Int("sessions", a.store.Len()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, newSessionResponse(v, nil))
}

// GetSession handles GET /calculator/sessions/{id}
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	v, err := a.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(v, nil))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	if err := a.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("calculator session deleted", zap.String("session_id", id))

	w.WriteHeader(http.StatusNoContent)
}

// Digit handles POST /calculator/sessions/{id}/digit
func (a *API) Digit(w http.ResponseWriter, r *http.Request) {
	a.handlePress(w, r, "digit", func(r *http.Request) ([]engine.Key, error) {
		var req DigitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		k, err := engine.ParseKey(req.Digit)
		if err != nil {
			return nil, err
		}
		if k.Kind != engine.KeyDigit {
			return nil, fmt.Errorf("%q is not a digit: %w", req.Digit, engine.ErrUnknownKey)
		}
		return []engine.Key{k}, nil
	})
}

// Operator handles POST /calculator/sessions/{id}/operator
func (a *API) Operator(w http.ResponseWriter, r *http.Request) {
	a.handlePress(w, r, "operator", func(r *http.Request) ([]engine.Key, error) {
		var req OperatorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		op, err := engine.ParseOperator(req.Operator)
		if err != nil {
			return nil, err
		}
		return []engine.Key{{Kind: engine.KeyOperator, Op: op}}, nil
	})
}

// Equals handles POST /calculator/sessions/{id}/equals
func (a *API) Equals(w http.ResponseWriter, r *http.Request) {
	a.handlePress(w, r, "equals", func(*http.Request) ([]engine.Key, error) {
		return []engine.Key{{Kind: engine.KeyEquals}}, nil
	})
}

// Clear handles POST /calculator/sessions/{id}/clear
func (a *API) Clear(w http.ResponseWriter, r *http.Request) {
	a.handlePress(w, r, "clear", func(*http.Request) ([]engine.Key, error) {
		return []engine.Key{{Kind: engine.KeyClear}}, nil
	})
}

// Keys handles POST /calculator/sessions/{id}/keys
func (a *API) Keys(w http.ResponseWriter, r *http.Request) {
	a.handlePress(w, r, "keys", func(r *http.Request) ([]engine.Key, error) {
		var req KeysRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return engine.ParseSequence(req.Keys)
	})
}

// handlePress is the shared implementation for every session key endpoint:
// decode the keys, feed them to the session, record metrics and reply with the
// new display.
func (a *API) handlePress(w http.ResponseWriter, r *http.Request, opName string, decode func(*http.Request) ([]engine.Key, error)) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.session.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	keys, err := decode(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
		return
	}

	start := time.Now()
	v, steps, err := a.store.Press(id, keys)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, statusFor(err), w)
		return
	}

	for _, step := range steps {
		recordStep(ctx, span, logger, step)
	}
	opsHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", opName)))

	span.SetAttributes(
		attribute.String("calculator.display", v.Snapshot.Display),
		attribute.String("calculator.state", v.Snapshot.State.String()),
	)
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(v, steps))
}

// ---------------------------------------------------------------------------
// Stateless replay (one child span per key)
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate: replays a key sequence on a fresh
// engine and returns the display after every press.
func Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys, err := engine.ParseSequence(req.Keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("calculator.keys_count", len(keys)))

	var rendered []string
	e := engine.New(engine.RenderFunc(func(text string) {
		rendered = append(rendered, text)
	}))

	steps := make([]engine.Step, 0, len(keys))
	for i, k := range keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.evaluate.key.%d", i),
			trace.WithAttributes(
				attribute.Int("calculator.key.index", i),
				attribute.String("calculator.key", k.String()),
				attribute.String("calculator.key.kind", k.Kind.String()),
			),
		)

		start := time.Now()
		step := e.Press(k)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		recordStep(ctx, keySpan, logger, step)
		opsHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", k.Kind.String())))

		keySpan.SetAttributes(attribute.String("calculator.display", step.Display))
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()

		steps = append(steps, step)
	}

	span.AddEvent("evaluate.complete", trace.WithAttributes(
		attribute.String("display", e.Display()),
		attribute.Int("renders", len(rendered)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("key sequence evaluated",
		zap.String("keys", req.Keys),
		zap.String("display", e.Display()),
		zap.Stringer("state", e.State()),
		zap.Int("renders", len(rendered)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Keys:      req.Keys,
		Steps:     toStepResults(steps),
		Display:   e.Display(),
		State:     e.State(),
		RequestID: requestID,
	})
}

// ---------------------------------------------------------------------------
// One-shot operations
// ---------------------------------------------------------------------------

// Add handles POST /calculator/add
func Add(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "add", engine.OpAdd)
}

// Subtract handles POST /calculator/subtract
func Subtract(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "subtract", engine.OpSubtract)
}

// Multiply handles POST /calculator/multiply
func Multiply(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "multiply", engine.OpMultiply)
}

// Divide handles POST /calculator/divide. A zero divisor answers with the
// sentinel, not an HTTP error.
func Divide(w http.ResponseWriter, r *http.Request) {
	handleBinaryOp(w, r, "divide", engine.OpDivide)
}

func handleBinaryOp(w http.ResponseWriter, r *http.Request, opName string, op engine.Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	res := engine.Compute(engine.Number(req.A), engine.Number(req.B), op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)

	if res.IsFailed() {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "division_by_zero")))
		span.AddEvent("division_by_zero")
		logger.Warn("division by zero",
			zap.Float64("a", req.A),
			zap.String("request_id", requestID),
		)
	} else if v := res.Float(); !math.IsInf(v, 0) && !math.IsNaN(v) {
		resultGauge.Record(ctx, v, attrs)
	}

	span.SetAttributes(attribute.String("calculator.result", res.String()))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.String("result", res.String()),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation: opName,
		A:         req.A,
		B:         req.B,
		Result:    res.String(),
		Error:     res.IsFailed(),
		RequestID: requestID,
	})
}

// recordStep counts a key press, and the arithmetic it triggered if any, on the
// given span, the calculator metrics and the debug log.
func recordStep(ctx context.Context, span trace.Span, logger *zap.Logger, step engine.Step) {
	keysCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", step.Key.Kind.String())))

	logger.Debug("key pressed",
		zap.Stringer("key", step.Key),
		zap.String("display", step.Display),
		zap.Bool("rendered", step.Rendered),
	)

	c := step.Computation
	if c == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", string(c.Op)))
	opsCounter.Add(ctx, 1, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("a", c.A.String()),
		attribute.String("op", string(c.Op)),
		attribute.String("b", c.B.String()),
		attribute.String("result", c.Result.String()),
	))

	if c.Result.IsFailed() {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "division_by_zero")))
		logger.Warn("division by zero",
			zap.String("a", c.A.String()),
			zap.String("b", c.B.String()),
		)
		return
	}

	if v := c.Result.Float(); !math.IsInf(v, 0) && !math.IsNaN(v) {
		resultGauge.Record(ctx, v, attrs)
	}
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionLimit):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
