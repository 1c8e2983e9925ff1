package calculator

import "go-chi-calculator/internal/calculator/engine"

// DigitRequest is the body for POST /calculator/sessions/{id}/digit.
type DigitRequest struct {
	Digit string `json:"digit"` // "0"-"9" or "."
}

// OperatorRequest is the body for POST /calculator/sessions/{id}/operator.
type OperatorRequest struct {
	Operator string `json:"operator"` // "+", "-", "*", "/", "C" or add/subtract/multiply/divide
}

// KeysRequest carries a run of key presses, one per character: "7+8*3=".
type KeysRequest struct {
	Keys string `json:"keys"`
}

// SessionResponse describes a session after a request.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	engine.Snapshot
	Rendered bool         `json:"rendered"`
	Renders  int          `json:"renders"`
	Steps    []StepResult `json:"steps,omitempty"`
}

// StepResult records one key press.
type StepResult struct {
	Key         string             `json:"key"`
	Display     string             `json:"display"`
	Rendered    bool               `json:"rendered"`
	Computation *ComputationResult `json:"computation,omitempty"`
}

// ComputationResult is an arithmetic step triggered by a press.
type ComputationResult struct {
	A      string `json:"a"`
	Op     string `json:"op"`
	B      string `json:"b"`
	Result string `json:"result"`
}

// EvaluateResponse is the response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Keys      string       `json:"keys"`
	Steps     []StepResult `json:"steps"`
	Display   string       `json:"display"`
	State     engine.State `json:"state"`
	RequestID string       `json:"request_id"`
}

// CalcRequest is the JSON body for the one-shot operations.
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for the one-shot operations. Result is
// display text, so a zero divisor yields "∞" with Error set.
type CalcResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    string  `json:"result"`
	Error     bool    `json:"error"`
	RequestID string  `json:"request_id"`
}

func toStepResults(steps []engine.Step) []StepResult {
	out := make([]StepResult, 0, len(steps))
	for _, s := range steps {
		r := StepResult{
			Key:      s.Key.String(),
			Display:  s.Display,
			Rendered: s.Rendered,
		}
		if c := s.Computation; c != nil {
			r.Computation = &ComputationResult{
				A:      c.A.String(),
				Op:     string(c.Op),
				B:      c.B.String(),
				Result: c.Result.String(),
			}
		}
		out = append(out, r)
	}
	return out
}

func newSessionResponse(v View, steps []engine.Step) SessionResponse {
	resp := SessionResponse{
		SessionID: v.ID,
		Snapshot:  v.Snapshot,
		Renders:   v.Renders,
	}
	if len(steps) > 0 {
		resp.Rendered = steps[len(steps)-1].Rendered
		resp.Steps = toStepResults(steps)
	}
	return resp
}
