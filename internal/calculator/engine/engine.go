// Package engine implements the keypad calculator: digit entry, a single pending
// operator, left-to-right chaining, equals and clear. It performs no I/O; the
// display is pushed to a Renderer after every state change.
package engine

import "strings"

// Operator is an arithmetic symbol pressed on the keypad.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpClear    Operator = "C"
)

// Renderer receives the display text after each state-changing operation.
type Renderer interface {
	Render(text string)
}

// RenderFunc adapts a plain function to a Renderer.
type RenderFunc func(text string)

func (f RenderFunc) Render(text string) { f(text) }

// Computation records one arithmetic step the engine performed.
type Computation struct {
	A      Operand
	B      Operand
	Op     Operator
	Result Operand
}

// Snapshot is a copy of the engine fields for reporting.
type Snapshot struct {
	Current       string   `json:"current"`
	Previous      string   `json:"previous"`
	Operator      Operator `json:"operator"`
	JustEvaluated bool     `json:"just_evaluated"`
	State         State    `json:"state"`
	Display       string   `json:"display"`
}

// Engine holds the state of one calculator. It is not safe for concurrent use.
type Engine struct {
	current       Operand
	previous      Operand
	pending       Operator
	justEvaluated bool

	renderer Renderer

	// per-operation bookkeeping read by Press
	rendered bool
	last     *Computation
}

// New returns an engine in the idle state and renders the initial "0".
// A nil renderer is allowed.
func New(r Renderer) *Engine {
	e := &Engine{renderer: r}
	e.render()
	return e
}

// Digit handles a press of 0-9 or ".".
func (e *Engine) Digit(d byte) string {
	e.begin()

	if e.justEvaluated || e.previous.IsFailed() {
		e.previous = Operand{}
		e.pending = OpNone
		e.justEvaluated = false
	}

	cur := e.current.String()
	if d == '.' && strings.IndexByte(cur, '.') >= 0 {
		return e.Display()
	}

	switch {
	case cur == "" || cur == "0":
		if d == '.' {
			e.current = Text("0.")
		} else {
			e.current = Text(string(d))
		}
	default:
		e.current = Text(cur + string(d))
	}

	e.render()
	return e.Display()
}

// Operator handles an operator press. OpClear resets the engine. Pressing an
// operator while a full computation is pending resolves it first.
func (e *Engine) Operator(op Operator) string {
	if op == OpClear {
		return e.Clear()
	}
	e.begin()

	if e.previous.IsFailed() {
		return e.Display()
	}

	if e.previous.IsEmpty() {
		e.previous = e.current
		if e.previous.IsEmpty() {
			e.previous = Text("0")
		}
		e.current = Operand{}
	} else if !e.current.IsEmpty() {
		e.previous = e.apply(e.previous, e.current, e.pending)
		e.current = Operand{}
		if e.previous.IsFailed() {
			e.pending = OpNone
			e.justEvaluated = true
			e.render()
			return e.Display()
		}
	}

	e.pending = op
	e.justEvaluated = false
	e.render()
	return e.Display()
}

// Equals computes the pending expression. It does nothing unless a left operand,
// an operator and a right operand are all present.
func (e *Engine) Equals() string {
	e.begin()

	if e.previous.IsEmpty() || e.pending == OpNone || e.current.IsEmpty() {
		return e.Display()
	}

	e.previous = e.apply(e.previous, e.current, e.pending)
	e.current = Operand{}
	e.pending = OpNone
	e.justEvaluated = true
	e.render()
	return e.Display()
}

// Clear resets the engine to its startup state.
func (e *Engine) Clear() string {
	e.begin()

	e.current = Operand{}
	e.previous = Operand{}
	e.pending = OpNone
	e.justEvaluated = false
	e.render()
	return e.Display()
}

// Display is the text the calculator shows: the operand being typed, else the
// stored left operand, else "0".
func (e *Engine) Display() string {
	if !e.current.IsEmpty() {
		return e.current.String()
	}
	if !e.previous.IsEmpty() {
		return e.previous.String()
	}
	return "0"
}

func (e *Engine) State() State {
	switch {
	case e.previous.IsFailed():
		return Error
	case e.justEvaluated:
		return Evaluated
	case e.previous.IsEmpty() && e.current.IsEmpty():
		return Idle
	case e.previous.IsEmpty():
		return EnteringFirst
	case e.current.IsEmpty():
		return AwaitingOperand
	}
	return EnteringSecond
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Current:       e.current.String(),
		Previous:      e.previous.String(),
		Operator:      e.pending,
		JustEvaluated: e.justEvaluated,
		State:         e.State(),
		Display:       e.Display(),
	}
}

// Compute applies op to a and b. A zero divisor yields the Failed sentinel and
// an unrecognised operator yields b unchanged.
func Compute(a, b Operand, op Operator) Operand {
	x, y := a.Float(), b.Float()

	switch op {
	case OpAdd:
		return Number(x + y)
	case OpSubtract:
		return Number(x - y)
	case OpMultiply:
		return Number(x * y)
	case OpDivide:
		if y == 0 {
			return Failed()
		}
		return Number(x / y)
	}
	return b
}

func (e *Engine) apply(a, b Operand, op Operator) Operand {
	res := Compute(a, b, op)
	e.last = &Computation{A: a, B: b, Op: op, Result: res}
	return res
}

func (e *Engine) begin() {
	e.rendered = false
	e.last = nil
}

func (e *Engine) render() {
	e.rendered = true
	if e.renderer != nil {
		e.renderer.Render(e.Display())
	}
}
