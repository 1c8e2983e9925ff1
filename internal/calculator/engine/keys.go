package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrUnknownKey = errors.New("unknown key")

// KeyKind is one of the four input intents.
type KeyKind uint8

const (
	KeyDigit KeyKind = iota + 1
	KeyOperator
	KeyEquals
	KeyClear
)

func (k KeyKind) String() string {
	switch k {
	case KeyDigit:
		return "digit"
	case KeyOperator:
		return "operator"
	case KeyEquals:
		return "equals"
	case KeyClear:
		return "clear"
	}
	return "unknown"
}

// Key is a single keypad press.
type Key struct {
	Kind  KeyKind
	Digit byte
	Op    Operator
}

func (k Key) String() string {
	switch k.Kind {
	case KeyDigit:
		return string(k.Digit)
	case KeyOperator:
		return string(k.Op)
	case KeyEquals:
		return "="
	case KeyClear:
		return string(OpClear)
	}
	return "?"
}

var operatorTokens = map[string]Operator{
	"+":        OpAdd,
	"add":      OpAdd,
	"-":        OpSubtract,
	"−":        OpSubtract,
	"subtract": OpSubtract,
	"*":        OpMultiply,
	"x":        OpMultiply,
	"×":        OpMultiply,
	"multiply": OpMultiply,
	"/":        OpDivide,
	"÷":        OpDivide,
	"divide":   OpDivide,
}

// ParseOperator maps a symbol or operation name to an Operator. "C" and
// "clear" map to OpClear.
func ParseOperator(token string) (Operator, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "c" || t == "clear" {
		return OpClear, nil
	}
	if op, ok := operatorTokens[t]; ok {
		return op, nil
	}
	return OpNone, fmt.Errorf("operator %q: %w", token, ErrUnknownKey)
}

// ParseKey maps a button label to a Key.
func ParseKey(token string) (Key, error) {
	t := strings.TrimSpace(token)
	if len(t) == 1 && (t[0] == '.' || (t[0] >= '0' && t[0] <= '9')) {
		return Key{Kind: KeyDigit, Digit: t[0]}, nil
	}

	switch strings.ToLower(t) {
	case "=", "equals":
		return Key{Kind: KeyEquals}, nil
	case "c", "clear":
		return Key{Kind: KeyClear}, nil
	}

	op, err := ParseOperator(t)
	if err != nil {
		return Key{}, fmt.Errorf("key %q: %w", token, ErrUnknownKey)
	}
	return Key{Kind: KeyOperator, Op: op}, nil
}

// ParseSequence reads one key per character, skipping whitespace.
func ParseSequence(s string) ([]Key, error) {
	keys := make([]Key, 0, len(s))
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		k, err := ParseKey(string(r))
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Step reports the outcome of one Press.
type Step struct {
	Key         Key
	Display     string
	Rendered    bool
	Computation *Computation
}

// Press dispatches a key to the matching operation.
func (e *Engine) Press(k Key) Step {
	var display string
	switch k.Kind {
	case KeyDigit:
		display = e.Digit(k.Digit)
	case KeyOperator:
		display = e.Operator(k.Op)
	case KeyEquals:
		display = e.Equals()
	case KeyClear:
		display = e.Clear()
	default:
		e.begin()
		display = e.Display()
	}

	return Step{
		Key:         k,
		Display:     display,
		Rendered:    e.rendered,
		Computation: e.last,
	}
}
