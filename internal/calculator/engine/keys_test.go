package engine

import (
	"errors"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		token string
		want  Key
	}{
		{"7", Key{Kind: KeyDigit, Digit: '7'}},
		{".", Key{Kind: KeyDigit, Digit: '.'}},
		{"+", Key{Kind: KeyOperator, Op: OpAdd}},
		{"×", Key{Kind: KeyOperator, Op: OpMultiply}},
		{"÷", Key{Kind: KeyOperator, Op: OpDivide}},
		{"subtract", Key{Kind: KeyOperator, Op: OpSubtract}},
		{"=", Key{Kind: KeyEquals}},
		{"C", Key{Kind: KeyClear}},
		{" clear ", Key{Kind: KeyClear}},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			got, err := ParseKey(tc.token)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseKeyUnknown(t *testing.T) {
	for _, token := range []string{"", "%", "12", "sqrt"} {
		if _, err := ParseKey(token); !errors.Is(err, ErrUnknownKey) {
			t.Fatalf("token %q: expected ErrUnknownKey, got %v", token, err)
		}
	}
}

func TestParseSequence(t *testing.T) {
	keys, err := ParseSequence("7 + 8 × 3 =")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got string
	for _, k := range keys {
		got += k.String()
	}
	if got != "7+8*3=" {
		t.Fatalf("expected %q, got %q", "7+8*3=", got)
	}

	if _, err := ParseSequence("7+a"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestPressReportsComputation(t *testing.T) {
	e := New(nil)
	for _, k := range []Key{{Kind: KeyDigit, Digit: '6'}, {Kind: KeyOperator, Op: OpDivide}, {Kind: KeyDigit, Digit: '3'}} {
		e.Press(k)
	}

	step := e.Press(Key{Kind: KeyEquals})
	if step.Computation == nil {
		t.Fatal("expected computation")
	}
	if c := step.Computation; c.A.String() != "6" || c.B.String() != "3" || c.Op != OpDivide || c.Result.String() != "2" {
		t.Fatalf("unexpected computation %+v", c)
	}
	if !step.Rendered || step.Display != "2" {
		t.Fatalf("expected rendered display %q, got %+v", "2", step)
	}
}
