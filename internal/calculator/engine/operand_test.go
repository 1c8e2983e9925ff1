package engine

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{15, "15"},
		{-7, "-7"},
		{0.25, "0.25"},
		{math.Copysign(0, -1), "0"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := formatNumber(tc.in); got != tc.want {
				t.Fatalf("formatNumber(%v): expected %q, got %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestOperandFloat(t *testing.T) {
	if got := Text("0.").Float(); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Text("12.5").Float(); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := (Operand{}).Float(); got != 0 {
		t.Fatalf("expected empty operand to read as 0, got %v", got)
	}
	if got := Failed().Float(); !math.IsNaN(got) {
		t.Fatalf("expected NaN for sentinel, got %v", got)
	}
}

func TestTextEmptyIsEmpty(t *testing.T) {
	if !Text("").IsEmpty() {
		t.Fatal("expected Text(\"\") to be empty")
	}
	if Text("3").IsEmpty() || !Text("3").IsText() {
		t.Fatal("expected Text(\"3\") to be editing text")
	}
}
