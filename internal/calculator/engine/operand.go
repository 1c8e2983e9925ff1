package engine

import (
	"math"
	"strconv"
	"strings"
)

// ErrorSentinel is what the display shows after a division by zero.
const ErrorSentinel = "∞"

type operandKind uint8

const (
	kindEmpty operandKind = iota
	kindText
	kindNumber
	kindError
)

// Operand is a value on the calculator: either text still being typed, a numeric
// result of a computation, or the division-by-zero sentinel. The zero value is empty.
type Operand struct {
	kind  operandKind
	text  string
	value float64
}

// Text wraps in-progress input such as "12" or "0.".
func Text(s string) Operand {
	if s == "" {
		return Operand{}
	}
	return Operand{kind: kindText, text: s}
}

// Number wraps a computed result.
func Number(v float64) Operand {
	return Operand{kind: kindNumber, value: v}
}

// Failed returns the division-by-zero sentinel operand.
func Failed() Operand {
	return Operand{kind: kindError}
}

func (o Operand) IsEmpty() bool  { return o.kind == kindEmpty }
func (o Operand) IsText() bool   { return o.kind == kindText }
func (o Operand) IsFailed() bool { return o.kind == kindError }

// Float converts the operand for arithmetic. Empty and unparsable text read as 0,
// the sentinel reads as NaN.
func (o Operand) Float() float64 {
	switch o.kind {
	case kindNumber:
		return o.value
	case kindText:
		v, err := strconv.ParseFloat(o.text, 64)
		if err != nil {
			return 0
		}
		return v
	case kindError:
		return math.NaN()
	}
	return 0
}

// String is the display form.
func (o Operand) String() string {
	switch o.kind {
	case kindText:
		return o.text
	case kindNumber:
		return formatNumber(o.value)
	case kindError:
		return ErrorSentinel
	}
	return ""
}

// formatNumber renders v the way a browser converts a number to a string:
// plain decimal between 1e-7 and 1e21, shortest round-trip digits.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + exp[:1] + digits
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}
