package engine

import "fmt"

// State names where the engine sits in the entry cycle. It is derived from the
// engine's fields, never stored.
type State uint8

const (
	Idle State = iota
	EnteringFirst
	AwaitingOperand
	EnteringSecond
	Evaluated
	Error
)

var stateNames = [...]string{
	Idle:            "idle",
	EnteringFirst:   "entering_first",
	AwaitingOperand: "awaiting_operand",
	EnteringSecond:  "entering_second",
	Evaluated:       "evaluated",
	Error:           "error",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText lets State appear as its name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
