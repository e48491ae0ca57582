package sema

import (
	"fmt"
	"strings"

	"decaf/internal/diag"
	"decaf/internal/symbols"
	"decaf/internal/trace"
)

// ForCondition selects the type required of a for-statement condition.
type ForCondition uint8

const (
	// ForConditionBoolean requires a boolean condition, like if and while.
	// It is the default; the classic decaf rule of an int condition stays
	// available as ForConditionInt (--for-condition=int).
	ForConditionBoolean ForCondition = iota
	// ForConditionInt requires an int condition (ExpectedIntLoopCondition).
	ForConditionInt
)

func (f ForCondition) String() string {
	switch f {
	case ForConditionBoolean:
		return "boolean"
	case ForConditionInt:
		return "int"
	default:
		return fmt.Sprintf("ForCondition(%d)", f)
	}
}

// ParseForCondition converts "boolean" or "int" to a ForCondition.
func ParseForCondition(s string) (ForCondition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "boolean", "bool":
		return ForConditionBoolean, nil
	case "int":
		return ForConditionInt, nil
	default:
		return ForConditionBoolean, fmt.Errorf("invalid for condition rule: %q (expected: boolean|int)", s)
	}
}

// DefaultEntryPoint is the method every program must declare.
const DefaultEntryPoint = "main"

// Options configure one analysis.
type Options struct {
	Reporter     diag.Reporter
	Tracer       trace.Tracer
	TraceParent  uint64 // span the sema span is nested under
	ForCondition ForCondition
	EntryPoint   string // DefaultEntryPoint when empty
	Hints        symbols.Hints
}
