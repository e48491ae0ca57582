package types

import (
	"fmt"
	"strings"
)

// Type is one of the language's primitive types. Arrays are not a separate
// type: an array declaration carries its element type plus the array flag.
type Type uint8

const (
	// Unknown is the sentinel of a node whose type has not been determined yet.
	Unknown Type = iota
	Int
	Bool
	Char
	String
	Void
)

func (t Type) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Int:
		return "int"
	case Bool:
		return "boolean"
	case Char:
		return "char"
	case String:
		return "string"
	case Void:
		return "void"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Known reports whether the type has been resolved.
func (t Type) Known() bool { return t != Unknown }

// Parse maps a source spelling back to a Type.
func Parse(name string) (Type, error) {
	switch strings.TrimSpace(name) {
	case "int":
		return Int, nil
	case "boolean", "bool":
		return Bool, nil
	case "char":
		return Char, nil
	case "string":
		return String, nil
	case "void":
		return Void, nil
	case "", "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("unknown type name %q", name)
	}
}

// MarshalText renders the source spelling, so documents stay readable.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts any spelling Parse understands.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
