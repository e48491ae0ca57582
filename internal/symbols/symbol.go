package symbols

import (
	"decaf/internal/types"
)

// Flags encode declaration attributes for quick checks.
type Flags uint8

const (
	FlagArray Flags = 1 << iota
	FlagFunction
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Strings returns a slice of textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 2)
	if f&FlagArray != 0 {
		labels = append(labels, "array")
	}
	if f&FlagFunction != 0 {
		labels = append(labels, "function")
	}
	return labels
}

// Entry is one declared name. Next links the entry to the rest of its bucket.
type Entry struct {
	Name  string
	Type  types.Type
	Flags Flags
	Scope ScopeID
	Next  EntryID
}

func (e Entry) IsArray() bool    { return e.Flags.Has(FlagArray) }
func (e Entry) IsFunction() bool { return e.Flags.Has(FlagFunction) }
