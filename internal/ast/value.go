package ast

import (
	"strconv"
)

// Value is the literal payload. The node kind selects the meaningful field.
type Value struct {
	Int  int64
	Bool bool
	Char rune
	Str  string
}

// Format renders the value the way it would appear in source.
func (v *Value) Format(kind Kind) string {
	if v == nil {
		return ""
	}
	switch kind {
	case KindIntLit:
		return strconv.FormatInt(v.Int, 10)
	case KindBoolLit:
		return strconv.FormatBool(v.Bool)
	case KindCharLit:
		return strconv.QuoteRune(v.Char)
	case KindStringLit:
		return strconv.Quote(v.Str)
	default:
		return ""
	}
}
