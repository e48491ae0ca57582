package sema

import (
	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/types"
)

// checkLocation validates a bare location: the name resolves, arrays carry
// exactly one int subscript, scalars carry none.
func (a *analyzer) checkLocation(id ast.NodeID) {
	n := a.node(id)
	name := n.Name()
	entry, ok := a.table.Lookup(name)
	if !ok {
		a.report(diag.SemaUndefinedSymbol, n.Pos, "undefined symbol '%s'", name)
		return
	}
	if !entry.IsArray() {
		if len(n.Children) > 0 {
			a.report(diag.SemaArrayAccessOnNonArray, n.Pos, "'%s' is not an array and cannot be indexed", name)
		}
		return
	}
	if len(n.Children) != 1 {
		a.report(diag.SemaMissingArrayIndex, n.Pos, "array '%s' must be indexed", name)
		return
	}
	index := a.node(n.Children[0])
	if index.Type.Known() && index.Type != types.Int {
		a.report(diag.SemaArrayIndexNotInt, index.Pos, "index of '%s' must be int, got %s", name, index.Type)
	}
}
