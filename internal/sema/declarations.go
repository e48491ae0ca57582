package sema

import (
	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/symbols"
)

// declare registers a declaration in the current scope. A node that opens
// its own scope is declared before that scope exists, so a method name lives
// next to its siblings and not among its parameters.
func (a *analyzer) declare(id ast.NodeID) {
	n := a.node(id)
	decl, _ := n.Decl()
	if a.table.ExistsLocal(decl.Name) {
		a.report(diag.SemaDuplicateDeclaration, n.Pos, "'%s' is already declared in this scope", decl.Name)
		// первое объявление остаётся в силе
		return
	}
	if decl.Flags.Has(ast.FlagArray) && decl.ArrayLen < 1 {
		a.report(diag.SemaInvalidArraySize, n.Pos, "array '%s' must have at least one element, got %d", decl.Name, decl.ArrayLen)
	}
	must(a.table.Insert(decl.Name, decl.DeclType, symbolFlags(decl.Flags)))
}

func symbolFlags(f ast.Flags) symbols.Flags {
	var out symbols.Flags
	if f.Has(ast.FlagArray) {
		out |= symbols.FlagArray
	}
	if f.Has(ast.FlagFunction) {
		out |= symbols.FlagFunction
	}
	return out
}

// checkInitializer matches a variable's initializer against its type.
func (a *analyzer) checkInitializer(id ast.NodeID) {
	n := a.node(id)
	init := a.tree.Get(n.Child(0))
	if init == nil || !init.Type.Known() {
		return
	}
	decl, _ := n.Decl()
	if init.Type != decl.DeclType {
		a.report(diag.SemaAssignTypeMismatch, init.Pos,
			"cannot initialize '%s' of type %s with %s", decl.Name, decl.DeclType, init.Type)
	}
}
