package sema

import (
	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/types"
)

// checkReturn matches the returned type against the enclosing method.
func (a *analyzer) checkReturn(id ast.NodeID) {
	n := a.node(id)
	method := a.tree.EnclosingOf(id, ast.KindMethodDecl)
	if !method.IsValid() || !n.Type.Known() {
		return
	}
	m := a.node(method)
	decl, _ := m.Decl()
	if n.Type != decl.DeclType {
		a.report(diag.SemaReturnTypeMismatch, n.Pos,
			"method '%s' returns %s, got %s", decl.Name, decl.DeclType, n.Type)
	}
}

func (a *analyzer) checkCondition(cond ast.NodeID, stmt string) {
	c := a.tree.Get(cond)
	if c == nil || !c.Type.Known() {
		return
	}
	if c.Type != types.Bool {
		a.report(diag.SemaExpectedBoolean, c.Pos, "%s condition must be boolean, got %s", stmt, c.Type)
	}
}

// checkForCondition applies the configured rule to the condition slot of
// [init, cond, update, body].
func (a *analyzer) checkForCondition(id ast.NodeID) {
	cond := a.node(id).Child(1)
	if a.opts.ForCondition == ForConditionBoolean {
		a.checkCondition(cond, "for")
		return
	}
	c := a.tree.Get(cond)
	if c == nil || !c.Type.Known() {
		return
	}
	if c.Type != types.Int {
		a.report(diag.SemaExpectedIntLoopCond, c.Pos, "for condition must be int, got %s", c.Type)
	}
}
