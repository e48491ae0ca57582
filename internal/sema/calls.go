package sema

import (
	"decaf/internal/ast"
	"decaf/internal/diag"
)

// findMethod scans the class for the first method declaration named name.
// Later duplicates are already DuplicateDeclaration errors.
func (a *analyzer) findMethod(class ast.NodeID, name string) ast.NodeID {
	c := a.tree.Get(class)
	if c == nil {
		return ast.NoNodeID
	}
	for _, member := range c.Children {
		m := a.node(member)
		if m.Kind == ast.KindMethodDecl && m.Name() == name {
			return member
		}
	}
	return ast.NoNodeID
}

// checkCall validates a method call against the declaration in the
// enclosing class: it must exist, be visible at the call, take as many
// parameters as there are arguments, and each argument must match its
// parameter's type positionally.
func (a *analyzer) checkCall(id ast.NodeID) {
	call := a.node(id)
	name := call.Name()
	method := a.findMethod(a.tree.EnclosingOf(id, ast.KindClassDecl), name)
	if !method.IsValid() {
		a.report(diag.SemaUndefinedMethod, call.Pos, "undefined method '%s'", name)
		return
	}
	m := a.node(method)
	if entry, ok := a.table.Lookup(name); !ok || !entry.IsFunction() {
		msg := "method '" + name + "' is used before its declaration"
		if ok {
			msg = "'" + name + "' is shadowed by a non-method declaration"
		}
		diag.ReportError(a.reporter, diag.SemaUndefinedSymbol, call.Pos, msg).
			WithNote(m.Pos, "method declared here").
			Emit()
		return
	}

	// формальные параметры: все дети, кроме завершающего блока
	formals := len(m.Children) - 1
	args := len(call.Children)
	if args != formals {
		diag.ReportError(a.reporter, diag.SemaArityMismatch, call.Pos,
			arityMessage(name, formals, args)).
			WithNote(m.Pos, "method declared here").
			Emit()
		return
	}
	for i := 0; i < args; i++ {
		arg := a.node(call.Children[i])
		param := a.node(m.Children[i])
		pd, _ := param.Decl()
		if !arg.Type.Known() {
			continue
		}
		if arg.Type != pd.DeclType {
			diag.ReportError(a.reporter, diag.SemaParamTypeMismatch, arg.Pos,
				paramMessage(name, i+1, pd.Name, pd.DeclType.String(), arg.Type.String())).
				WithNote(param.Pos, "parameter declared here").
				Emit()
		}
	}
}
