package sema

import "decaf/internal/diag"

// checkEntryPoint runs while the class scope, where methods live, is still
// open: the entry point must be declared there as a method without
// parameters.
func (a *analyzer) checkEntryPoint() {
	name := a.opts.EntryPoint
	root := a.node(a.root)
	entry, ok := a.table.Lookup(name)
	switch {
	case !ok:
		a.report(diag.SemaMissingMainMethod, root.Pos, "program has no '%s' method", name)
		return
	case !entry.IsFunction():
		a.report(diag.SemaMissingMainMethod, root.Pos, "'%s' must be a method", name)
		return
	}
	method := a.findMethod(a.root, name)
	if m := a.tree.Get(method); m != nil && len(m.Children) > 1 {
		diag.ReportError(a.reporter, diag.SemaMissingMainMethod, m.Pos,
			"method '"+name+"' must not take parameters").
			WithNote(root.Pos, "entry point of class '"+root.Name()+"'").
			Emit()
	}
}
