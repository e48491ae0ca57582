package sema

import (
	"math"
	"strconv"

	"decaf/internal/ast"
	"decaf/internal/trace"
	"decaf/internal/types"
)

// foldUnaryMinus replaces -<int literal> with a literal holding the negated
// value, at the same index of the same parent, and releases the old
// operation and its operand. It returns the node the walk continues with.
// The walk tries it before and after the children, so nested negations of
// a literal collapse into one literal.
func (a *analyzer) foldUnaryMinus(id ast.NodeID) ast.NodeID {
	n := a.node(id)
	if n.Kind != ast.KindUnary || n.Op() != "-" || len(n.Children) != 1 || !n.Parent.IsValid() {
		return id
	}
	operand := a.node(n.Children[0])
	if operand.Kind != ast.KindIntLit || operand.Value.Int == math.MinInt64 {
		return id
	}
	value := -operand.Value.Int
	pos, parent := n.Pos, n.Parent
	index := a.tree.IndexOf(parent, id)
	if index < 0 {
		return id
	}

	lit := a.tree.Create(ast.KindIntLit, pos)
	a.node(lit).Value.Int = value
	if _, err := a.tree.ReplaceChildAt(parent, index, lit); err != nil {
		panic(err)
	}
	a.forget(id)
	must(a.tree.Destroy(id))
	// Тип литерала известен сразу; слот мог достаться от освобождённого узла.
	must(a.tree.SetType(lit, types.Int))
	a.determined[lit] = struct{}{}
	a.folds++

	if a.traceNodes {
		trace.At(a.tracer, pos, "fold", "-("+strconv.FormatInt(-value, 10)+") => "+strconv.FormatInt(value, 10), a.span)
	}
	return lit
}

// forget drops a subtree about to be destroyed from the memo set, since its
// slots will be reused.
func (a *analyzer) forget(id ast.NodeID) {
	a.tree.Walk(id, func(child ast.NodeID, _ *ast.Node) bool {
		delete(a.determined, child)
		return true
	})
}
