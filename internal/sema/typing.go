package sema

import (
	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/types"
)

// determine computes the type of an expression-like node once. Children are
// typed first; a node whose type stays unknown is still remembered, so its
// problem is reported a single time.
func (a *analyzer) determine(id ast.NodeID) types.Type {
	n := a.node(id)
	if _, done := a.determined[id]; done || n.Type.Known() {
		return n.Type
	}
	a.determined[id] = struct{}{}
	if !n.Kind.IsExpr() {
		return n.Type
	}
	for i := 0; i < len(a.node(id).Children); i++ {
		a.determine(a.node(id).Children[i])
	}

	var ty types.Type
	switch n.Kind {
	case ast.KindIntLit:
		ty = types.Int
	case ast.KindBoolLit:
		ty = types.Bool
	case ast.KindCharLit:
		ty = types.Char
	case ast.KindStringLit:
		ty = types.String
	case ast.KindLocation:
		ty = a.locationType(id)
	case ast.KindMethodCall:
		ty = a.callType(id)
	case ast.KindLibraryCall:
		// внешние функции возвращают int
		ty = types.Int
	case ast.KindAssign:
		ty = a.assignType(id)
	case ast.KindUnary:
		ty = a.unaryType(id)
	case ast.KindBinary:
		ty = a.binaryType(id)
	case ast.KindReturn:
		ty = types.Void
		if value := n.Child(0); value.IsValid() {
			ty = a.node(value).Type
		}
	}
	if ty.Known() {
		must(a.tree.SetType(id, ty))
	}
	return ty
}

func (a *analyzer) typeOf(id ast.NodeID) types.Type {
	if n := a.tree.Get(id); n != nil {
		return n.Type
	}
	return types.Unknown
}

// locationType resolves silently; checkLocation reports.
func (a *analyzer) locationType(id ast.NodeID) types.Type {
	n := a.node(id)
	entry, ok := a.table.Lookup(n.Name())
	if !ok {
		return types.Unknown
	}
	subscripts := len(n.Children)
	if entry.IsArray() != (subscripts == 1) || subscripts > 1 {
		return types.Unknown
	}
	return entry.Type
}

// callType gives a method call its declared return type when the name
// resolves to a method; checkCall reports otherwise.
func (a *analyzer) callType(id ast.NodeID) types.Type {
	entry, ok := a.table.Lookup(a.node(id).Name())
	if !ok || !entry.IsFunction() {
		return types.Unknown
	}
	return entry.Type
}

func (a *analyzer) assignType(id ast.NodeID) types.Type {
	n := a.node(id)
	left, right := a.typeOf(n.Child(0)), a.typeOf(n.Child(1))
	if !left.Known() || !right.Known() {
		return left
	}
	op := n.Op()
	switch {
	case types.IsCompoundAssign(op) && (left != types.Int || right != types.Int):
		a.report(diag.SemaCompoundAssignNotInt, n.Pos,
			"operator '%s' requires int operands, got %s and %s", op, left, right)
	case left != right:
		a.report(diag.SemaAssignTypeMismatch, n.Pos,
			"cannot assign %s to %s of type %s", right, a.node(n.Child(0)).Name(), left)
	}
	return left
}

func (a *analyzer) unaryType(id ast.NodeID) types.Type {
	n := a.node(id)
	operand := a.typeOf(n.Child(0))
	op := n.Op()
	if op == "-" {
		if operand.Known() && operand != types.Int {
			a.report(diag.SemaUnaryMinusNotInt, n.Pos, "unary '-' requires int, got %s", operand)
		}
		return types.Int
	}
	// всё остальное считается логическим отрицанием
	if operand.Known() && operand != types.Bool {
		a.report(diag.SemaNotOperatorNotBool, n.Pos, "operator '%s' requires boolean, got %s", op, operand)
	}
	return types.Bool
}

func (a *analyzer) binaryType(id ast.NodeID) types.Type {
	n := a.node(id)
	leftID, rightID := n.Child(0), n.Child(1)
	left, right := a.typeOf(leftID), a.typeOf(rightID)
	op := n.Op()
	spec := types.BinarySpecFor(op)

	if spec.Class == types.OpEquality {
		if left.Known() && right.Known() && left != right {
			a.report(diag.SemaRightOperandWrongType, a.node(rightID).Pos,
				"right operand of '%s' is %s, expected %s to match the left operand", op, right, left)
		}
		return spec.Result
	}
	if left.Known() && left != spec.Operand {
		a.report(diag.SemaLeftOperandWrongType, a.node(leftID).Pos,
			"left operand of '%s' is %s, expected %s", op, left, spec.Operand)
	}
	if right.Known() && right != spec.Operand {
		a.report(diag.SemaRightOperandWrongType, a.node(rightID).Pos,
			"right operand of '%s' is %s, expected %s", op, right, spec.Operand)
	}
	return spec.Result
}
