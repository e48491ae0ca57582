// Package testkit holds tree checks shared by tests of several packages.
package testkit

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"decaf/internal/ast"
	"decaf/internal/types"
)

// CheckStructure verifies the arena around root:
// 1) every child id points at a live node whose Parent is the holder
// 2) no node is reachable twice
// 3) every live node of the tree is reachable from root
func CheckStructure(tree *ast.Tree, root ast.NodeID) error {
	if tree == nil {
		return fmt.Errorf("nil tree")
	}
	if tree.Get(root) == nil {
		return fmt.Errorf("root %d is not a live node", root)
	}
	seen := make(map[ast.NodeID]struct{}, tree.Len())
	var errs []error
	tree.Walk(root, func(id ast.NodeID, n *ast.Node) bool {
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("node %d reachable twice", id))
			return false
		}
		seen[id] = struct{}{}
		for i, child := range n.Children {
			c := tree.Get(child)
			if c == nil {
				errs = append(errs, fmt.Errorf("%s %d: child %d (%d) is not live", n.Kind, id, i, child))
				continue
			}
			if c.Parent != id {
				errs = append(errs, fmt.Errorf("%s %d: child %d has parent %d", n.Kind, id, child, c.Parent))
			}
		}
		return true
	})
	reachable, err := safecast.Conv[int](len(seen))
	if err != nil {
		return err
	}
	if reachable != tree.Len() {
		errs = append(errs, fmt.Errorf("%d live nodes, %d reachable from root", tree.Len(), reachable))
	}
	return errors.Join(errs...)
}

// CheckAnalyzed verifies what analysis leaves behind, whether or not the
// program had errors: the structure is intact, no negation of an integer
// literal survived folding, and literal types match their kind.
func CheckAnalyzed(tree *ast.Tree, root ast.NodeID) error {
	if err := CheckStructure(tree, root); err != nil {
		return err
	}
	var errs []error
	tree.Walk(root, func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind == ast.KindUnary && n.Op() == "-" {
			if operand := tree.Get(n.Child(0)); operand != nil && operand.Kind == ast.KindIntLit && operand.Value.Int != math.MinInt64 {
				errs = append(errs, fmt.Errorf("unfolded negation %d at %s", id, n.Pos))
			}
		}
		if want, ok := literalType(n.Kind); ok && n.Type.Known() && n.Type != want {
			errs = append(errs, fmt.Errorf("%s %d typed %s", n.Kind, id, n.Type))
		}
		return true
	})
	return errors.Join(errs...)
}

func literalType(k ast.Kind) (types.Type, bool) {
	switch k {
	case ast.KindIntLit:
		return types.Int, true
	case ast.KindBoolLit:
		return types.Bool, true
	case ast.KindCharLit:
		return types.Char, true
	case ast.KindStringLit:
		return types.String, true
	}
	return types.Unknown, false
}
