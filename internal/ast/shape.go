package ast

import (
	"errors"
	"fmt"
)

// ErrBadShape reports a node whose children do not match the grammar.
var ErrBadShape = errors.New("malformed tree")

type arity struct{ min, max int } // max < 0: unbounded

var shapes = map[Kind]arity{
	KindClassDecl:   {0, -1},
	KindFieldDecl:   {0, 0},
	KindParamDecl:   {0, 0},
	KindVarDecl:     {0, 1},
	KindMethodDecl:  {1, -1},
	KindBlock:       {0, -1},
	KindLocation:    {0, 1},
	KindMethodCall:  {0, -1},
	KindLibraryCall: {0, -1},
	KindUnary:       {1, 1},
	KindBinary:      {2, 2},
	KindAssign:      {2, 2},
	KindIf:          {2, 3},
	KindFor:         {4, 4},
	KindWhile:       {2, 2},
	KindReturn:      {0, 1},
	KindBreak:       {0, 0},
	KindContinue:    {0, 0},
	KindIntLit:      {0, 0},
	KindBoolLit:     {0, 0},
	KindCharLit:     {0, 0},
	KindStringLit:   {0, 0},
}

// CheckShape verifies the subtree at id against the grammar the analyzer
// relies on: child counts per kind, class members, method parameters and
// body, statement bodies and the for-statement slots. Trees coming from
// outside (documents) go through it before analysis.
func (t *Tree) CheckShape(id NodeID) error {
	var errs []error
	t.Walk(id, func(nid NodeID, n *Node) bool {
		if err := t.checkNode(nid, n); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

func (t *Tree) checkNode(id NodeID, n *Node) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%s %s at %s: %s: %w", n.Kind, n.Name(), n.Pos, fmt.Sprintf(format, args...), ErrBadShape)
	}
	shape, ok := shapes[n.Kind]
	if !ok {
		return bad("unknown kind")
	}
	count := len(n.Children)
	if count < shape.min || (shape.max >= 0 && count > shape.max) {
		return bad("%d children", count)
	}
	kindAt := func(i int) Kind {
		if c := t.Get(n.Child(i)); c != nil {
			return c.Kind
		}
		return KindInvalid
	}
	if n.Kind.IsDecl() && n.Name() == "" {
		return bad("missing name")
	}
	if n.Kind.IsRef() && n.Name() == "" {
		return bad("missing name")
	}
	switch n.Kind {
	case KindClassDecl:
		seenMethod := false
		for i := range n.Children {
			switch kindAt(i) {
			case KindFieldDecl:
				if seenMethod {
					return bad("field after method at child %d", i)
				}
			case KindMethodDecl:
				seenMethod = true
			default:
				return bad("child %d is %s", i, kindAt(i))
			}
		}
	case KindMethodDecl:
		last := count - 1
		if kindAt(last) != KindBlock {
			return bad("body is %s", kindAt(last))
		}
		for i := 0; i < last; i++ {
			if kindAt(i) != KindParamDecl {
				return bad("parameter %d is %s", i, kindAt(i))
			}
		}
	case KindIf:
		if kindAt(1) != KindBlock || (count == 3 && kindAt(2) != KindBlock) {
			return bad("branches must be blocks")
		}
	case KindWhile:
		if kindAt(1) != KindBlock {
			return bad("body must be a block")
		}
	case KindFor:
		if init := kindAt(0); init != KindVarDecl && init != KindAssign {
			return bad("init is %s", init)
		}
		if kindAt(2) != KindAssign || kindAt(3) != KindBlock {
			return bad("update must be an assignment and body a block")
		}
	case KindAssign:
		if kindAt(0) != KindLocation {
			return bad("target is %s", kindAt(0))
		}
	}
	return nil
}
