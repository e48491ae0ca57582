package treeio

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"decaf/internal/ast"
	"decaf/internal/source"
	"decaf/internal/types"
)

// record is one node as both encodings see it, children aside.
type record struct {
	kind     ast.Kind
	pos      source.Pos
	name     string
	ty       types.Type
	array    bool
	function bool
	length   int64
	op       string
	value    ast.Value
	hasValue bool
}

// build allocates the node described by r. Names and string literals are
// NFC-normalised so that visually equal identifiers share one symbol.
func (r *record) build(tree *ast.Tree) (ast.NodeID, error) {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s at %s: %s", ErrDecode, r.kind, r.pos, fmt.Sprintf(format, args...))
	}
	if r.kind == ast.KindInvalid {
		return ast.NoNodeID, bad("invalid kind")
	}
	if !r.pos.IsValid() {
		return ast.NoNodeID, bad("missing line")
	}

	switch {
	case r.kind.IsDecl():
		if err := r.checkDecl(); err != nil {
			return ast.NoNodeID, bad("%v", err)
		}
	case r.array || r.function || r.length != 0:
		return ast.NoNodeID, bad("declaration attributes on a non-declaration")
	}
	if r.kind.IsOp() {
		if err := r.checkOp(); err != nil {
			return ast.NoNodeID, bad("%v", err)
		}
	} else if r.op != "" {
		return ast.NoNodeID, bad("operator %q on a non-operation", r.op)
	}
	if r.kind.IsLiteral() != r.hasValue {
		if r.hasValue {
			return ast.NoNodeID, bad("unexpected value")
		}
		return ast.NoNodeID, bad("missing value")
	}

	id := tree.Create(r.kind, r.pos)
	n := tree.Get(id)
	name := norm.NFC.String(r.name)
	if d, ok := n.Decl(); ok {
		d.Name = name
		d.DeclType = r.ty
		switch {
		case r.kind == ast.KindClassDecl:
			d.DeclType = types.Void
		case r.kind == ast.KindMethodDecl:
			d.Flags |= ast.FlagFunction
		case r.array:
			d.Flags |= ast.FlagArray
			d.ArrayLen = r.length
		}
	}
	if ref, ok := n.Ref(); ok {
		ref.Name = name
	}
	if o, ok := n.Operation(); ok {
		o.Op = r.op
	}
	if n.Value != nil {
		*n.Value = r.value
		if r.kind == ast.KindStringLit {
			n.Value.Str = norm.NFC.String(r.value.Str)
		}
	}
	return id, nil
}

func (r *record) checkDecl() error {
	switch r.kind {
	case ast.KindClassDecl:
		if r.array || r.function {
			return fmt.Errorf("class cannot be an array or a function")
		}
		return nil
	case ast.KindMethodDecl:
		if r.array {
			return fmt.Errorf("method cannot be an array")
		}
		if !r.ty.Known() {
			return fmt.Errorf("missing return type")
		}
		return nil
	}
	if r.function {
		return fmt.Errorf("only methods are functions")
	}
	if r.array && r.kind == ast.KindParamDecl {
		return fmt.Errorf("parameters cannot be arrays")
	}
	if !r.array && r.length != 0 {
		return fmt.Errorf("length without array")
	}
	if !r.ty.Known() || r.ty == types.Void {
		return fmt.Errorf("declared type %s", r.ty)
	}
	return nil
}

func (r *record) checkOp() error {
	switch r.kind {
	case ast.KindUnary:
		if _, ok := types.UnarySpecFor(r.op); !ok {
			return fmt.Errorf("unary operator %q", r.op)
		}
	case ast.KindBinary:
		if !types.IsBinaryOp(r.op) {
			return fmt.Errorf("binary operator %q", r.op)
		}
	case ast.KindAssign:
		if !types.IsAssignOp(r.op) {
			return fmt.Errorf("assignment operator %q", r.op)
		}
	}
	return nil
}

// recordOf is the inverse of build. Declarations carry their declared type,
// every other node its computed one.
func recordOf(n *ast.Node) record {
	r := record{
		kind: n.Kind,
		pos:  n.Pos,
		op:   n.Op(),
		name: n.Name(),
		ty:   n.Type,
	}
	if d, ok := n.Decl(); ok {
		r.ty = d.DeclType
		r.array = d.Flags.Has(ast.FlagArray)
		r.function = d.Flags.Has(ast.FlagFunction)
		if r.array {
			r.length = d.ArrayLen
		}
	}
	if n.Value != nil {
		r.value = *n.Value
		r.hasValue = true
	}
	return r
}

// charValue accepts exactly one code point.
func charValue(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return 0, fmt.Errorf("char literal %q is not valid UTF-8", s)
	}
	if size != len(s) {
		return 0, fmt.Errorf("char literal %q holds more than one character", s)
	}
	return r, nil
}
