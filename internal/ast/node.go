package ast

import (
	"decaf/internal/source"
	"decaf/internal/types"
)

// Flags record declaration attributes.
type Flags uint8

const (
	FlagArray Flags = 1 << iota
	FlagFunction
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Strings returns textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 2)
	if f.Has(FlagArray) {
		labels = append(labels, "array")
	}
	if f.Has(FlagFunction) {
		labels = append(labels, "function")
	}
	return labels
}

// payload is the closed set of category-specific node data.
type payload interface {
	category() Category
}

// DeclPayload is carried by class, field, method, variable and parameter nodes.
type DeclPayload struct {
	Name     string
	DeclType types.Type
	Flags    Flags
	ArrayLen int64 // only meaningful with FlagArray
}

// RefPayload is carried by locations, method calls and library calls.
type RefPayload struct {
	Name string
}

// OpPayload is carried by unary, binary and assignment operations.
type OpPayload struct {
	Op string
}

func (*DeclPayload) category() Category { return CategoryDecl }
func (*RefPayload) category() Category  { return CategoryRef }
func (*OpPayload) category() Category   { return CategoryOp }

func newPayload(kind Kind) payload {
	switch kind.Category() {
	case CategoryDecl:
		return &DeclPayload{}
	case CategoryRef:
		return &RefPayload{}
	case CategoryOp:
		return &OpPayload{}
	default:
		return nil
	}
}

// Node is one syntactic construct. Children are owned; Parent is a lookup-only
// back link.
type Node struct {
	Kind     Kind
	Pos      source.Pos
	Type     types.Type
	Children []NodeID
	Parent   NodeID
	Value    *Value

	payload payload
	live    bool
}

// Decl returns the declaration payload when the node is a declaration.
func (n *Node) Decl() (*DeclPayload, bool) {
	if n == nil {
		return nil, false
	}
	p, ok := n.payload.(*DeclPayload)
	return p, ok
}

// Ref returns the reference payload when the node is a reference or call.
func (n *Node) Ref() (*RefPayload, bool) {
	if n == nil {
		return nil, false
	}
	p, ok := n.payload.(*RefPayload)
	return p, ok
}

// Operation returns the operator payload when the node is an operation.
func (n *Node) Operation() (*OpPayload, bool) {
	if n == nil {
		return nil, false
	}
	p, ok := n.payload.(*OpPayload)
	return p, ok
}

// Name returns the identifier of a declaration or reference, "" otherwise.
func (n *Node) Name() string {
	if d, ok := n.Decl(); ok {
		return d.Name
	}
	if r, ok := n.Ref(); ok {
		return r.Name
	}
	return ""
}

// Op returns the operator symbol of an operation, "" otherwise.
func (n *Node) Op() string {
	if o, ok := n.Operation(); ok {
		return o.Op
	}
	return ""
}

// Child returns the i-th child or NoNodeID when out of range.
func (n *Node) Child(i int) NodeID {
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}
