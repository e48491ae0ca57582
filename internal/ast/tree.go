package ast

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"decaf/internal/source"
	"decaf/internal/types"
)

// Tree is an arena of nodes. Slot 0 is reserved for NoNodeID; slots released
// by Destroy are reused by later Create calls.
//
// Pointers returned by Get are invalidated by Create; re-fetch after
// allocating.
type Tree struct {
	nodes []Node
	free  []NodeID
	live  int
}

// NewTree creates an empty tree with an optional capacity hint.
func NewTree(capHint uint) *Tree {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Tree{
		nodes: make([]Node, 1, capHint+1),
	}
}

// Create allocates a node of kind with empty children, unknown type and no
// value. The category-specific payload is allocated from kind.
func (t *Tree) Create(kind Kind, pos source.Pos) NodeID {
	node := Node{
		Kind:    kind,
		Pos:     pos,
		Type:    types.Unknown,
		payload: newPayload(kind),
		live:    true,
	}
	if kind.IsLiteral() {
		node.Value = &Value{}
	}
	t.live++
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[id] = node
		return id
	}
	value, err := safecast.Conv[uint32](len(t.nodes))
	if err != nil {
		panic(fmt.Errorf("node arena overflow: %w", err))
	}
	t.nodes = append(t.nodes, node)
	return NodeID(value)
}

// Get returns the node or nil for NoNodeID, out-of-range and destroyed IDs.
func (t *Tree) Get(id NodeID) *Node {
	if t == nil || !id.IsValid() || int(id) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[id]
	if !n.live {
		return nil
	}
	return n
}

// Len reports the number of live nodes.
func (t *Tree) Len() int { return t.live }

// AddChild appends child to parent's children and points child back at parent.
func (t *Tree) AddChild(parent, child NodeID) error {
	p := t.Get(parent)
	c := t.Get(child)
	if p == nil || c == nil || parent == child {
		return fmt.Errorf("add child %d to %d: %w", child, parent, ErrBadPointer)
	}
	if c.Parent.IsValid() {
		return fmt.Errorf("add child %d to %d: %w", child, parent, ErrHasParent)
	}
	p.Children = append(p.Children, child)
	c.Parent = parent
	return nil
}

// IndexOf returns the position of child among parent's children, or -1.
func (t *Tree) IndexOf(parent, child NodeID) int {
	p := t.Get(parent)
	if p == nil {
		return -1
	}
	return slices.Index(p.Children, child)
}

// RemoveChildAt detaches and returns the child at index; later children shift
// left. The detached node is not destroyed.
func (t *Tree) RemoveChildAt(parent NodeID, index int) (NodeID, error) {
	p := t.Get(parent)
	if p == nil {
		return NoNodeID, fmt.Errorf("remove child of %d: %w", parent, ErrBadPointer)
	}
	if index < 0 || index >= len(p.Children) {
		return NoNodeID, fmt.Errorf("remove child %d of %d (len %d): %w", index, parent, len(p.Children), ErrInvalidIndex)
	}
	child := p.Children[index]
	p.Children = slices.Delete(p.Children, index, index+1)
	if c := t.Get(child); c != nil {
		c.Parent = NoNodeID
	}
	return child, nil
}

// ReplaceChildAt puts replacement at index and returns the detached previous
// child. No sibling moves.
func (t *Tree) ReplaceChildAt(parent NodeID, index int, replacement NodeID) (NodeID, error) {
	p := t.Get(parent)
	r := t.Get(replacement)
	if p == nil || r == nil {
		return NoNodeID, fmt.Errorf("replace child of %d: %w", parent, ErrBadPointer)
	}
	if r.Parent.IsValid() {
		return NoNodeID, fmt.Errorf("replace child of %d with %d: %w", parent, replacement, ErrHasParent)
	}
	if index < 0 || index >= len(p.Children) {
		return NoNodeID, fmt.Errorf("replace child %d of %d (len %d): %w", index, parent, len(p.Children), ErrInvalidIndex)
	}
	old := p.Children[index]
	p.Children[index] = replacement
	r.Parent = parent
	if o := t.Get(old); o != nil {
		o.Parent = NoNodeID
	}
	return old, nil
}

// SetType records the computed type. Once known it never changes.
func (t *Tree) SetType(id NodeID, ty types.Type) error {
	n := t.Get(id)
	if n == nil {
		return fmt.Errorf("set type of %d: %w", id, ErrBadPointer)
	}
	if n.Type.Known() && n.Type != ty {
		return fmt.Errorf("set type of %d to %s (has %s): %w", id, ty, n.Type, ErrTypeAlreadySet)
	}
	n.Type = ty
	return nil
}

// Destroy releases id and its whole subtree, children first, left to right.
// If id is still attached it is detached from its parent first.
func (t *Tree) Destroy(id NodeID) error {
	n := t.Get(id)
	if n == nil {
		return fmt.Errorf("destroy %d: %w", id, ErrBadPointer)
	}
	if n.Parent.IsValid() {
		if idx := t.IndexOf(n.Parent, id); idx >= 0 {
			if _, err := t.RemoveChildAt(n.Parent, idx); err != nil {
				return err
			}
		}
	}
	t.release(id)
	return nil
}

func (t *Tree) release(id NodeID) {
	n := t.Get(id)
	if n == nil {
		return
	}
	for _, child := range n.Children {
		t.release(child)
	}
	t.nodes[id] = Node{}
	t.free = append(t.free, id)
	t.live--
}

// EnclosingOf walks parent links from id (exclusive) and returns the first
// ancestor of kind, or NoNodeID.
func (t *Tree) EnclosingOf(id NodeID, kind Kind) NodeID {
	n := t.Get(id)
	for n != nil && n.Parent.IsValid() {
		parentID := n.Parent
		n = t.Get(parentID)
		if n != nil && n.Kind == kind {
			return parentID
		}
	}
	return NoNodeID
}

// Walk visits id and its subtree in pre-order. Returning false from fn skips
// the children of that node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, n *Node) bool) {
	n := t.Get(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, child := range t.Get(id).Children {
		t.Walk(child, fn)
	}
}
