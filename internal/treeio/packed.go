package treeio

import (
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"decaf/internal/ast"
	"decaf/internal/source"
	"decaf/internal/types"
)

type packedDocument struct {
	Format  string       `msgpack:"format"`
	Version int          `msgpack:"version"`
	Strings []string     `msgpack:"strings"`
	Nodes   []packedNode `msgpack:"nodes"`
}

// packedNode is one node in pre-order; Children says how many of the
// following subtrees belong to it.
type packedNode struct {
	Kind     source.StringID `msgpack:"k"`
	File     source.StringID `msgpack:"f"`
	Line     uint32          `msgpack:"l"`
	Col      uint32          `msgpack:"c"`
	Name     source.StringID `msgpack:"n,omitempty"`
	Type     uint8           `msgpack:"t,omitempty"`
	Flags    uint8           `msgpack:"fl,omitempty"`
	Length   int64           `msgpack:"len,omitempty"`
	Op       source.StringID `msgpack:"op,omitempty"`
	HasValue bool            `msgpack:"hv,omitempty"`
	Int      int64           `msgpack:"i,omitempty"`
	Bool     bool            `msgpack:"b,omitempty"`
	Char     int32           `msgpack:"ch,omitempty"`
	Str      source.StringID `msgpack:"s,omitempty"`
	Children uint32          `msgpack:"kids,omitempty"`
}

func decodePacked(r io.Reader) (*ast.Tree, ast.NodeID, error) {
	var doc packedDocument
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, ast.NoNodeID, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := checkHeader(doc.Format, doc.Version); err != nil {
		return nil, ast.NoNodeID, err
	}
	if len(doc.Nodes) == 0 {
		return nil, ast.NoNodeID, fmt.Errorf("%w: no nodes", ErrDecode)
	}
	if len(doc.Strings) == 0 || doc.Strings[0] != "" {
		return nil, ast.NoNodeID, fmt.Errorf("%w: string table must start with the empty string", ErrDecode)
	}
	strs := source.FromTable(doc.Strings)
	if strs.Len() != len(doc.Strings) {
		return nil, ast.NoNodeID, fmt.Errorf("%w: duplicate entries in string table", ErrDecode)
	}

	type frame struct {
		id        ast.NodeID
		remaining uint32
	}
	tree := ast.NewTree(uint(len(doc.Nodes)))
	var (
		root  ast.NodeID
		stack []frame
	)
	for i := range doc.Nodes {
		if i > 0 && len(stack) == 0 {
			return nil, ast.NoNodeID, fmt.Errorf("%w: %d nodes after the root subtree", ErrDecode, len(doc.Nodes)-i)
		}
		pn := &doc.Nodes[i]
		rec, err := pn.record(strs)
		if err != nil {
			return nil, ast.NoNodeID, fmt.Errorf("node %d: %w", i, err)
		}
		id, err := rec.build(tree)
		if err != nil {
			return nil, ast.NoNodeID, fmt.Errorf("node %d: %w", i, err)
		}
		if len(stack) == 0 {
			root = id
		} else {
			top := &stack[len(stack)-1]
			if err := tree.AddChild(top.id, id); err != nil {
				return nil, ast.NoNodeID, err
			}
			top.remaining--
			for len(stack) > 0 && stack[len(stack)-1].remaining == 0 {
				stack = stack[:len(stack)-1]
			}
		}
		if pn.Children > 0 {
			stack = append(stack, frame{id: id, remaining: pn.Children})
		}
	}
	if len(stack) > 0 {
		return nil, ast.NoNodeID, fmt.Errorf("%w: truncated, %d children missing", ErrDecode, stack[len(stack)-1].remaining)
	}
	return tree, root, nil
}

func (pn *packedNode) record(strs *source.Interner) (record, error) {
	lookup := func(id source.StringID) (string, error) {
		s, ok := strs.Lookup(id)
		if !ok {
			return "", fmt.Errorf("%w: string %d out of range", ErrDecode, id)
		}
		return s, nil
	}
	var (
		rec  record
		err  error
		kind string
	)
	if kind, err = lookup(pn.Kind); err != nil {
		return record{}, err
	}
	if rec.kind, err = ast.ParseKind(kind); err != nil {
		return record{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if rec.pos.File, err = lookup(pn.File); err != nil {
		return record{}, err
	}
	rec.pos.Line, rec.pos.Col = pn.Line, pn.Col
	if rec.name, err = lookup(pn.Name); err != nil {
		return record{}, err
	}
	if rec.op, err = lookup(pn.Op); err != nil {
		return record{}, err
	}
	if rec.kind.IsDecl() {
		rec.ty = types.Type(pn.Type)
		if rec.ty > types.Void {
			return record{}, fmt.Errorf("%w: type %d", ErrDecode, pn.Type)
		}
	}
	flags := ast.Flags(pn.Flags)
	rec.array = flags.Has(ast.FlagArray)
	rec.function = flags.Has(ast.FlagFunction)
	rec.length = pn.Length
	rec.hasValue = pn.HasValue
	rec.value = ast.Value{Int: pn.Int, Bool: pn.Bool, Char: pn.Char}
	if rec.value.Str, err = lookup(pn.Str); err != nil {
		return record{}, err
	}
	return rec, nil
}

func encodePacked(w io.Writer, tree *ast.Tree, root ast.NodeID) error {
	strs := source.NewInterner()
	nodes := make([]packedNode, 0, tree.Len())
	var err error
	tree.Walk(root, func(_ ast.NodeID, n *ast.Node) bool {
		if err != nil {
			return false
		}
		var kids uint32
		if kids, err = safecast.Conv[uint32](len(n.Children)); err != nil {
			err = fmt.Errorf("encode %s at %s: %w", n.Kind, n.Pos, err)
			return false
		}
		rec := recordOf(n)
		pn := packedNode{
			Kind:     strs.Intern(rec.kind.Name()),
			File:     strs.Intern(rec.pos.File),
			Line:     rec.pos.Line,
			Col:      rec.pos.Col,
			Name:     strs.Intern(rec.name),
			Type:     uint8(rec.ty),
			Length:   rec.length,
			Op:       strs.Intern(rec.op),
			HasValue: rec.hasValue,
			Int:      rec.value.Int,
			Bool:     rec.value.Bool,
			Char:     rec.value.Char,
			Str:      strs.Intern(rec.value.Str),
			Children: kids,
		}
		if rec.array {
			pn.Flags |= uint8(ast.FlagArray)
		}
		if rec.function {
			pn.Flags |= uint8(ast.FlagFunction)
		}
		nodes = append(nodes, pn)
		return true
	})
	if err != nil {
		return err
	}
	doc := packedDocument{
		Format:  DocumentFormat,
		Version: DocumentVersion,
		Strings: strs.Snapshot(),
		Nodes:   nodes,
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}
