package treeio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"decaf/internal/ast"
	"decaf/internal/source"
	"decaf/internal/types"
)

type jsonDocument struct {
	Format  string    `json:"format"`
	Version int       `json:"version"`
	File    string    `json:"file,omitempty"`
	Root    *jsonNode `json:"root"`
}

type jsonNode struct {
	Kind     string          `json:"kind"`
	File     string          `json:"file,omitempty"`
	Line     uint32          `json:"line"`
	Col      uint32          `json:"col"`
	Name     string          `json:"name,omitempty"`
	Type     string          `json:"type,omitempty"`
	Array    bool            `json:"array,omitempty"`
	Function bool            `json:"function,omitempty"`
	Length   int64           `json:"length,omitempty"`
	Op       string          `json:"op,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Children []*jsonNode     `json:"children,omitempty"`
}

func decodeJSON(r io.Reader) (*ast.Tree, ast.NodeID, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc jsonDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, ast.NoNodeID, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := checkHeader(doc.Format, doc.Version); err != nil {
		return nil, ast.NoNodeID, err
	}
	if doc.Root == nil {
		return nil, ast.NoNodeID, fmt.Errorf("%w: missing root", ErrDecode)
	}
	tree := ast.NewTree(0)
	root, err := buildJSON(tree, doc.Root, doc.File)
	if err != nil {
		return nil, ast.NoNodeID, err
	}
	return tree, root, nil
}

func buildJSON(tree *ast.Tree, jn *jsonNode, file string) (ast.NodeID, error) {
	if jn == nil {
		return ast.NoNodeID, fmt.Errorf("%w: null node in %s", ErrDecode, file)
	}
	if jn.File != "" {
		file = jn.File
	}
	rec, err := jn.record(file)
	if err != nil {
		return ast.NoNodeID, err
	}
	id, err := rec.build(tree)
	if err != nil {
		return ast.NoNodeID, err
	}
	for _, c := range jn.Children {
		child, err := buildJSON(tree, c, file)
		if err != nil {
			return ast.NoNodeID, err
		}
		if err := tree.AddChild(id, child); err != nil {
			return ast.NoNodeID, err
		}
	}
	return id, nil
}

func (jn *jsonNode) record(file string) (record, error) {
	pos := source.Pos{File: file, Line: jn.Line, Col: jn.Col}
	kind, err := ast.ParseKind(jn.Kind)
	if err != nil {
		return record{}, fmt.Errorf("%w: %s: %w", ErrDecode, pos, err)
	}
	rec := record{
		kind:     kind,
		pos:      pos,
		name:     jn.Name,
		array:    jn.Array,
		function: jn.Function,
		length:   jn.Length,
		op:       jn.Op,
	}
	// входной "type" у выражений игнорируется: его вычисляет анализатор
	if kind.IsDecl() {
		if rec.ty, err = types.Parse(jn.Type); err != nil {
			return record{}, fmt.Errorf("%w: %s: %w", ErrDecode, pos, err)
		}
	}
	if len(jn.Value) > 0 {
		rec.hasValue = true
		if err := decodeValue(kind, jn.Value, &rec.value); err != nil {
			return record{}, fmt.Errorf("%w: %s: %w", ErrDecode, pos, err)
		}
	}
	return rec, nil
}

func decodeValue(kind ast.Kind, raw json.RawMessage, v *ast.Value) error {
	switch kind {
	case ast.KindIntLit:
		return json.Unmarshal(raw, &v.Int)
	case ast.KindBoolLit:
		return json.Unmarshal(raw, &v.Bool)
	case ast.KindCharLit:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		c, err := charValue(s)
		if err != nil {
			return err
		}
		v.Char = c
		return nil
	case ast.KindStringLit:
		return json.Unmarshal(raw, &v.Str)
	default:
		// build reports the stray value with the node position
		return nil
	}
}

func encodeValue(kind ast.Kind, v ast.Value) (json.RawMessage, error) {
	switch kind {
	case ast.KindIntLit:
		return json.Marshal(v.Int)
	case ast.KindBoolLit:
		return json.Marshal(v.Bool)
	case ast.KindCharLit:
		return json.Marshal(string(v.Char))
	case ast.KindStringLit:
		return json.Marshal(v.Str)
	default:
		return nil, nil
	}
}

func encodeJSON(w io.Writer, tree *ast.Tree, root ast.NodeID) error {
	file := tree.Get(root).Pos.File
	jroot, err := jsonOf(tree, root, file)
	if err != nil {
		return err
	}
	doc := jsonDocument{
		Format:  DocumentFormat,
		Version: DocumentVersion,
		File:    file,
		Root:    jroot,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func jsonOf(tree *ast.Tree, id ast.NodeID, parentFile string) (*jsonNode, error) {
	n := tree.Get(id)
	if n == nil {
		return nil, fmt.Errorf("encode %d: %w", id, ast.ErrBadPointer)
	}
	rec := recordOf(n)
	jn := &jsonNode{
		Kind:     rec.kind.Name(),
		Line:     rec.pos.Line,
		Col:      rec.pos.Col,
		Name:     rec.name,
		Array:    rec.array,
		Function: rec.function,
		Length:   rec.length,
		Op:       rec.op,
	}
	if rec.pos.File != parentFile {
		jn.File = rec.pos.File
	}
	if rec.ty.Known() {
		jn.Type = rec.ty.String()
	}
	if rec.hasValue {
		raw, err := encodeValue(rec.kind, rec.value)
		if err != nil {
			return nil, fmt.Errorf("encode value at %s: %w", rec.pos, err)
		}
		jn.Value = raw
	}
	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, 0, len(n.Children))
	}
	for _, child := range n.Children {
		c, err := jsonOf(tree, child, rec.pos.File)
		if err != nil {
			return nil, err
		}
		jn.Children = append(jn.Children, c)
	}
	return jn, nil
}
