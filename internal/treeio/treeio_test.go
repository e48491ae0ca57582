package treeio

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"decaf/internal/ast"
	"decaf/internal/sema"
	"decaf/internal/testkit"
	"decaf/internal/types"
)

func sample() (*ast.Tree, ast.NodeID) {
	b := ast.NewBuilder("sample.decaf", 32)
	x := b.Field(b.At(2, 3), "x", types.Int)
	buf := b.FieldArray(b.At(3, 3), "buf", types.Char, 8)
	add := b.Method(b.At(4, 3), "add", types.Int,
		[]ast.NodeID{b.Param(b.At(4, 11), "a", types.Int), b.Param(b.At(4, 18), "b", types.Int)},
		b.Block(b.At(4, 25),
			b.Return(b.At(5, 5), b.Binary(b.At(5, 14), "+", b.Loc(b.At(5, 12), "a", ast.NoNodeID), b.Loc(b.At(5, 16), "b", ast.NoNodeID))),
		),
	)
	main := b.Method(b.At(7, 3), "main", types.Void, nil,
		b.Block(b.At(7, 15),
			b.Var(b.At(8, 5), "ok", types.Bool, b.BoolLit(b.At(8, 19), true)),
			b.Assign(b.At(9, 5), "=", b.Loc(b.At(9, 5), "buf", b.IntLit(b.At(9, 9), 0)), b.CharLit(b.At(9, 14), 'ж')),
			b.Assign(b.At(10, 5), "=", b.Loc(b.At(10, 5), "x", ast.NoNodeID), b.Unary(b.At(10, 9), "-", b.IntLit(b.At(10, 10), 3))),
			b.LibCall(b.At(11, 5), "printf", b.StringLit(b.At(11, 12), "x=%d\n"), b.Loc(b.At(11, 21), "x", ast.NoNodeID)),
		),
	)
	return b.Tree, b.Class(b.At(1, 1), "Program", x, buf, add, main)
}

func render(t *testing.T, tree *ast.Tree, root ast.NodeID) string {
	t.Helper()
	var sb strings.Builder
	if err := tree.Print(&sb, root); err != nil {
		t.Fatalf("print: %v", err)
	}
	return sb.String()
}

func roundTrip(t *testing.T, format Format) {
	t.Helper()
	tree, root := sample()
	var buf bytes.Buffer
	if err := Encode(&buf, tree, root, format); err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	got, gotRoot, err := Decode(&buf, format)
	if err != nil {
		t.Fatalf("decode %s: %v", format, err)
	}
	if diff := deep.Equal(strings.Split(render(t, got, gotRoot), "\n"), strings.Split(render(t, tree, root), "\n")); diff != nil {
		t.Fatalf("%s round trip differs: %v", format, diff)
	}
	if got.Len() != tree.Len() {
		t.Fatalf("%s round trip: %d nodes, want %d", format, got.Len(), tree.Len())
	}
	if err := testkit.CheckStructure(got, gotRoot); err != nil {
		t.Fatalf("%s decoded tree: %v", format, err)
	}
}

func TestRoundTripJSON(t *testing.T)   { roundTrip(t, FormatJSON) }
func TestRoundTripPacked(t *testing.T) { roundTrip(t, FormatPacked) }

func TestEncodeCarriesResolvedTypes(t *testing.T) {
	tree, root := sample()
	res := sema.Analyze(tree, root, sema.Options{})
	if !res.OK {
		t.Fatalf("sample must analyze cleanly, got %+v", res)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, tree, res.Root, FormatJSON); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	// -3 folded into a literal
	if !strings.Contains(out, `"value": -3`) {
		t.Fatalf("folded literal missing:\n%s", out)
	}
	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if bin := findJSON(doc.Root, "binary", 5, 14); bin == nil || bin.Type != "int" {
		t.Fatalf("binary type missing: %+v", bin)
	}
	if fn := findJSON(doc.Root, "method", 4, 3); fn == nil || fn.Type != "int" || !fn.Function {
		t.Fatalf("method declared type missing: %+v", fn)
	}

	// a decoded tree starts untyped again
	again, againRoot, err := Decode(strings.NewReader(out), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again.Walk(againRoot, func(_ ast.NodeID, n *ast.Node) bool {
		if n.Type.Known() {
			t.Fatalf("%s at %s decoded with type %s", n.Kind, n.Pos, n.Type)
		}
		return true
	})
}

func TestJSONFileInheritance(t *testing.T) {
	doc := `{"format": "decaf-tree", "version": 1, "file": "a.decaf", "root":
	  {"kind": "class", "line": 1, "col": 1, "name": "P", "children": [
	    {"kind": "field", "file": "b.decaf", "line": 2, "col": 3, "name": "x", "type": "int"},
	    {"kind": "method", "line": 3, "col": 3, "name": "main", "type": "void", "children": [
	      {"kind": "block", "line": 3, "col": 15}
	    ]}
	  ]}}`
	tree, root, err := Decode(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	class := tree.Get(root)
	files := []string{
		class.Pos.File,
		tree.Get(class.Child(0)).Pos.File,
		tree.Get(class.Child(1)).Pos.File,
	}
	if diff := deep.Equal(files, []string{"a.decaf", "b.decaf", "a.decaf"}); diff != nil {
		t.Fatalf("file inheritance: %v", diff)
	}
	if d, _ := tree.Get(class.Child(1)).Decl(); !d.Flags.Has(ast.FlagFunction) {
		t.Fatalf("methods must carry the function flag")
	}
}

func TestDecodeNormalisesNames(t *testing.T) {
	// "café" spelled with a combining acute accent
	doc := `{"format": "decaf-tree", "version": 1, "file": "n.decaf", "root":
	  {"kind": "class", "line": 1, "col": 1, "name": "P", "children": [
	    {"kind": "field", "line": 2, "col": 3, "name": "cafe\u0301", "type": "int"},
	    {"kind": "method", "line": 3, "col": 3, "name": "main", "type": "void", "children": [
	      {"kind": "block", "line": 3, "col": 15, "children": [
	        {"kind": "assign", "line": 4, "col": 5, "op": "=", "children": [
	          {"kind": "location", "line": 4, "col": 5, "name": "caf\u00e9"},
	          {"kind": "int", "line": 4, "col": 12, "value": 1}
	        ]}
	      ]}
	    ]}
	  ]}}`
	tree, root, err := Decode(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	field := tree.Get(tree.Get(root).Child(0))
	if field.Name() != "caf\u00e9" {
		t.Fatalf("field name not NFC: %q", field.Name())
	}
	if res := sema.Analyze(tree, root, sema.Options{}); !res.OK {
		t.Fatalf("both spellings must resolve to one symbol, got %+v", res)
	}
}

func TestDecodeRejects(t *testing.T) {
	wrap := func(body string) string {
		return `{"format": "decaf-tree", "version": 1, "file": "r.decaf", "root":
		  {"kind": "class", "line": 1, "col": 1, "name": "P", "children": [
		    {"kind": "method", "line": 2, "col": 3, "name": "main", "type": "void", "children": [
		      {"kind": "block", "line": 2, "col": 15, "children": [` + body + `]}
		    ]}
		  ]}}`
	}
	cases := map[string]string{
		"header":        `{"format": "other", "version": 1, "root": {"kind": "class", "line": 1, "col": 1, "name": "P"}}`,
		"version":       `{"format": "decaf-tree", "version": 9, "root": {"kind": "class", "line": 1, "col": 1, "name": "P"}}`,
		"unknown field": `{"format": "decaf-tree", "version": 1, "extra": 1, "root": {"kind": "class", "line": 1, "col": 1, "name": "P"}}`,
		"root kind":     `{"format": "decaf-tree", "version": 1, "root": {"kind": "block", "line": 1, "col": 1}}`,
		"no value":      wrap(`{"kind": "return", "line": 3, "col": 5, "children": [{"kind": "int", "line": 3, "col": 12}]}`),
		"long char":     wrap(`{"kind": "return", "line": 3, "col": 5, "children": [{"kind": "char", "line": 3, "col": 12, "value": "ab"}]}`),
		"operator":      wrap(`{"kind": "return", "line": 3, "col": 5, "children": [{"kind": "binary", "line": 3, "col": 12, "op": "**", "children": [{"kind": "int", "line": 3, "col": 12, "value": 1}, {"kind": "int", "line": 3, "col": 15, "value": 2}]}]}`),
		"arity":         wrap(`{"kind": "return", "line": 3, "col": 5, "children": [{"kind": "binary", "line": 3, "col": 12, "op": "+", "children": [{"kind": "int", "line": 3, "col": 12, "value": 1}]}]}`),
		"no line":       wrap(`{"kind": "break", "col": 5}`),
		"void var":      wrap(`{"kind": "var", "line": 3, "col": 5, "name": "v", "type": "void"}`),
	}
	for name, doc := range cases {
		_, _, err := Decode(strings.NewReader(doc), FormatJSON)
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("%s: expected ErrDecode, got %v", name, err)
		}
	}
}

func TestPackedRejectsTrailingNodes(t *testing.T) {
	tree, root := sample()
	var buf bytes.Buffer
	if err := Encode(&buf, tree, root, FormatPacked); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc packedDocument
	if err := decodeInto(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unpack: %v", err)
	}

	trailing := doc
	trailing.Nodes = append(append([]packedNode(nil), doc.Nodes...), doc.Nodes[len(doc.Nodes)-1])
	if _, _, err := Decode(pack(t, &trailing), FormatPacked); !errors.Is(err, ErrDecode) {
		t.Fatalf("trailing nodes: expected ErrDecode, got %v", err)
	}

	truncated := doc
	truncated.Nodes = doc.Nodes[:len(doc.Nodes)-1]
	if _, _, err := Decode(pack(t, &truncated), FormatPacked); !errors.Is(err, ErrDecode) {
		t.Fatalf("truncated: expected ErrDecode, got %v", err)
	}

	badString := doc
	badString.Nodes = append([]packedNode(nil), doc.Nodes...)
	badString.Nodes[0].Name = 9999
	if _, _, err := Decode(pack(t, &badString), FormatPacked); !errors.Is(err, ErrDecode) {
		t.Fatalf("string out of range: expected ErrDecode, got %v", err)
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]struct {
		format Format
		ok     bool
	}{
		"a/prog.json":  {FormatJSON, true},
		"prog.DTREE":   {FormatPacked, true},
		"prog.decaf":   {0, false},
		"prog":         {0, false},
		"prog.msgpack": {0, false},
	}
	for path, want := range cases {
		got, err := FormatForPath(path)
		if (err == nil) != want.ok {
			t.Fatalf("%s: err = %v", path, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("%s: expected ErrUnknownFormat, got %v", path, err)
		}
		if err == nil && got != want.format {
			t.Fatalf("%s: got %s, want %s", path, got, want.format)
		}
	}
}
