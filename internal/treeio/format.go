package treeio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"decaf/internal/ast"
)

// Format selects a document encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatPacked
)

const (
	// DocumentFormat tags every document so stray JSON is not mistaken for a tree.
	DocumentFormat  = "decaf-tree"
	DocumentVersion = 1
)

var (
	ErrUnknownFormat = errors.New("unknown tree format")
	ErrDecode        = errors.New("invalid tree document")
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPacked:
		return "dtree"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Ext returns the file extension, dot included.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat accepts "json", "dtree" and "packed".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "dtree", "packed", "msgpack":
		return FormatPacked, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownFormat)
	}
}

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return 0, fmt.Errorf("%s: no extension: %w", path, ErrUnknownFormat)
	}
	f, err := ParseFormat(ext)
	if err != nil || ext == "packed" || ext == "msgpack" {
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	return f, nil
}

// IsTreeFile reports whether path has a tree document extension.
func IsTreeFile(path string) bool {
	_, err := FormatForPath(path)
	return err == nil
}

// Decode reads one document. The returned root is a class declaration.
func Decode(r io.Reader, format Format) (*ast.Tree, ast.NodeID, error) {
	var (
		tree *ast.Tree
		root ast.NodeID
		err  error
	)
	switch format {
	case FormatJSON:
		tree, root, err = decodeJSON(r)
	case FormatPacked:
		tree, root, err = decodePacked(r)
	default:
		return nil, ast.NoNodeID, fmt.Errorf("decode: %w", ErrUnknownFormat)
	}
	if err != nil {
		return nil, ast.NoNodeID, err
	}
	if n := tree.Get(root); n == nil || n.Kind != ast.KindClassDecl {
		return nil, ast.NoNodeID, fmt.Errorf("%w: root is not a class", ErrDecode)
	}
	if err := tree.CheckShape(root); err != nil {
		return nil, ast.NoNodeID, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return tree, root, nil
}

// Encode writes the subtree at root, resolved types included.
func Encode(w io.Writer, tree *ast.Tree, root ast.NodeID, format Format) error {
	if tree.Get(root) == nil {
		return fmt.Errorf("encode %d: %w", root, ast.ErrBadPointer)
	}
	switch format {
	case FormatJSON:
		return encodeJSON(w, tree, root)
	case FormatPacked:
		return encodePacked(w, tree, root)
	default:
		return fmt.Errorf("encode: %w", ErrUnknownFormat)
	}
}

func checkHeader(format string, version int) error {
	if format != DocumentFormat {
		return fmt.Errorf("%w: format %q, want %q", ErrDecode, format, DocumentFormat)
	}
	if version < 1 || version > DocumentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrDecode, version)
	}
	return nil
}
