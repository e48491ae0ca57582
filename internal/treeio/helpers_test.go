package treeio

import (
	"bytes"
	"io"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func decodeInto(data []byte, doc *packedDocument) error {
	return msgpack.Unmarshal(data, doc)
}

func pack(t *testing.T, doc *packedDocument) io.Reader {
	t.Helper()
	data, err := msgpack.Marshal(doc)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return bytes.NewReader(data)
}

func findJSON(n *jsonNode, kind string, line, col uint32) *jsonNode {
	if n == nil {
		return nil
	}
	if n.Kind == kind && n.Line == line && n.Col == col {
		return n
	}
	for _, c := range n.Children {
		if found := findJSON(c, kind, line, col); found != nil {
			return found
		}
	}
	return nil
}
