package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"decaf/internal/ast"
	"decaf/internal/treeio"
	"decaf/internal/types"
)

const (
	maxSeedBytes = 64 << 10 // ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F, format treeio.Format) {
	addTestdataSeeds(f, format)
	addProgramSeeds(f, format)
}

func addTestdataSeeds(f *testing.F, format treeio.Format) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем документы нужного формата
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != format.Ext() {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

// addProgramSeeds encodes a handful of programs covering every node kind,
// plus truncated copies of them.
func addProgramSeeds(f *testing.F, format treeio.Format) {
	f.Add([]byte{})
	for _, build := range seedPrograms {
		b := ast.NewBuilder("seed"+format.Ext(), 64)
		root := build(b)
		var buf bytes.Buffer
		if err := treeio.Encode(&buf, b.Tree, root, format); err != nil {
			continue
		}
		doc := buf.Bytes()
		f.Add(clampSeed(doc))
		f.Add(clampSeed(doc[:len(doc)/2]))
	}
}

var seedPrograms = []func(*ast.Builder) ast.NodeID{
	func(b *ast.Builder) ast.NodeID {
		return b.Class(b.At(1, 1), "Program",
			b.Field(b.At(2, 3), "x", types.Int),
			b.Method(b.At(3, 3), "main", types.Void, nil,
				b.Block(b.At(3, 15),
					b.Assign(b.At(4, 5), "=", b.Loc(b.At(4, 5), "x", ast.NoNodeID), b.Unary(b.At(4, 9), "-", b.IntLit(b.At(4, 10), 7))),
				),
			),
		)
	},
	func(b *ast.Builder) ast.NodeID {
		return b.Class(b.At(1, 1), "Program",
			b.FieldArray(b.At(2, 3), "buf", types.Char, 4),
			b.Method(b.At(3, 3), "sum", types.Int,
				[]ast.NodeID{b.Param(b.At(3, 11), "n", types.Int)},
				b.Block(b.At(3, 18),
					b.Var(b.At(4, 5), "i", types.Int, ast.NoNodeID),
					b.Var(b.At(5, 5), "acc", types.Int, ast.NoNodeID),
					b.For(b.At(6, 5),
						b.Assign(b.At(6, 9), "=", b.Loc(b.At(6, 9), "i", ast.NoNodeID), b.IntLit(b.At(6, 13), 0)),
						b.Binary(b.At(6, 18), "<", b.Loc(b.At(6, 16), "i", ast.NoNodeID), b.Loc(b.At(6, 20), "n", ast.NoNodeID)),
						b.Assign(b.At(6, 23), "+=", b.Loc(b.At(6, 23), "i", ast.NoNodeID), b.IntLit(b.At(6, 28), 1)),
						b.Block(b.At(6, 31),
							b.Assign(b.At(7, 7), "+=", b.Loc(b.At(7, 7), "acc", ast.NoNodeID), b.Loc(b.At(7, 14), "i", ast.NoNodeID)),
						),
					),
					b.Return(b.At(9, 5), b.Loc(b.At(9, 12), "acc", ast.NoNodeID)),
				),
			),
			b.Method(b.At(11, 3), "main", types.Void, nil,
				b.Block(b.At(11, 15),
					b.While(b.At(12, 5), b.BoolLit(b.At(12, 12), true),
						b.Block(b.At(12, 18),
							b.If(b.At(13, 7),
								b.Binary(b.At(13, 20), "==", b.Call(b.At(13, 11), "sum", b.IntLit(b.At(13, 15), 3)), b.IntLit(b.At(13, 23), 6)),
								b.Block(b.At(13, 26), b.Break(b.At(13, 28))),
								b.Block(b.At(13, 42), b.Continue(b.At(13, 44))),
							),
						),
					),
					b.LibCall(b.At(15, 5), "printf", b.StringLit(b.At(15, 12), "done\n"), b.Loc(b.At(15, 22), "buf", b.IntLit(b.At(15, 26), 0))),
				),
			),
		)
	},
	func(b *ast.Builder) ast.NodeID {
		return b.Class(b.At(1, 1), "Program",
			b.Field(b.At(2, 3), "c", types.Char),
			b.Method(b.At(3, 3), "main", types.Int, nil,
				b.Block(b.At(3, 14),
					b.Assign(b.At(4, 5), "=", b.Loc(b.At(4, 5), "c", ast.NoNodeID), b.CharLit(b.At(4, 9), 'q')),
					b.Assign(b.At(5, 5), "=", b.Loc(b.At(5, 5), "y", ast.NoNodeID), b.Unary(b.At(5, 9), "!", b.IntLit(b.At(5, 10), 1))),
					b.Return(b.At(6, 5), ast.NoNodeID),
				),
			),
		)
	},
	func(b *ast.Builder) ast.NodeID {
		return b.Class(b.At(1, 1), "Program",
			b.Method(b.At(2, 3), "main", types.Void, nil,
				b.Block(b.At(2, 15),
					b.Var(b.At(3, 5), "y", types.Int,
						b.Unary(b.At(3, 13), "-", b.Unary(b.At(3, 14), "-", b.IntLit(b.At(3, 15), 7)))),
				),
			),
		)
	},
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
