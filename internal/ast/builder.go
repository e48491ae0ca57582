package ast

import (
	"decaf/internal/source"
	"decaf/internal/types"
)

// Builder assembles well-shaped trees. It is what the tree decoder and the
// tests use in place of a parser.
type Builder struct {
	Tree *Tree
	File string
}

func NewBuilder(file string, capHint uint) *Builder {
	return &Builder{Tree: NewTree(capHint), File: file}
}

// At returns a position in the builder's file.
func (b *Builder) At(line, col uint32) source.Pos {
	return source.Pos{File: b.File, Line: line, Col: col}
}

func (b *Builder) attach(parent NodeID, children ...NodeID) NodeID {
	for _, child := range children {
		if !child.IsValid() {
			continue
		}
		if err := b.Tree.AddChild(parent, child); err != nil {
			panic(err)
		}
	}
	return parent
}

func (b *Builder) decl(kind Kind, pos source.Pos, name string, ty types.Type, flags Flags, length int64) NodeID {
	id := b.Tree.Create(kind, pos)
	d, _ := b.Tree.Get(id).Decl()
	d.Name = name
	d.DeclType = ty
	d.Flags = flags
	d.ArrayLen = length
	return id
}

func (b *Builder) ref(kind Kind, pos source.Pos, name string) NodeID {
	id := b.Tree.Create(kind, pos)
	r, _ := b.Tree.Get(id).Ref()
	r.Name = name
	return id
}

func (b *Builder) op(kind Kind, pos source.Pos, op string) NodeID {
	id := b.Tree.Create(kind, pos)
	o, _ := b.Tree.Get(id).Operation()
	o.Op = op
	return id
}

// Class builds the root class declaration; members are fields then methods.
func (b *Builder) Class(pos source.Pos, name string, members ...NodeID) NodeID {
	return b.attach(b.decl(KindClassDecl, pos, name, types.Void, 0, 0), members...)
}

func (b *Builder) Field(pos source.Pos, name string, ty types.Type) NodeID {
	return b.decl(KindFieldDecl, pos, name, ty, 0, 0)
}

func (b *Builder) FieldArray(pos source.Pos, name string, elem types.Type, length int64) NodeID {
	return b.decl(KindFieldDecl, pos, name, elem, FlagArray, length)
}

// Method builds a method declaration: parameters followed by the body block.
func (b *Builder) Method(pos source.Pos, name string, ret types.Type, params []NodeID, body NodeID) NodeID {
	id := b.decl(KindMethodDecl, pos, name, ret, FlagFunction, 0)
	b.attach(id, params...)
	return b.attach(id, body)
}

func (b *Builder) Param(pos source.Pos, name string, ty types.Type) NodeID {
	return b.decl(KindParamDecl, pos, name, ty, 0, 0)
}

// Var declares a local variable; init may be NoNodeID.
func (b *Builder) Var(pos source.Pos, name string, ty types.Type, init NodeID) NodeID {
	return b.attach(b.decl(KindVarDecl, pos, name, ty, 0, 0), init)
}

func (b *Builder) VarArray(pos source.Pos, name string, elem types.Type, length int64) NodeID {
	return b.decl(KindVarDecl, pos, name, elem, FlagArray, length)
}

func (b *Builder) Block(pos source.Pos, stmts ...NodeID) NodeID {
	return b.attach(b.Tree.Create(KindBlock, pos), stmts...)
}

// Loc builds a location; index is the optional subscript.
func (b *Builder) Loc(pos source.Pos, name string, index NodeID) NodeID {
	return b.attach(b.ref(KindLocation, pos, name), index)
}

func (b *Builder) Call(pos source.Pos, name string, args ...NodeID) NodeID {
	return b.attach(b.ref(KindMethodCall, pos, name), args...)
}

func (b *Builder) LibCall(pos source.Pos, name string, args ...NodeID) NodeID {
	return b.attach(b.ref(KindLibraryCall, pos, name), args...)
}

func (b *Builder) Unary(pos source.Pos, op string, operand NodeID) NodeID {
	return b.attach(b.op(KindUnary, pos, op), operand)
}

func (b *Builder) Binary(pos source.Pos, op string, left, right NodeID) NodeID {
	return b.attach(b.op(KindBinary, pos, op), left, right)
}

func (b *Builder) Assign(pos source.Pos, op string, target, value NodeID) NodeID {
	return b.attach(b.op(KindAssign, pos, op), target, value)
}

// If builds a conditional; els may be NoNodeID.
func (b *Builder) If(pos source.Pos, cond, then, els NodeID) NodeID {
	return b.attach(b.Tree.Create(KindIf, pos), cond, then, els)
}

func (b *Builder) For(pos source.Pos, init, cond, update, body NodeID) NodeID {
	return b.attach(b.Tree.Create(KindFor, pos), init, cond, update, body)
}

func (b *Builder) While(pos source.Pos, cond, body NodeID) NodeID {
	return b.attach(b.Tree.Create(KindWhile, pos), cond, body)
}

// Return builds a return statement; value may be NoNodeID.
func (b *Builder) Return(pos source.Pos, value NodeID) NodeID {
	return b.attach(b.Tree.Create(KindReturn, pos), value)
}

func (b *Builder) Break(pos source.Pos) NodeID    { return b.Tree.Create(KindBreak, pos) }
func (b *Builder) Continue(pos source.Pos) NodeID { return b.Tree.Create(KindContinue, pos) }

func (b *Builder) IntLit(pos source.Pos, v int64) NodeID {
	id := b.Tree.Create(KindIntLit, pos)
	b.Tree.Get(id).Value.Int = v
	return id
}

func (b *Builder) BoolLit(pos source.Pos, v bool) NodeID {
	id := b.Tree.Create(KindBoolLit, pos)
	b.Tree.Get(id).Value.Bool = v
	return id
}

func (b *Builder) CharLit(pos source.Pos, v rune) NodeID {
	id := b.Tree.Create(KindCharLit, pos)
	b.Tree.Get(id).Value.Char = v
	return id
}

func (b *Builder) StringLit(pos source.Pos, v string) NodeID {
	id := b.Tree.Create(KindStringLit, pos)
	b.Tree.Get(id).Value.Str = v
	return id
}
