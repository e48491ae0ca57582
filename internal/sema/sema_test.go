package sema

import (
	"errors"
	"testing"

	"github.com/go-test/deep"

	"decaf/internal/ast"
	"decaf/internal/diag"
	"decaf/internal/testkit"
	"decaf/internal/trace"
	"decaf/internal/types"
)

const none = ast.NoNodeID

func newBuilder() *ast.Builder {
	return ast.NewBuilder("prog.decaf", 64)
}

func program(b *ast.Builder, members ...ast.NodeID) ast.NodeID {
	return b.Class(b.At(1, 1), "Program", members...)
}

func mainWith(b *ast.Builder, stmts ...ast.NodeID) ast.NodeID {
	return b.Method(b.At(100, 3), "main", types.Void, nil, b.Block(b.At(100, 15), stmts...))
}

func run(t *testing.T, b *ast.Builder, root ast.NodeID, opts Options) (Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	opts.Reporter = diag.BagReporter{Bag: bag}
	return Analyze(b.Tree, root, opts), bag
}

func wantCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	if want == nil {
		want = []diag.Code{}
	}
	if diff := deep.Equal(bag.Codes(), want); diff != nil {
		for _, d := range bag.Items() {
			t.Logf("  %s %s", d.Code.ID(), d)
		}
		t.Fatalf("unexpected diagnostics: %v", diff)
	}
}

func TestMinimalProgram(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b))
	res, bag := run(t, b, root, Options{})
	wantCodes(t, bag)
	if !res.OK || res.Errors != 0 {
		t.Fatalf("expected OK result, got %+v", res)
	}
	// program, class, main; the body block shares the method scope
	want := Result{Root: root, OK: true}
	want.Symbols.Scopes, want.Symbols.Entries = 3, 2
	if diff := deep.Equal(res, want); diff != nil {
		t.Fatalf("unexpected result: %v", diff)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	b := newBuilder()
	root := program(b,
		b.Field(b.At(2, 3), "x", types.Int),
		b.Field(b.At(3, 3), "x", types.Bool),
		mainWith(b),
	)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaDuplicateDeclaration)
	if got := bag.Items()[0].Primary; got != b.At(3, 3) {
		t.Fatalf("duplicate must be reported on the second declaration, got %s", got)
	}
}

func TestDuplicateMethodNames(t *testing.T) {
	b := newBuilder()
	first := b.Method(b.At(2, 3), "f", types.Int, nil, b.Block(b.At(2, 12), b.Return(b.At(2, 14), b.IntLit(b.At(2, 21), 1))))
	second := b.Method(b.At(3, 3), "f", types.Bool, nil, b.Block(b.At(3, 12), b.Return(b.At(3, 14), b.BoolLit(b.At(3, 21), true))))
	call := b.Call(b.At(5, 9), "f")
	root := program(b, first, second, mainWith(b,
		b.Var(b.At(5, 5), "r", types.Int, call),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaDuplicateDeclaration)
	if got := b.Tree.Get(call).Type; got != types.Int {
		t.Fatalf("first declaration must win, call typed %s", got)
	}
}

func TestParameterAndBodyShareScope(t *testing.T) {
	b := newBuilder()
	f := b.Method(b.At(2, 3), "f", types.Int,
		[]ast.NodeID{b.Param(b.At(2, 10), "a", types.Int)},
		b.Block(b.At(2, 17),
			b.Var(b.At(3, 5), "a", types.Int, none),
			b.Return(b.At(4, 5), b.Loc(b.At(4, 12), "a", none)),
		))
	root := program(b, f, mainWith(b))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaDuplicateDeclaration)
	if got := bag.Items()[0].Primary; got != b.At(3, 5) {
		t.Fatalf("unexpected position %s", got)
	}
}

func TestInnerBlockScope(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b,
		b.Var(b.At(2, 5), "x", types.Int, none),
		b.Block(b.At(3, 5),
			b.Var(b.At(4, 7), "x", types.Bool, none),
			b.Var(b.At(5, 7), "y", types.Int, none),
			b.Assign(b.At(6, 7), "=", b.Loc(b.At(6, 7), "x", none), b.BoolLit(b.At(6, 11), true)),
		),
		b.Assign(b.At(8, 5), "=", b.Loc(b.At(8, 5), "x", none), b.IntLit(b.At(8, 9), 1)),
		b.Assign(b.At(9, 5), "=", b.Loc(b.At(9, 5), "y", none), b.IntLit(b.At(9, 9), 2)),
	))
	_, bag := run(t, b, root, Options{})
	// inner x shadows, outer x is int again after the block, y is gone
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
	if got := bag.Items()[0].Primary; got != b.At(9, 5) {
		t.Fatalf("unexpected position %s", got)
	}
}

func TestForwardReferenceIsUndefined(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b,
		b.Assign(b.At(2, 5), "=", b.Loc(b.At(2, 5), "x", none), b.IntLit(b.At(2, 9), 1)),
		b.Var(b.At(3, 5), "x", types.Int, none),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
}

func TestArithmeticTyping(t *testing.T) {
	b := newBuilder()
	bad := b.Binary(b.At(3, 11), "+", b.IntLit(b.At(3, 9), 3), b.BoolLit(b.At(3, 13), true))
	good := b.Binary(b.At(4, 11), "+", b.IntLit(b.At(4, 9), 3), b.IntLit(b.At(4, 13), 4))
	root := program(b, mainWith(b,
		b.Var(b.At(2, 5), "r", types.Int, none),
		b.Assign(b.At(3, 5), "=", b.Loc(b.At(3, 5), "r", none), bad),
		b.Assign(b.At(4, 5), "=", b.Loc(b.At(4, 5), "r", none), good),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaRightOperandWrongType)
	if got := bag.Items()[0].Primary; got != b.At(3, 13) {
		t.Fatalf("expected the right operand position, got %s", got)
	}
	if got := b.Tree.Get(good).Type; got != types.Int {
		t.Fatalf("3 + 4 must be int, got %s", got)
	}
}

func TestOperatorRules(t *testing.T) {
	cases := []struct {
		name string
		expr func(b *ast.Builder) ast.NodeID
		ty   types.Type
		want []diag.Code
	}{
		{"relational", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "<", b.IntLit(b.At(3, 9), 1), b.IntLit(b.At(3, 13), 2))
		}, types.Bool, nil},
		{"logical left", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "&&", b.IntLit(b.At(3, 9), 1), b.BoolLit(b.At(3, 14), true))
		}, types.Bool, []diag.Code{diag.SemaLeftOperandWrongType}},
		{"logical both", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "||", b.IntLit(b.At(3, 9), 1), b.CharLit(b.At(3, 14), 'c'))
		}, types.Bool, []diag.Code{diag.SemaLeftOperandWrongType, diag.SemaRightOperandWrongType}},
		{"unknown operator is logical", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "^^", b.BoolLit(b.At(3, 9), true), b.BoolLit(b.At(3, 14), false))
		}, types.Bool, nil},
		{"equality same type", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "==", b.CharLit(b.At(3, 9), 'a'), b.CharLit(b.At(3, 14), 'b'))
		}, types.Bool, nil},
		{"equality mismatch", func(b *ast.Builder) ast.NodeID {
			return b.Binary(b.At(3, 9), "!=", b.IntLit(b.At(3, 9), 1), b.BoolLit(b.At(3, 14), false))
		}, types.Bool, []diag.Code{diag.SemaRightOperandWrongType}},
		{"not on int", func(b *ast.Builder) ast.NodeID {
			return b.Unary(b.At(3, 9), "!", b.IntLit(b.At(3, 10), 1))
		}, types.Bool, []diag.Code{diag.SemaNotOperatorNotBool}},
		{"not on boolean", func(b *ast.Builder) ast.NodeID {
			return b.Unary(b.At(3, 9), "!", b.BoolLit(b.At(3, 10), false))
		}, types.Bool, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			expr := tc.expr(b)
			root := program(b, mainWith(b, b.Var(b.At(3, 5), "v", tc.ty, expr)))
			_, bag := run(t, b, root, Options{})
			wantCodes(t, bag, tc.want...)
			if got := b.Tree.Get(expr).Type; got != tc.ty {
				t.Fatalf("expected %s, got %s", tc.ty, got)
			}
		})
	}
}

func TestUnaryMinusOnBoolean(t *testing.T) {
	b := newBuilder()
	neg := b.Unary(b.At(2, 13), "-", b.BoolLit(b.At(2, 14), true))
	root := program(b, mainWith(b, b.Var(b.At(2, 5), "v", types.Int, neg)))
	res, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUnaryMinusNotInt)
	if res.Folds != 0 || b.Tree.Get(neg) == nil {
		t.Fatalf("only integer literals fold")
	}
}

func TestAssignments(t *testing.T) {
	b := newBuilder()
	root := program(b,
		b.Field(b.At(2, 3), "flag", types.Bool),
		mainWith(b,
			b.Var(b.At(3, 5), "n", types.Int, none),
			b.Assign(b.At(4, 5), "=", b.Loc(b.At(4, 5), "n", none), b.BoolLit(b.At(4, 9), true)),
			b.Assign(b.At(5, 5), "+=", b.Loc(b.At(5, 5), "flag", none), b.BoolLit(b.At(5, 13), true)),
			b.Assign(b.At(6, 5), "-=", b.Loc(b.At(6, 5), "n", none), b.IntLit(b.At(6, 10), 1)),
		),
	)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaAssignTypeMismatch, diag.SemaCompoundAssignNotInt)
}

func TestVariableInitializer(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b,
		b.Var(b.At(2, 5), "ok", types.Char, b.CharLit(b.At(2, 15), 'x')),
		b.Var(b.At(3, 5), "bad", types.Int, b.StringLit(b.At(3, 15), "hi")),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaAssignTypeMismatch)
	if got := bag.Items()[0].Primary; got != b.At(3, 15) {
		t.Fatalf("mismatch belongs to the initializer, got %s", got)
	}
}

func TestNoCascadeFromUnknownOperand(t *testing.T) {
	b := newBuilder()
	sum := b.Binary(b.At(3, 11), "+", b.Loc(b.At(3, 9), "missing", none), b.IntLit(b.At(3, 13), 1))
	root := program(b, mainWith(b,
		b.Var(b.At(2, 5), "r", types.Bool, none),
		b.Assign(b.At(3, 5), "=", b.Loc(b.At(3, 5), "r", none), b.Binary(b.At(3, 15), ">", sum, b.IntLit(b.At(3, 17), 0))),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
}

func TestArrayAccess(t *testing.T) {
	b := newBuilder()
	scalarIndexed := b.Loc(b.At(4, 9), "x", b.IntLit(b.At(4, 11), 0))
	missingIndex := b.Loc(b.At(5, 9), "a", none)
	indexed := b.Loc(b.At(6, 9), "a", b.IntLit(b.At(6, 11), 1))
	boolIndex := b.BoolLit(b.At(7, 11), true)
	root := program(b,
		b.Field(b.At(2, 3), "x", types.Int),
		b.FieldArray(b.At(3, 3), "a", types.Int, 10),
		mainWith(b,
			b.Var(b.At(4, 5), "p", types.Int, scalarIndexed),
			b.Var(b.At(5, 5), "q", types.Int, missingIndex),
			b.Var(b.At(6, 5), "r", types.Int, indexed),
			b.Var(b.At(7, 5), "s", types.Int, b.Loc(b.At(7, 9), "a", boolIndex)),
		),
	)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaArrayAccessOnNonArray, diag.SemaMissingArrayIndex, diag.SemaArrayIndexNotInt)
	if got := b.Tree.Get(indexed).Type; got != types.Int {
		t.Fatalf("a[1] must be the element type, got %s", got)
	}
	if got := b.Tree.Get(missingIndex).Type; got != types.Unknown {
		t.Fatalf("array without index stays unknown, got %s", got)
	}
	if got := bag.Items()[2].Primary; got != b.At(7, 11) {
		t.Fatalf("index error belongs to the index, got %s", got)
	}
}

func TestInvalidArraySize(t *testing.T) {
	b := newBuilder()
	root := program(b,
		b.FieldArray(b.At(2, 3), "a", types.Int, 0),
		b.FieldArray(b.At(3, 3), "ok", types.Bool, 1),
		mainWith(b, b.VarArray(b.At(4, 5), "local", types.Char, -2)),
	)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaInvalidArraySize, diag.SemaInvalidArraySize)
}

func TestReturnMatching(t *testing.T) {
	b := newBuilder()
	bad := b.Method(b.At(2, 3), "bad", types.Int, nil,
		b.Block(b.At(2, 14), b.Return(b.At(3, 5), b.BoolLit(b.At(3, 12), true))))
	good := b.Method(b.At(5, 3), "good", types.Int, nil,
		b.Block(b.At(5, 14), b.Return(b.At(6, 5), b.IntLit(b.At(6, 12), 1))))
	empty := b.Method(b.At(8, 3), "empty", types.Int, nil,
		b.Block(b.At(8, 14), b.Return(b.At(9, 5), none)))
	root := program(b, bad, good, empty, mainWith(b, b.Return(b.At(100, 17), none)))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaReturnTypeMismatch, diag.SemaReturnTypeMismatch)
	if got := bag.Items()[0].Primary; got != b.At(3, 5) {
		t.Fatalf("unexpected position %s", got)
	}
}

func callFixture(b *ast.Builder, args ...ast.NodeID) (root, call ast.NodeID) {
	f := b.Method(b.At(2, 3), "f", types.Void,
		[]ast.NodeID{b.Param(b.At(2, 10), "a", types.Int), b.Param(b.At(2, 17), "b", types.Int)},
		b.Block(b.At(2, 24)))
	call = b.Call(b.At(5, 5), "f", args...)
	return program(b, f, mainWith(b, call)), call
}

func TestCallArity(t *testing.T) {
	b := newBuilder()
	root, _ := callFixture(b, b.IntLit(b.At(5, 7), 1))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaArityMismatch)
	d := bag.Items()[0]
	if d.Message != "method 'f' takes 2 arguments, got 1" || len(d.Notes) != 1 || d.Notes[0].Pos != b.At(2, 3) {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestCallParameterTypes(t *testing.T) {
	b := newBuilder()
	second := b.BoolLit(b.At(5, 10), true)
	root, _ := callFixture(b, b.IntLit(b.At(5, 7), 1), second)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaParamTypeMismatch)
	if got := bag.Items()[0].Primary; got != b.At(5, 10) {
		t.Fatalf("mismatch must point at the second argument, got %s", got)
	}
}

func TestCallOK(t *testing.T) {
	b := newBuilder()
	root, call := callFixture(b, b.IntLit(b.At(5, 7), 1), b.IntLit(b.At(5, 10), 2))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag)
	if got := b.Tree.Get(call).Type; got != types.Void {
		t.Fatalf("call must take the method type, got %s", got)
	}
}

func TestCallUndefinedMethod(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b, b.Call(b.At(2, 5), "nowhere")))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUndefinedMethod)
}

func TestCallBeforeDeclaration(t *testing.T) {
	b := newBuilder()
	main := mainWith(b, b.Call(b.At(100, 20), "later"))
	later := b.Method(b.At(200, 3), "later", types.Void, nil, b.Block(b.At(200, 18)))
	root := program(b, main, later)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
	if notes := bag.Items()[0].Notes; len(notes) != 1 || notes[0].Pos != b.At(200, 3) {
		t.Fatalf("expected a note at the declaration, got %+v", notes)
	}
}

func TestCallShadowedByVariable(t *testing.T) {
	b := newBuilder()
	f := b.Method(b.At(2, 3), "f", types.Void, nil, b.Block(b.At(2, 12)))
	root := program(b, f, mainWith(b,
		b.Var(b.At(3, 5), "f", types.Int, none),
		b.Call(b.At(4, 5), "f"),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
}

func TestRecursiveCall(t *testing.T) {
	b := newBuilder()
	fact := b.Method(b.At(2, 3), "fact", types.Int,
		[]ast.NodeID{b.Param(b.At(2, 12), "n", types.Int)},
		b.Block(b.At(2, 19),
			b.Return(b.At(3, 5), b.Binary(b.At(3, 14), "*",
				b.Loc(b.At(3, 12), "n", none),
				b.Call(b.At(3, 16), "fact", b.Binary(b.At(3, 23), "-", b.Loc(b.At(3, 21), "n", none), b.IntLit(b.At(3, 25), 1))),
			)),
		))
	root := program(b, fact, mainWith(b))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag)
}

func TestLibraryCall(t *testing.T) {
	b := newBuilder()
	lib := b.LibCall(b.At(2, 13), "printf", b.StringLit(b.At(2, 20), "%d"), b.Loc(b.At(2, 26), "ghost", none))
	root := program(b, mainWith(b, b.Var(b.At(2, 5), "r", types.Int, lib)))
	_, bag := run(t, b, root, Options{})
	// the call is external; its arguments are still checked
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
	if got := b.Tree.Get(lib).Type; got != types.Int {
		t.Fatalf("library calls are int, got %s", got)
	}
}

func TestUnaryMinusFold(t *testing.T) {
	b := newBuilder()
	neg := b.Unary(b.At(5, 7), "-", b.IntLit(b.At(5, 8), 5))
	two := b.IntLit(b.At(5, 11), 2)
	root, call := callFixture(b, neg, two)
	before := b.Tree.Len()

	res, bag := run(t, b, root, Options{})
	wantCodes(t, bag)
	if res.Folds != 1 {
		t.Fatalf("expected one fold, got %d", res.Folds)
	}
	args := b.Tree.Get(call).Children
	if len(args) != 2 || args[1] != two {
		t.Fatalf("siblings must not move: %v", args)
	}
	lit := b.Tree.Get(args[0])
	if lit == nil || lit.Kind != ast.KindIntLit || lit.Value.Int != -5 || lit.Type != types.Int {
		t.Fatalf("expected literal -5 in place, got %+v", lit)
	}
	if lit.Parent != call || lit.Pos != b.At(5, 7) {
		t.Fatalf("folded literal must take the operation's place, got parent %d pos %s", lit.Parent, lit.Pos)
	}
	if b.Tree.Get(neg) != nil {
		t.Fatalf("the operation must be released")
	}
	if got := b.Tree.Len(); got != before-1 {
		t.Fatalf("expected %d live nodes, got %d", before-1, got)
	}
}

func TestFoldInsideTypedExpression(t *testing.T) {
	b := newBuilder()
	sum := b.Binary(b.At(2, 15), "+", b.Unary(b.At(2, 13), "-", b.IntLit(b.At(2, 14), 3)), b.IntLit(b.At(2, 17), 4))
	nested := b.Unary(b.At(3, 13), "-", b.Unary(b.At(3, 14), "-", b.IntLit(b.At(3, 15), 7)))
	y := b.Var(b.At(3, 5), "y", types.Int, nested)
	root := program(b, mainWith(b,
		b.Var(b.At(2, 5), "x", types.Int, sum),
		y,
	))
	res, bag := run(t, b, root, Options{})
	wantCodes(t, bag)
	if res.Folds != 3 {
		t.Fatalf("expected three folds, got %d", res.Folds)
	}
	left := b.Tree.Get(b.Tree.Get(sum).Children[0])
	if left.Kind != ast.KindIntLit || left.Value.Int != -3 {
		t.Fatalf("left operand must fold to -3, got %+v", left)
	}
	// внутренний минус сворачивается первым, затем внешний
	if b.Tree.Get(nested) != nil {
		t.Fatalf("outer minus must be released")
	}
	lit := b.Tree.Get(b.Tree.Get(y).Child(0))
	if lit == nil || lit.Kind != ast.KindIntLit || lit.Value.Int != 7 || lit.Type != types.Int || lit.Pos != b.At(3, 13) {
		t.Fatalf("-(-7) must collapse into literal 7 at the outer minus, got %+v", lit)
	}
	if err := testkit.CheckAnalyzed(b.Tree, root); err != nil {
		t.Fatalf("analyzed tree: %v", err)
	}
}

func TestVarInitializerSeesItsOwnDeclaration(t *testing.T) {
	// объявление вставляется до обхода инициализатора: x справа это
	// локальный int, а не boolean-поле
	b := newBuilder()
	root := program(b,
		b.Field(b.At(2, 3), "x", types.Bool),
		mainWith(b, b.Var(b.At(3, 5), "x", types.Int, b.Loc(b.At(3, 13), "x", ast.NoNodeID))),
	)
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag)

	b = newBuilder()
	root = program(b, mainWith(b, b.Var(b.At(3, 5), "z", types.Int, b.Loc(b.At(3, 13), "z", ast.NoNodeID))))
	_, bag = run(t, b, root, Options{})
	wantCodes(t, bag)
}

func TestEntryPoint(t *testing.T) {
	cases := []struct {
		name    string
		members func(b *ast.Builder) []ast.NodeID
		want    []diag.Code
	}{
		{"missing", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.Method(b.At(2, 3), "helper", types.Void, nil, b.Block(b.At(2, 17)))}
		}, []diag.Code{diag.SemaMissingMainMethod}},
		{"field named main", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.Field(b.At(2, 3), "main", types.Int)}
		}, []diag.Code{diag.SemaMissingMainMethod}},
		{"main with parameters", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{b.Method(b.At(2, 3), "main", types.Void,
				[]ast.NodeID{b.Param(b.At(2, 13), "argc", types.Int)}, b.Block(b.At(2, 23)))}
		}, []diag.Code{diag.SemaMissingMainMethod}},
		{"main method", func(b *ast.Builder) []ast.NodeID {
			return []ast.NodeID{mainWith(b)}
		}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			_, bag := run(t, b, program(b, tc.members(b)...), Options{})
			wantCodes(t, bag, tc.want...)
		})
	}
}

func TestCustomEntryPoint(t *testing.T) {
	b := newBuilder()
	root := program(b, b.Method(b.At(2, 3), "start", types.Void, nil, b.Block(b.At(2, 16))))
	_, bag := run(t, b, root, Options{EntryPoint: "start"})
	wantCodes(t, bag)
}

func forFixture(b *ast.Builder, cond func() ast.NodeID) ast.NodeID {
	loop := b.For(b.At(2, 5),
		b.Var(b.At(2, 10), "i", types.Int, b.IntLit(b.At(2, 18), 0)),
		cond(),
		b.Assign(b.At(2, 28), "+=", b.Loc(b.At(2, 28), "i", none), b.IntLit(b.At(2, 33), 1)),
		b.Block(b.At(2, 36),
			b.Var(b.At(3, 7), "sq", types.Int, b.Binary(b.At(3, 18), "*", b.Loc(b.At(3, 16), "i", none), b.Loc(b.At(3, 20), "i", none))),
		),
	)
	return program(b, mainWith(b,
		loop,
		b.Assign(b.At(5, 5), "=", b.Loc(b.At(5, 5), "i", none), b.IntLit(b.At(5, 9), 2)),
	))
}

func TestForStatement(t *testing.T) {
	b := newBuilder()
	root := forFixture(b, func() ast.NodeID {
		return b.Binary(b.At(2, 22), "<", b.Loc(b.At(2, 20), "i", none), b.IntLit(b.At(2, 24), 10))
	})
	_, bag := run(t, b, root, Options{})
	// the loop variable is gone after the loop
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
	if got := bag.Items()[0].Primary; got != b.At(5, 5) {
		t.Fatalf("unexpected position %s", got)
	}
}

func TestForConditionRules(t *testing.T) {
	intCond := func(b *ast.Builder) func() ast.NodeID {
		return func() ast.NodeID { return b.Loc(b.At(2, 20), "i", none) }
	}
	boolCond := func(b *ast.Builder) func() ast.NodeID {
		return func() ast.NodeID { return b.BoolLit(b.At(2, 20), true) }
	}
	cases := []struct {
		name string
		rule ForCondition
		cond func(b *ast.Builder) func() ast.NodeID
		want diag.Code
	}{
		{"boolean rule with int", ForConditionBoolean, intCond, diag.SemaExpectedBoolean},
		{"int rule with boolean", ForConditionInt, boolCond, diag.SemaExpectedIntLoopCond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBuilder()
			_, bag := run(t, b, forFixture(b, tc.cond(b)), Options{ForCondition: tc.rule})
			wantCodes(t, bag, tc.want, diag.SemaUndefinedSymbol)
		})
	}

	b := newBuilder()
	_, bag := run(t, b, forFixture(b, intCond(b)), Options{ForCondition: ForConditionInt})
	wantCodes(t, bag, diag.SemaUndefinedSymbol)
}

func TestParseForCondition(t *testing.T) {
	for in, want := range map[string]ForCondition{"": ForConditionBoolean, "Boolean": ForConditionBoolean, "int": ForConditionInt} {
		got, err := ParseForCondition(in)
		if err != nil || got != want {
			t.Fatalf("ParseForCondition(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseForCondition("char"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConditions(t *testing.T) {
	b := newBuilder()
	root := program(b, mainWith(b,
		b.If(b.At(2, 5), b.IntLit(b.At(2, 9), 1), b.Block(b.At(2, 12)), b.Block(b.At(2, 20))),
		b.If(b.At(3, 5), b.BoolLit(b.At(3, 9), true), b.Block(b.At(3, 15), b.Break(b.At(3, 17))), none),
		b.While(b.At(4, 5), b.CharLit(b.At(4, 12), 'c'), b.Block(b.At(4, 16), b.Continue(b.At(4, 18)))),
	))
	_, bag := run(t, b, root, Options{})
	wantCodes(t, bag, diag.SemaExpectedBoolean, diag.SemaExpectedBoolean)
	if got := bag.Items()[1].Primary; got != b.At(4, 12) {
		t.Fatalf("while error must point at the condition, got %s", got)
	}
}

func TestWalkContinuesAfterErrors(t *testing.T) {
	b := newBuilder()
	root := program(b,
		b.FieldArray(b.At(2, 3), "a", types.Int, 0),
		b.Method(b.At(3, 3), "f", types.Int, nil, b.Block(b.At(3, 12), b.Return(b.At(3, 14), none))),
		b.Method(b.At(4, 3), "g", types.Void, nil, b.Block(b.At(4, 12), b.Call(b.At(4, 14), "h"))),
	)
	res, bag := run(t, b, root, Options{})
	wantCodes(t, bag,
		diag.SemaInvalidArraySize,
		diag.SemaReturnTypeMismatch,
		diag.SemaUndefinedMethod,
		diag.SemaMissingMainMethod,
	)
	if res.OK || res.Errors != 4 || res.Diagnostics != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBadRootPanics(t *testing.T) {
	b := newBuilder()
	block := b.Block(b.At(1, 1))
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrBadRoot) {
			t.Fatalf("expected ErrBadRoot panic, got %v", err)
		}
	}()
	Analyze(b.Tree, block, Options{})
}

func TestNodeTracing(t *testing.T) {
	b := newBuilder()
	root, _ := callFixture(b, b.Unary(b.At(5, 7), "-", b.IntLit(b.At(5, 8), 5)), b.IntLit(b.At(5, 11), 2))
	ring := trace.NewRingTracer(128, trace.LevelDebug)
	_, bag := run(t, b, root, Options{Tracer: ring})
	wantCodes(t, bag)

	counts := map[string]int{}
	for _, ev := range ring.Snapshot() {
		counts[ev.Name]++
		if ev.Name == "fold" && ev.Pos != b.At(5, 7) {
			t.Fatalf("fold traced at %s, want the unary position", ev.Pos)
		}
	}
	// program scope is opened by Analyze itself, not traced as a node
	want := map[string]int{"sema": 2, "scope.open": 3, "scope.close": 3, "fold": 1}
	if diff := deep.Equal(counts, want); diff != nil {
		t.Fatalf("unexpected trace events: %v", diff)
	}
}
