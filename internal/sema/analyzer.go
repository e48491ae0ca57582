package sema

import (
	"errors"
	"fmt"
	"strconv"

	"decaf/internal/ast"
	"decaf/internal/symbols"
	"decaf/internal/trace"
)

// ErrBadRoot reports a tree whose root is not a class declaration.
var ErrBadRoot = errors.New("root is not a class declaration")

// Result summarises one analysis. The tree itself is annotated in place.
type Result struct {
	Root        ast.NodeID
	Symbols     symbols.DestroyStats
	Folds       int
	Diagnostics int
	Errors      int
	OK          bool // no error diagnostics
}

type analyzer struct {
	tree     *ast.Tree
	table    *symbols.Table
	reporter *countingReporter
	tracer   trace.Tracer
	span     uint64
	opts     Options
	root     ast.NodeID

	determined map[ast.NodeID]struct{}
	folds      int
	traceNodes bool
}

// Analyze walks the tree rooted at root, a class declaration. It annotates
// expression types in place, folds unary minus over integer literals and
// reports every semantic problem through opts.Reporter.
//
// Analyze never returns an error for a bad program; a malformed tree or a
// misuse of the symbol table panics.
func Analyze(tree *ast.Tree, root ast.NodeID, opts Options) Result {
	n := tree.Get(root)
	if n == nil {
		panic(fmt.Errorf("analyze %d: %w", root, ast.ErrBadPointer))
	}
	if n.Kind != ast.KindClassDecl {
		panic(fmt.Errorf("analyze %d (%s): %w", root, n.Kind, ErrBadRoot))
	}
	if opts.EntryPoint == "" {
		opts.EntryPoint = DefaultEntryPoint
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}

	a := &analyzer{
		tree:       tree,
		table:      symbols.NewTable(opts.Hints),
		reporter:   &countingReporter{next: opts.Reporter},
		tracer:     opts.Tracer,
		opts:       opts,
		root:       root,
		determined: make(map[ast.NodeID]struct{}, tree.Len()),
		traceNodes: opts.Tracer.Enabled() && opts.Tracer.Level().ShouldEmit(trace.ScopeNode),
	}

	span := trace.Begin(a.tracer, trace.ScopePass, "sema", opts.TraceParent)
	a.span = span.ID()

	// Программная область видимости: в ней живёт только имя класса.
	a.table.BeginScope()
	a.visit(root)
	must(a.table.EndScope())
	stats := a.table.Destroy()

	res := Result{
		Root:        root,
		Symbols:     stats,
		Folds:       a.folds,
		Diagnostics: a.reporter.total,
		Errors:      a.reporter.errors,
		OK:          a.reporter.errors == 0,
	}
	span.WithExtra("diagnostics", strconv.Itoa(res.Diagnostics)).
		WithExtra("scopes", strconv.Itoa(stats.Scopes)).
		WithExtra("folds", strconv.Itoa(res.Folds)).
		End("")
	return res
}

// opensScope is the scope-opening rule: class, method and for nodes, and
// blocks that are not the body of a method or a for statement. Parameters
// and the loop variable share one scope with the body that follows them.
func (a *analyzer) opensScope(n *ast.Node) bool {
	switch n.Kind {
	case ast.KindClassDecl, ast.KindMethodDecl, ast.KindFor:
		return true
	case ast.KindBlock:
		parent := a.tree.Get(n.Parent)
		return parent == nil || (parent.Kind != ast.KindMethodDecl && parent.Kind != ast.KindFor)
	}
	return false
}

func (a *analyzer) visit(id ast.NodeID) {
	id = a.foldUnaryMinus(id)
	n := a.node(id)
	kind := n.Kind

	if kind.IsExpr() {
		a.determine(id)
	}
	switch kind {
	case ast.KindLocation:
		a.checkLocation(id)
	case ast.KindReturn:
		a.checkReturn(id)
	}
	if kind.IsDecl() {
		a.declare(id)
	}

	opened := a.opensScope(a.node(id))
	if opened {
		a.beginScope(id)
	}

	// Дети читаются из дерева на каждой итерации: свёртка заменяет
	// ребёнка на том же индексе.
	for i := 0; i < len(a.node(id).Children); i++ {
		a.visit(a.node(id).Children[i])
	}
	// -(-7): операнд стал литералом только после обхода детей
	if kind == ast.KindUnary {
		id = a.foldUnaryMinus(id)
	}

	switch kind {
	case ast.KindIf:
		a.checkCondition(a.node(id).Child(0), "if")
	case ast.KindWhile:
		a.checkCondition(a.node(id).Child(0), "while")
	case ast.KindFor:
		a.checkForCondition(id)
	case ast.KindMethodCall:
		a.checkCall(id)
	case ast.KindVarDecl:
		a.checkInitializer(id)
	}
	if id == a.root {
		a.checkEntryPoint()
	}

	if opened {
		a.endScope(id)
	}
}

// node returns a live node or panics.
func (a *analyzer) node(id ast.NodeID) *ast.Node {
	n := a.tree.Get(id)
	if n == nil {
		panic(fmt.Errorf("node %d: %w", id, ast.ErrBadPointer))
	}
	return n
}

func (a *analyzer) beginScope(owner ast.NodeID) {
	scope := a.table.BeginScope()
	if a.traceNodes {
		n := a.tree.Get(owner)
		trace.At(a.tracer, n.Pos, "scope.open", fmt.Sprintf("#%d %s depth=%d", scope, n.Kind.Name(), a.table.Depth()), a.span)
	}
}

func (a *analyzer) endScope(owner ast.NodeID) {
	scope := a.table.Current()
	must(a.table.EndScope())
	if a.traceNodes {
		n := a.tree.Get(owner)
		trace.At(a.tracer, n.Pos, "scope.close", fmt.Sprintf("#%d %s", scope, n.Kind.Name()), a.span)
	}
}
