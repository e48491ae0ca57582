// Package sema is the semantic analyzer: a single recursive pre/post-order
// walk over a syntax tree that opens and closes lexical scopes, registers
// declarations, resolves and checks expression types, validates statements
// and calls, folds unary minus over integer literals and requires an entry
// point.
//
// Problems in the program are reported through a diag.Reporter and the walk
// continues. Contract violations of the tree or the symbol table (a bad node
// handle, an out-of-range child index, closing a scope that is not open) are
// bugs and panic; the driver recovers them into errors.
package sema
