package ast

import "errors"

// Contract violations. They signal a bug in the caller, not in the program
// being analyzed.
var (
	ErrBadPointer     = errors.New("bad pointer")
	ErrInvalidIndex   = errors.New("invalid index")
	ErrHasParent      = errors.New("node already has a parent")
	ErrTypeAlreadySet = errors.New("node type already set")
)
