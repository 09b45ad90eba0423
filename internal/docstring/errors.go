package docstring

import (
	"errors"
	"fmt"
)

var (
	// ErrCyclicTree indicates a symbol that is its own ancestor.
	ErrCyclicTree = errors.New("symbol tree contains a cycle")

	// ErrSharedSymbol indicates a symbol reachable through more than one parent.
	ErrSharedSymbol = errors.New("symbol has more than one parent")

	// ErrNilSymbol indicates a nil root or child.
	ErrNilSymbol = errors.New("nil symbol")
)

// StructureError reports a symbol tree that violates the tree contract.
type StructureError struct {
	Path string // dotted path of the offending symbol
	Err  error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid symbol tree at %q: %v", e.Path, e.Err)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
