package engine

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-ena/ena"
)

var (
	// ErrInvalidJump reports a jump signal naming an out-of-range node or
	// location. Unlike Abort/Jump themselves it is a fatal evaluation error.
	ErrInvalidJump = errors.New("engine: invalid jump relocation")

	// ErrCorruptSnapshot reports a snapshot whose current-location field
	// does not index a location of its node.
	ErrCorruptSnapshot = errors.New("engine: snapshot current location out of range")
)

// EvalError is a fatal evaluation failure during one firing attempt,
// carrying the path of the failing transition.
type EvalError struct {
	Path ena.Path
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("engine: evaluation failed at %s: %v", e.Path, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
