package reachability

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-ena/engine"
	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/expr"
)

var (
	ErrAssertViolated   = errors.New("reachability: assertion violated")
	ErrAssertEvaluation = errors.New("reachability: assertion evaluation error")
)

// Assert is a boolean property checked on every visited snapshot, in the
// full-system scope (no transition-local bindings).
type Assert struct {
	Source string
	prog   expr.Evaluable
}

// CompileAssert compiles an assertion expression.
func CompileAssert(src string) (*Assert, error) {
	prog, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrAssertEvaluation, src, err)
	}
	return &Assert{Source: src, prog: prog}, nil
}

// AssertFn wraps a native predicate as an assertion.
func AssertFn(name string, e expr.Evaluable) *Assert {
	return &Assert{Source: name, prog: e}
}

// Check evaluates the assertion against a snapshot. A false result yields a
// Violation with nil Err; an evaluation failure yields a Violation carrying
// the error detail.
func (a *Assert) Check(sys *ena.System, snap ena.Snapshot) *Violation {
	ok, err := expr.EvalBool(a.prog, engine.AssertScope(sys, snap))
	if err != nil {
		return &Violation{Assert: a, Snapshot: snap, Err: err}
	}
	if !ok {
		return &Violation{Assert: a, Snapshot: snap}
	}
	return nil
}

// Violation describes a failed assertion check.
type Violation struct {
	Assert   *Assert
	State    *State
	Snapshot ena.Snapshot
	Err      error // nil if the assertion evaluated to false; non-nil if evaluation failed
}

func (v *Violation) Error() string {
	if v.Err != nil {
		return fmt.Sprintf("%v: %q on state %s: %v", ErrAssertEvaluation, v.Assert.Source, v.Snapshot, v.Err)
	}
	return fmt.Sprintf("%v: %q on state %s", ErrAssertViolated, v.Assert.Source, v.Snapshot)
}
