package engine

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/expr"
)

// OutcomeKind classifies the result of one firing attempt.
type OutcomeKind int

const (
	// Rejected: guard false or explicit abort signal; no mutation took
	// effect. Expected control flow, never an error.
	Rejected OutcomeKind = iota
	// Committed: evaluation completed normally; tentative mutations plus
	// the default current = target assignment were committed.
	Committed
	// Jumped: evaluation raised a jump signal; mutations made before the
	// signal were retained and the relocation mapping applied in place of
	// the default target assignment.
	Jumped
)

func (k OutcomeKind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Committed:
		return "committed"
	case Jumped:
		return "jumped"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of one firing attempt. Snapshot and Value are set
// only for Committed and Jumped.
type Outcome struct {
	Kind     OutcomeKind
	Snapshot ena.Snapshot
	Value    ena.Value
}

// Executable reports whether the outcome yields a successor state.
func (o Outcome) Executable() bool {
	return o.Kind == Committed || o.Kind == Jumped
}

// Fire executes one transition against a snapshot. The input snapshot is
// never written to: guard, update, and cost evaluate against a tentative
// working copy that is either committed whole or discarded.
//
// Any evaluation error other than the Abort and Jump signals is fatal to
// the attempt and returned as an *EvalError carrying the failing path.
func Fire(sys *ena.System, snap ena.Snapshot, path ena.Path) (Outcome, error) {
	trans, err := sys.TransitionAt(path)
	if err != nil {
		return Outcome{}, err
	}

	w := snap.Copy()
	scope := buildScope(sys, w, path)

	if trans.Guard != nil {
		ok, err := expr.EvalBool(trans.Guard, scope)
		if err != nil {
			return signalOutcome(sys, w, path, err)
		}
		if !ok {
			return Outcome{Kind: Rejected}, nil
		}
	}

	if trans.Update != nil {
		if _, err := trans.Update.Eval(scope); err != nil {
			return signalOutcome(sys, w, path, err)
		}
	}

	var value ena.Value = int64(0)
	if trans.Cost != nil {
		v, err := trans.Cost.Eval(scope)
		if err != nil {
			return signalOutcome(sys, w, path, err)
		}
		value = v
	}

	w[ena.CurrentPath(path.Node)] = int64(trans.Target)
	return Outcome{Kind: Committed, Snapshot: w, Value: value}, nil
}

// signalOutcome turns an evaluation error into its outcome: Abort is the
// same as a false guard, Jump commits the tentative snapshot with the
// relocation mapping applied, and anything else is fatal.
func signalOutcome(sys *ena.System, w ena.Snapshot, path ena.Path, err error) (Outcome, error) {
	var abort *expr.AbortSignal
	if errors.As(err, &abort) {
		return Outcome{Kind: Rejected}, nil
	}

	var jump *expr.JumpSignal
	if errors.As(err, &jump) {
		for nid, loc := range jump.Jumps {
			if nid < 0 || nid >= len(sys.Nodes) {
				return Outcome{}, &EvalError{Path: path,
					Err: fmt.Errorf("%w: node %d out of range", ErrInvalidJump, nid)}
			}
			if loc < 0 || loc >= len(sys.Nodes[nid].Locations) {
				return Outcome{}, &EvalError{Path: path,
					Err: fmt.Errorf("%w: location %d out of range for node %d", ErrInvalidJump, loc, nid)}
			}
			// The relocation mapping is authoritative for listed nodes,
			// including over current writes made before the signal.
			w[ena.CurrentPath(nid)] = int64(loc)
		}
		return Outcome{Kind: Jumped, Snapshot: w, Value: jump.Value}, nil
	}

	return Outcome{}, &EvalError{Path: path, Err: err}
}
