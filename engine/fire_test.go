package engine

import (
	"errors"
	"testing"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/expr"
)

// swapSystem builds two nodes with two locations each; every location has
// one unconditional transition to the other location.
func swapSystem(t *testing.T) *ena.System {
	t.Helper()
	sys, err := ena.Build().
		Node().Input(1).
		Location().Transition(1).Cost("1").
		Location().Transition(0).Cost("1").
		Node().Input(0).
		Location().Transition(1).Cost("1").
		Location().Transition(0).Cost("1").
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return sys
}

func TestFireCommitsDefaultTarget(t *testing.T) {
	sys := swapSystem(t)
	snap := ena.Initial(sys)

	out, err := Fire(sys, snap, ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Committed {
		t.Fatalf("expected committed, got %s", out.Kind)
	}
	if out.Snapshot.Current(0) != 1 {
		t.Errorf("expected nodes[0].current = 1, got %d", out.Snapshot.Current(0))
	}
	if out.Snapshot.Current(1) != 0 {
		t.Errorf("peer node must be untouched, got %d", out.Snapshot.Current(1))
	}
	if out.Value != int64(1) {
		t.Errorf("expected cost 1, got %v", out.Value)
	}
	// The input snapshot is never written to.
	if snap.Current(0) != 0 {
		t.Error("fire mutated the input snapshot")
	}
}

func TestFireGuardRejection(t *testing.T) {
	sys, err := ena.Build().
		Var("ready", false).
		Node().
		Location().Transition(1).Guard("ready").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	snap := ena.Initial(sys)

	out, err := Fire(sys, snap, ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Rejected {
		t.Fatalf("expected rejected, got %s", out.Kind)
	}
	if out.Executable() {
		t.Error("rejected outcome must not be executable")
	}
	if out.Snapshot != nil {
		t.Error("rejected outcome must not carry a snapshot")
	}
}

func TestFireDefaultGuardCostUpdate(t *testing.T) {
	// A bare transition: guard defaults to true, cost to 0, update to no-op.
	sys, err := ena.Build().
		Node().
		Location().Transition(1).
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Committed {
		t.Fatalf("expected committed, got %s", out.Kind)
	}
	if out.Value != int64(0) {
		t.Errorf("expected default cost 0, got %v", out.Value)
	}
}

func TestFireUpdateMutations(t *testing.T) {
	sys, err := ena.Build().
		Var("total", int64(0)).
		Node().Var("count", int64(0)).
		Location().Transition(1).
		Update("node.count = node.count + 1; system.total = node.count * 10").
		Cost("node.count").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if v, _ := out.Snapshot.Get("nodes[0].count"); v != int64(1) {
		t.Errorf("node.count: expected 1, got %v", v)
	}
	// The second assignment reads the write made by the first.
	if v, _ := out.Snapshot.Get("total"); v != int64(10) {
		t.Errorf("system.total: expected 10, got %v", v)
	}
	// Cost evaluates after the update against the mutated state.
	if out.Value != int64(1) {
		t.Errorf("cost: expected 1, got %v", out.Value)
	}
}

func TestFireBareNameScopeResolution(t *testing.T) {
	// Bare names resolve innermost-first: the transition constant shadows
	// the node variable of the same name.
	sys, err := ena.Build().
		Node().Var("limit", int64(100)).
		Location().
		Transition(1).Const("limit", int64(7)).Cost("limit").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Value != int64(7) {
		t.Errorf("expected shadowing constant 7, got %v", out.Value)
	}
}

func TestFireObservesPeerNode(t *testing.T) {
	// Node 1's guard observes node 0's current location through the
	// structural path.
	sys, err := ena.Build().
		Node().
		Location().Transition(1).
		Location().
		Node().Input(0).
		Location().Transition(1).Guard("system.nodes[0].current == 1").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	snap := ena.Initial(sys)
	path := ena.Path{Node: 1, Location: 0, Transition: 0}

	out, err := Fire(sys, snap, path)
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Rejected {
		t.Fatalf("guard should reject while peer is at location 0, got %s", out.Kind)
	}

	moved := snap.With(ena.CurrentPath(0), int64(1))
	out, err = Fire(sys, moved, path)
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Committed {
		t.Errorf("guard should pass once peer is at location 1, got %s", out.Kind)
	}
}

func TestFireAbortDiscardsMutations(t *testing.T) {
	sys, err := ena.Build().
		Var("poked", int64(0)).
		Node().
		Location().Transition(1).
		UpdateFn(&expr.Native{Name: "poke then abort", Fn: func(scope *expr.Scope) (any, error) {
			block, err := expr.CompileUpdate("system.poked = 1")
			if err != nil {
				return nil, err
			}
			if _, err := block.Eval(scope); err != nil {
				return nil, err
			}
			return nil, &expr.AbortSignal{}
		}}).
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	snap := ena.Initial(sys)
	out, err := Fire(sys, snap, ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("abort must not surface as an error: %v", err)
	}
	if out.Kind != Rejected {
		t.Fatalf("expected rejected, got %s", out.Kind)
	}
	if v, _ := snap.Get("poked"); v != int64(0) {
		t.Error("mutations before abort leaked into the input snapshot")
	}
}

func TestFireAbortInGuard(t *testing.T) {
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Guard("abort()").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Rejected {
		t.Errorf("expected rejected, got %s", out.Kind)
	}
}

func TestFireJumpRelocation(t *testing.T) {
	// The update mutates a variable and then jumps: the mutation is
	// retained, the jump value becomes the outcome value, the mapping
	// relocates both nodes, and the default target of the fired transition
	// does not apply.
	sys, err := ena.Build().
		Var("marks", int64(0)).
		Node().
		Location().Transition(1).
		UpdateFn(&expr.Native{Name: "mark then jump", Fn: func(scope *expr.Scope) (any, error) {
			block, cerr := expr.CompileUpdate("system.marks = 5")
			if cerr != nil {
				return nil, cerr
			}
			if _, uerr := block.Eval(scope); uerr != nil {
				return nil, uerr
			}
			return nil, &expr.JumpSignal{Value: int64(42), Jumps: map[int]int{0: 0, 1: 1}}
		}}).
		Location().
		Node().
		Location().Transition(0).
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Jumped {
		t.Fatalf("expected jumped, got %s", out.Kind)
	}
	if out.Value != int64(42) {
		t.Errorf("jump value: expected 42, got %v", out.Value)
	}
	if v, _ := out.Snapshot.Get("marks"); v != int64(5) {
		t.Errorf("mutation before jump must be retained, got %v", v)
	}
	// Node 0 stays at location 0 per the mapping, overriding target 1.
	if out.Snapshot.Current(0) != 0 {
		t.Errorf("nodes[0].current: expected 0, got %d", out.Snapshot.Current(0))
	}
	if out.Snapshot.Current(1) != 1 {
		t.Errorf("nodes[1].current: expected 1, got %d", out.Snapshot.Current(1))
	}
}

func TestFireJumpBuiltin(t *testing.T) {
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Guard("jump(9, 0, 1)").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if err != nil {
		t.Fatalf("fire: %v", err)
	}
	if out.Kind != Jumped {
		t.Fatalf("expected jumped, got %s", out.Kind)
	}
	if out.Value != int64(9) {
		t.Errorf("jump value: expected 9, got %v", out.Value)
	}
	if out.Snapshot.Current(0) != 1 {
		t.Errorf("expected relocation to 1, got %d", out.Snapshot.Current(0))
	}
}

func TestFireInvalidJumpIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		guard string
	}{
		{"node out of range", "jump(0, 7, 0)"},
		{"location out of range", "jump(0, 0, 7)"},
	}
	for _, tt := range tests {
		sys, err := ena.Build().
			Node().
			Location().Transition(1).Guard(tt.guard).
			Location().
			Done()
		if err != nil {
			t.Fatalf("%s: build: %v", tt.name, err)
		}

		_, err = Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
		if !errors.Is(err, ErrInvalidJump) {
			t.Errorf("%s: expected ErrInvalidJump, got %v", tt.name, err)
		}
		var evalErr *EvalError
		if !errors.As(err, &evalErr) {
			t.Errorf("%s: expected *EvalError, got %T", tt.name, err)
			continue
		}
		want := ena.Path{Node: 0, Location: 0, Transition: 0}
		if evalErr.Path != want {
			t.Errorf("%s: expected failing path %s, got %s", tt.name, want, evalErr.Path)
		}
	}
}

func TestFireUnboundNameIsFatal(t *testing.T) {
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Guard("missing > 0").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if !errors.Is(err, expr.ErrUnboundName) {
		t.Errorf("expected ErrUnboundName, got %v", err)
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Errorf("expected *EvalError, got %T", err)
	}
}

func TestFireConstNotAssignable(t *testing.T) {
	sys, err := ena.Build().
		Node().Const("limit", int64(5)).
		Location().Transition(1).Update("node.limit = 6").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = Fire(sys, ena.Initial(sys), ena.Path{Node: 0, Location: 0, Transition: 0})
	if !errors.Is(err, expr.ErrNotAssignable) {
		t.Errorf("expected ErrNotAssignable, got %v", err)
	}
}

func TestFireInvalidPath(t *testing.T) {
	sys := swapSystem(t)
	_, err := Fire(sys, ena.Initial(sys), ena.Path{Node: 5, Location: 0, Transition: 0})
	if !errors.Is(err, ena.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}
