package reachability

import (
	"testing"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/engine"
)

// swapSystem builds two nodes with two locations each; every location has
// one unconditional transition to the other location. Its state space is
// the four combinations of current locations with two outgoing edges each.
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

func TestExploreSwapSystem(t *testing.T) {
	sys := swapSystem(t)
	result, err := NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}

	if result.Status != Completed {
		t.Errorf("expected completed, got %s", result.Status)
	}
	if result.StateCount != 4 {
		t.Errorf("expected 4 states, got %d", result.StateCount)
	}
	if result.EdgeCount != 8 {
		t.Errorf("expected 8 edges, got %d", result.EdgeCount)
	}
	if result.MaxDepth != 2 {
		t.Errorf("expected max depth 2, got %d", result.MaxDepth)
	}
	if len(result.Graph.TerminalStates()) != 0 {
		t.Errorf("no state should be terminal")
	}
	for _, state := range result.Graph.StatesList() {
		if len(state.Successors) != 2 {
			t.Errorf("state %s: expected 2 outgoing edges, got %d", state.Hash, len(state.Successors))
		}
	}
}

func TestExploreDeduplicates(t *testing.T) {
	// Two distinct firing orders reach (1, 1); the graph must hold it once.
	sys := swapSystem(t)
	result, err := NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}

	both := ena.Initial(sys).
		With(ena.CurrentPath(0), int64(1)).
		With(ena.CurrentPath(1), int64(1))
	state := result.Graph.GetState(both)
	if state == nil {
		t.Fatal("state (1, 1) not found")
	}
	if len(state.Predecessors) != 2 {
		t.Errorf("expected 2 in-edges, got %d", len(state.Predecessors))
	}
	if state.Depth != 2 {
		t.Errorf("expected depth 2, got %d", state.Depth)
	}
}

func TestExploreBounded(t *testing.T) {
	sys := swapSystem(t)
	result, err := NewExplorer(sys).WithMaxStates(2).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}

	if result.Status != Bounded {
		t.Errorf("expected bounded, got %s", result.Status)
	}
	if result.StateCount != 2 {
		t.Errorf("bound of 2 must yield exactly 2 vertices, got %d", result.StateCount)
	}
}

func TestExploreBoundLargerThanSpace(t *testing.T) {
	sys := swapSystem(t)
	result, err := NewExplorer(sys).WithMaxStates(100).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.Status != Completed {
		t.Errorf("a bound above the space size must still complete, got %s", result.Status)
	}
	if result.StateCount != 4 {
		t.Errorf("expected 4 states, got %d", result.StateCount)
	}
}

func TestExploreViolation(t *testing.T) {
	sys := swapSystem(t)
	a, err := CompileAssert("nodes[0].current == 0")
	if err != nil {
		t.Fatalf("compile assert: %v", err)
	}

	result, err := NewExplorer(sys).WithAssert(a).WithTraceOnViolation().Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}

	if result.Status != ViolationFound {
		t.Fatalf("expected violation, got %s", result.Status)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(result.Violations))
	}
	v := result.Violations[0]
	if v.Err != nil {
		t.Fatalf("assertion evaluation failed: %v", v.Err)
	}
	if v.Snapshot.Current(0) != 1 {
		t.Errorf("violating state should have nodes[0].current = 1, got %d", v.Snapshot.Current(0))
	}

	// The first state where node 0 has moved is one firing from the root.
	if len(result.Trace) != 1 {
		t.Fatalf("expected trace of length 1, got %d", len(result.Trace))
	}
	edge := result.Trace[0]
	if edge.Path != (ena.Path{Node: 0, Location: 0, Transition: 0}) {
		t.Errorf("unexpected trace edge %s", edge.Path)
	}
	if !edge.To.Snapshot.Equals(v.Snapshot) {
		t.Error("trace must end at the violating state")
	}
}

func TestExploreViolationNoHalt(t *testing.T) {
	sys := swapSystem(t)
	a, err := CompileAssert("nodes[0].current == 0")
	if err != nil {
		t.Fatalf("compile assert: %v", err)
	}

	result, err := NewExplorer(sys).WithAssert(a).WithHaltOnViolation(false).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.Status != Completed {
		t.Errorf("without halting, exploration completes, got %s", result.Status)
	}
	// Both states with nodes[0].current = 1 violate.
	if len(result.Violations) != 2 {
		t.Errorf("expected 2 violations, got %d", len(result.Violations))
	}
}

func TestExploreAssertionHoldsEverywhere(t *testing.T) {
	sys := swapSystem(t)
	a, err := CompileAssert("nodes[0].current >= 0 && nodes[0].current <= 1")
	if err != nil {
		t.Fatalf("compile assert: %v", err)
	}

	result, err := NewExplorer(sys).WithAssert(a).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.Status != Completed || len(result.Violations) != 0 {
		t.Errorf("expected clean completion, got %s with %d violations",
			result.Status, len(result.Violations))
	}
}

func TestExploreAssertEvaluationFailure(t *testing.T) {
	sys := swapSystem(t)
	a, err := CompileAssert("no_such_field > 0")
	if err != nil {
		t.Fatalf("compile assert: %v", err)
	}

	result, err := NewExplorer(sys).WithAssert(a).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.Status != ViolationFound {
		t.Fatalf("expected violation, got %s", result.Status)
	}
	if result.Violations[0].Err == nil {
		t.Error("violation should carry the evaluation error")
	}
}

func TestExploreTerminalStates(t *testing.T) {
	// A single chain: location 0 -> 1 -> 2, with no transitions out of 2.
	sys, err := ena.Build().
		Node().
		Location().Transition(1).
		Location().Transition(2).
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	result, err := NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.StateCount != 3 || result.EdgeCount != 2 {
		t.Fatalf("expected 3 states and 2 edges, got %d and %d", result.StateCount, result.EdgeCount)
	}
	terminal := result.Graph.TerminalStates()
	if len(terminal) != 1 {
		t.Fatalf("expected 1 terminal state, got %d", len(terminal))
	}
	if terminal[0].Snapshot.Current(0) != 2 {
		t.Errorf("terminal state should be location 2, got %d", terminal[0].Snapshot.Current(0))
	}
	if result.MaxDepth != 2 {
		t.Errorf("expected max depth 2, got %d", result.MaxDepth)
	}
}

func TestExploreVariableStateSpace(t *testing.T) {
	// One location looping on itself, counting up to 3. The state space is
	// the counter values 0..3.
	sys, err := ena.Build().
		Node().Var("count", int64(0)).
		Location().Transition(0).
		Guard("node.count < 3").
		Update("node.count = node.count + 1").
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	result, err := NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if result.Status != Completed {
		t.Fatalf("expected completed, got %s", result.Status)
	}
	if result.StateCount != 4 {
		t.Errorf("expected 4 states, got %d", result.StateCount)
	}
	if result.EdgeCount != 3 {
		t.Errorf("expected 3 edges, got %d", result.EdgeCount)
	}
	if len(result.Graph.TerminalStates()) != 1 {
		t.Errorf("expected 1 terminal state")
	}
}

func TestExploreEvalErrorAborts(t *testing.T) {
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Guard("missing > 0").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	e := NewExplorer(sys)
	if _, err := e.Explore(); err == nil {
		t.Fatal("expected evaluation error to abort exploration")
	}
	if e.Status() != Idle {
		t.Errorf("failed run should reset the status, got %s", e.Status())
	}
}

func TestIsReachable(t *testing.T) {
	sys := swapSystem(t)
	target := ena.Initial(sys).
		With(ena.CurrentPath(0), int64(1)).
		With(ena.CurrentPath(1), int64(1))

	ok, err := NewExplorer(sys).IsReachable(target)
	if err != nil {
		t.Fatalf("reachable: %v", err)
	}
	if !ok {
		t.Error("state (1, 1) must be reachable")
	}

	missing := ena.Initial(sys).With(ena.CurrentPath(0), int64(5))
	ok, err = NewExplorer(sys).IsReachable(missing)
	if err != nil {
		t.Fatalf("reachable: %v", err)
	}
	if ok {
		t.Error("a malformed snapshot must not be reachable")
	}
}

func TestPathToReplaysWithEngine(t *testing.T) {
	sys := swapSystem(t)
	target := ena.Initial(sys).
		With(ena.CurrentPath(0), int64(1)).
		With(ena.CurrentPath(1), int64(1))

	trace, err := NewExplorer(sys).PathTo(target)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("expected shortest path of 2 firings, got %d", len(trace))
	}

	// Replaying the trace through the firing engine lands on the target.
	cur := ena.Initial(sys)
	for i, edge := range trace {
		out, err := engine.Fire(sys, cur, edge.Path)
		if err != nil {
			t.Fatalf("step %d: fire: %v", i, err)
		}
		if !out.Executable() {
			t.Fatalf("step %d: trace edge not executable", i)
		}
		cur = out.Snapshot
	}
	if !cur.Equals(target) {
		t.Errorf("replay ended at %s, want %s", cur, target)
	}
}

func TestGraphTraceRoot(t *testing.T) {
	sys := swapSystem(t)
	result, err := NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if got := result.Graph.Trace(result.Graph.Root); len(got) != 0 {
		t.Errorf("trace of the root must be empty, got %d edges", len(got))
	}
}
