package store

import (
	"path/filepath"
	"testing"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/reachability"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func exploreChain(t *testing.T) *reachability.Result {
	t.Helper()
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Cost("1").
		Location().Transition(2).Cost("2").
		Location().
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	result, err := reachability.NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	return result
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	result := exploreChain(t)

	id, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run ID")
	}

	run, err := s.LoadRun(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if run.Status != "completed" {
		t.Errorf("status: expected completed, got %q", run.Status)
	}
	if run.StateCount != 3 || run.EdgeCount != 2 || run.MaxDepth != 2 {
		t.Errorf("counts: got %d states, %d edges, depth %d", run.StateCount, run.EdgeCount, run.MaxDepth)
	}
}

func TestLoadStates(t *testing.T) {
	s := openTestStore(t)
	result := exploreChain(t)

	id, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	states, err := s.LoadStates(id)
	if err != nil {
		t.Fatalf("load states: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}

	// Discovery order: the initial state first, without a discovery edge.
	if !states[0].IsInitial || states[0].DiscFrom != "" {
		t.Error("first state must be initial with no discovery edge")
	}
	for i, st := range states[1:] {
		if st.IsInitial {
			t.Errorf("state %d must not be initial", i+1)
		}
		if st.DiscFrom == "" || st.DiscTrans == "" {
			t.Errorf("state %d missing discovery columns", i+1)
		}
		if st.Snapshot == "" {
			t.Errorf("state %d missing snapshot", i+1)
		}
	}
}

func TestTraceTo(t *testing.T) {
	s := openTestStore(t)
	result := exploreChain(t)

	id, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	terminal := result.Graph.TerminalStates()
	if len(terminal) != 1 {
		t.Fatalf("expected 1 terminal state, got %d", len(terminal))
	}

	trace, err := s.TraceTo(id, terminal[0].Hash)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("expected trace of 2 edges, got %d", len(trace))
	}
	if trace[0].From != result.Graph.Root.Hash {
		t.Errorf("trace must start at the root, got %q", trace[0].From)
	}
	if trace[1].To != terminal[0].Hash {
		t.Errorf("trace must end at the target, got %q", trace[1].To)
	}
	if trace[0].To != trace[1].From {
		t.Error("trace edges must be contiguous")
	}

	// The root itself has an empty trace.
	rootTrace, err := s.TraceTo(id, result.Graph.Root.Hash)
	if err != nil {
		t.Fatalf("root trace: %v", err)
	}
	if len(rootTrace) != 0 {
		t.Errorf("expected empty trace for the root, got %d edges", len(rootTrace))
	}
}

func TestTraceToUnknownState(t *testing.T) {
	s := openTestStore(t)
	result := exploreChain(t)

	id, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.TraceTo(id, "no-such-hash"); err == nil {
		t.Error("expected error for unknown state hash")
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	result := exploreChain(t)

	first, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.SaveResult(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	seen := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !seen[first] || !seen[second] {
		t.Errorf("runs %q and %q not both listed: %v", first, second, runs)
	}
}

func TestLoadRunMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadRun("missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}
