// Package reachability computes the state space of a system: a bounded
// breadth-first exploration of the successor relation that deduplicates
// structurally identical snapshots, checks assertions at every visited
// state, and reconstructs counterexample traces.
package reachability

import (
	"github.com/pflow-xyz/go-ena/ena"
)

// Graph is the reachable-state graph built by exploration. It has exactly
// one vertex per distinct reachable snapshot.
type Graph struct {
	System  *ena.System
	Initial ena.Snapshot
	States  map[string]*State
	Edges   []*Edge
	Root    *State

	stateList []*State // discovery order
}

// State is one vertex: a distinct reachable snapshot.
type State struct {
	ID           int
	Snapshot     ena.Snapshot
	Hash         string
	Successors   []*Edge
	Predecessors []*Edge
	Discovery    *Edge // edge that first discovered this state (nil for root)
	IsInitial    bool
	IsTerminal   bool // no executable transitions (set after expansion)
	Depth        int  // BFS layer, distance from initial state
}

// Edge is one labelled transition firing between two states.
type Edge struct {
	From  *State
	To    *State
	Path  ena.Path
	Value ena.Value
}

// NewGraph creates an empty graph rooted at the given snapshot.
func NewGraph(sys *ena.System, initial ena.Snapshot) *Graph {
	return &Graph{
		System:  sys,
		Initial: initial.Copy(),
		States:  make(map[string]*State),
	}
}

// AddState adds a vertex for the snapshot, or returns the existing vertex
// for a structurally equal snapshot.
func (g *Graph) AddState(snap ena.Snapshot) *State {
	hash := snap.Hash()
	if existing, ok := g.States[hash]; ok {
		return existing
	}

	state := &State{
		ID:        len(g.States),
		Snapshot:  snap.Copy(),
		Hash:      hash,
		IsInitial: len(g.States) == 0,
		Depth:     -1,
	}
	g.States[hash] = state
	g.stateList = append(g.stateList, state)

	if state.IsInitial {
		g.Root = state
		state.Depth = 0
	}
	return state
}

// AddEdge adds a labelled edge between two states. The first edge into a
// newly discovered state is recorded as its discovery edge for trace
// reconstruction.
func (g *Graph) AddEdge(from, to *State, path ena.Path, value ena.Value) *Edge {
	edge := &Edge{From: from, To: to, Path: path, Value: value}
	from.Successors = append(from.Successors, edge)
	to.Predecessors = append(to.Predecessors, edge)
	g.Edges = append(g.Edges, edge)

	if to.Discovery == nil && !to.IsInitial {
		to.Discovery = edge
	}
	if from.Depth >= 0 && (to.Depth < 0 || to.Depth > from.Depth+1) {
		to.Depth = from.Depth + 1
	}
	return edge
}

// GetState retrieves the vertex for a snapshot, or nil.
func (g *Graph) GetState(snap ena.Snapshot) *State {
	return g.States[snap.Hash()]
}

// StateCount returns the number of vertices.
func (g *Graph) StateCount() int {
	return len(g.States)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// StatesList returns all vertices in discovery order.
func (g *Graph) StatesList() []*State {
	return g.stateList
}

// TerminalStates returns all vertices with no executable transitions.
func (g *Graph) TerminalStates() []*State {
	var terminal []*State
	for _, state := range g.stateList {
		if state.IsTerminal {
			terminal = append(terminal, state)
		}
	}
	return terminal
}

// MaxDepth returns the deepest BFS layer in the graph.
func (g *Graph) MaxDepth() int {
	max := 0
	for _, state := range g.stateList {
		if state.Depth > max {
			max = state.Depth
		}
	}
	return max
}

// Trace walks discovery edges backward from a state to the root and returns
// the edges in firing order. Because exploration is breadth-first, this is
// a shortest path by transition count.
func (g *Graph) Trace(state *State) []*Edge {
	var rev []*Edge
	for s := state; s.Discovery != nil; s = s.Discovery.From {
		rev = append(rev, s.Discovery)
	}
	trace := make([]*Edge, len(rev))
	for i, e := range rev {
		trace[len(rev)-1-i] = e
	}
	return trace
}
