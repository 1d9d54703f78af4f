package reachability

import (
	"github.com/pflow-xyz/go-ena/engine"
	"github.com/pflow-xyz/go-ena/ena"
)

// Status describes one exploration run.
type Status int

const (
	Idle           Status = iota // not started
	Running                      // frontier not empty
	Completed                    // frontier emptied, full reachability established
	Bounded                      // visited-state bound hit, partial result
	ViolationFound               // assertion failed with halt-on-violation set
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Bounded:
		return "bounded"
	case ViolationFound:
		return "violation"
	default:
		return "unknown"
	}
}

// Explorer performs bounded breadth-first exploration of a system's state
// space.
type Explorer struct {
	sys              *ena.System
	initial          ena.Snapshot
	maxStates        int // 0 = unbounded
	asserts          []*Assert
	traceOnViolation bool
	haltOnViolation  bool
	status           Status
}

// NewExplorer creates an explorer seeded with the system's initial
// snapshot, unbounded, halting on the first assertion violation.
func NewExplorer(sys *ena.System) *Explorer {
	return &Explorer{
		sys:             sys,
		initial:         ena.Initial(sys),
		haltOnViolation: true,
		status:          Idle,
	}
}

// WithInitial sets a custom initial snapshot.
func (e *Explorer) WithInitial(snap ena.Snapshot) *Explorer {
	e.initial = snap.Copy()
	return e
}

// WithMaxStates bounds the number of distinct visited states (0 removes the
// bound).
func (e *Explorer) WithMaxStates(max int) *Explorer {
	e.maxStates = max
	return e
}

// WithAssert registers an assertion checked on every visited snapshot.
func (e *Explorer) WithAssert(a *Assert) *Explorer {
	e.asserts = append(e.asserts, a)
	return e
}

// WithTraceOnViolation requests trace reconstruction for the first
// violation.
func (e *Explorer) WithTraceOnViolation() *Explorer {
	e.traceOnViolation = true
	return e
}

// WithHaltOnViolation controls whether exploration stops at the first
// violation (default true).
func (e *Explorer) WithHaltOnViolation(halt bool) *Explorer {
	e.haltOnViolation = halt
	return e
}

// Status returns the state of the current or last run.
func (e *Explorer) Status() Status {
	return e.status
}

// Result contains the accumulated graph and outcome of one exploration run.
type Result struct {
	Graph      *Graph
	Status     Status
	StateCount int
	EdgeCount  int
	MaxDepth   int
	Violations []*Violation
	Trace      []*Edge // to the first violation, when requested
	Stats      ExplorationStats
}

// ExplorationStats provides metrics about the state space exploration.
type ExplorationStats struct {
	StatesExplored  int
	StatesLimit     int
	QueueMaxSize    int
	BranchingFactor float64 // average executable transitions per expanded state
}

// Explore runs the breadth-first traversal: a FIFO frontier seeded with the
// initial snapshot, a visited set keyed by snapshot hash/equality, and a
// discovery edge per new state for trace reconstruction. Evaluation errors
// abort the run; assertion violations are recorded and, with
// halt-on-violation, stop it with status ViolationFound.
func (e *Explorer) Explore() (*Result, error) {
	e.status = Running
	graph := NewGraph(e.sys, e.initial)
	result := &Result{
		Graph: graph,
		Stats: ExplorationStats{StatesLimit: e.maxStates},
	}

	root := graph.AddState(e.initial)
	queue := []*State{root}
	bounded := false
	halted := false
	maxQueue := 1
	totalSuccs := 0
	statesWithSuccs := 0

	for len(queue) > 0 && !halted {
		current := queue[0]
		queue = queue[1:]

		for _, a := range e.asserts {
			v := a.Check(e.sys, current.Snapshot)
			if v == nil {
				continue
			}
			v.State = current
			result.Violations = append(result.Violations, v)
			if e.traceOnViolation && result.Trace == nil {
				result.Trace = graph.Trace(current)
			}
			if e.haltOnViolation {
				halted = true
				break
			}
		}
		if halted {
			break
		}

		succs, err := engine.Successors(e.sys, current.Snapshot)
		if err != nil {
			e.status = Idle
			return nil, err
		}
		current.IsTerminal = len(succs) == 0
		if len(succs) > 0 {
			totalSuccs += len(succs)
			statesWithSuccs++
		}

		for _, s := range succs {
			to := graph.GetState(s.Snapshot)
			if to == nil {
				if e.maxStates > 0 && graph.StateCount() >= e.maxStates {
					bounded = true
					continue
				}
				to = graph.AddState(s.Snapshot)
				queue = append(queue, to)
				if len(queue) > maxQueue {
					maxQueue = len(queue)
				}
			}
			graph.AddEdge(current, to, s.Path, s.Value)
		}
	}

	switch {
	case halted:
		e.status = ViolationFound
	case bounded:
		e.status = Bounded
	default:
		e.status = Completed
	}

	result.Status = e.status
	result.StateCount = graph.StateCount()
	result.EdgeCount = graph.EdgeCount()
	result.MaxDepth = graph.MaxDepth()
	result.Stats.StatesExplored = result.StateCount
	result.Stats.QueueMaxSize = maxQueue
	if statesWithSuccs > 0 {
		result.Stats.BranchingFactor = float64(totalSuccs) / float64(statesWithSuccs)
	}
	return result, nil
}

// IsReachable checks whether a target snapshot is reachable from the
// initial snapshot.
func (e *Explorer) IsReachable(target ena.Snapshot) (bool, error) {
	result, err := e.Explore()
	if err != nil {
		return false, err
	}
	return result.Graph.GetState(target) != nil, nil
}

// PathTo finds a shortest firing sequence reaching the target snapshot, or
// nil if it is not reachable within the configured bound.
func (e *Explorer) PathTo(target ena.Snapshot) ([]*Edge, error) {
	result, err := e.Explore()
	if err != nil {
		return nil, err
	}
	state := result.Graph.GetState(target)
	if state == nil {
		return nil, nil
	}
	return result.Graph.Trace(state), nil
}
