package engine

import (
	"math/rand"

	"github.com/pflow-xyz/go-ena/ena"
)

// Step is one event of a random walk.
type Step struct {
	Path     ena.Path
	Value    ena.Value
	Snapshot ena.Snapshot
}

// Walk fires up to steps randomly chosen executable transitions from snap
// and returns the trace. The walk stops early at a deadlock (no executable
// transition). A nil rng yields a deterministic walk seeded at zero.
func Walk(sys *ena.System, snap ena.Snapshot, steps int, rng *rand.Rand) ([]Step, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	trace := make([]Step, 0, steps)
	current := snap
	for i := 0; i < steps; i++ {
		succs, err := Successors(sys, current)
		if err != nil {
			return trace, err
		}
		if len(succs) == 0 {
			break
		}
		next := succs[rng.Intn(len(succs))]
		trace = append(trace, Step{Path: next.Path, Value: next.Value, Snapshot: next.Snapshot})
		current = next.Snapshot
	}
	return trace, nil
}
