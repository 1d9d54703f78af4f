package engine

import (
	"fmt"

	"github.com/pflow-xyz/go-ena/ena"
)

// Successor is one executable firing from a snapshot: the committed
// successor snapshot, the fired transition's path, and the recorded value.
type Successor struct {
	Snapshot ena.Snapshot
	Path     ena.Path
	Value    ena.Value
}

// Successors fires every transition attached to each node's current
// location, in node index order then transition declaration order, and
// returns the executable outcomes in that order. The ordering is a
// correctness contract: for a fixed system and snapshot the sequence is
// identical on every call.
func Successors(sys *ena.System, snap ena.Snapshot) ([]Successor, error) {
	var succs []Successor
	for n, node := range sys.Nodes {
		cur := snap.Current(n)
		if cur < 0 || cur >= len(node.Locations) {
			return nil, fmt.Errorf("%w: nodes[%d].current = %d", ErrCorruptSnapshot, n, cur)
		}
		for t := range node.Locations[cur].Transitions {
			path := ena.Path{Node: n, Location: cur, Transition: t}
			out, err := Fire(sys, snap, path)
			if err != nil {
				return nil, err
			}
			if !out.Executable() {
				continue
			}
			succs = append(succs, Successor{Snapshot: out.Snapshot, Path: path, Value: out.Value})
		}
	}
	return succs, nil
}
