// Package ena implements the core data structures for extended networks of
// automata: an immutable structural model (System, Node, Input, Location,
// Transition) and the immutable state snapshot over its mutable fields.
//
// A System is built once, validated, and never mutated afterward. Nodes
// reference their peers strictly by integer index, so the whole object graph
// is acyclic and snapshots are plain comparable values safe to hash and copy.
package ena

import (
	"fmt"

	"github.com/pflow-xyz/go-ena/expr"
)

// Value is a model value: int64, bool, string, or *uint256.Int.
type Value = any

// Var declares one named mutable field with its construction-time value.
// Every Var is captured by the Snapshot; declaration order is part of the
// model and fixes the canonical snapshot path order.
type Var struct {
	Name string
	Init Value
}

// System is the root of a structural model: an ordered, non-empty sequence
// of nodes plus model-wide constants and mutable variables.
type System struct {
	Nodes  []*Node
	Consts map[string]Value // extern constants, visible from every scope
	Vars   []Var
}

// Node is one automaton: its observation inputs, locations, and the index
// of its initial location.
type Node struct {
	Inputs    []Input
	Locations []*Location
	Current   int // initial location index
	Consts    map[string]Value
	Vars      []Var
}

// Input is a declared observation link to a peer automaton, by index into
// System.Nodes. It never holds a pointer, keeping the model acyclic.
type Input struct {
	Node int
}

// Location is one control state of a single automaton.
type Location struct {
	Transitions []*Transition
	Consts      map[string]Value
	Vars        []Var
}

// Transition is a possible move to another location of the owning node,
// guarded and costed by evaluated code.
//
// Guard defaults to always-true when nil, Cost to 0, Update to no-op.
type Transition struct {
	Target int            // index into the owning node's Locations
	Guard  expr.Evaluable // boolean-valued
	Cost   expr.Evaluable // arbitrary-valued, recorded on firing
	Update expr.Evaluable // assignments to mutable fields
	Consts map[string]Value
	Vars   []Var
}

// Path uniquely identifies a transition within a system.
type Path struct {
	Node       int
	Location   int
	Transition int
}

func (p Path) String() string {
	return fmt.Sprintf("nodes[%d].locations[%d].transitions[%d]", p.Node, p.Location, p.Transition)
}

// TransitionAt returns the transition at the given path, or an error if any
// index is out of range.
func (s *System) TransitionAt(p Path) (*Transition, error) {
	if p.Node < 0 || p.Node >= len(s.Nodes) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	node := s.Nodes[p.Node]
	if p.Location < 0 || p.Location >= len(node.Locations) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	loc := node.Locations[p.Location]
	if p.Transition < 0 || p.Transition >= len(loc.Transitions) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	return loc.Transitions[p.Transition], nil
}

// CurrentPath is the canonical snapshot path of a node's current-location
// field.
func CurrentPath(node int) string {
	return fmt.Sprintf("nodes[%d].current", node)
}

// NodePrefix is the canonical snapshot path prefix of a node's fields.
func NodePrefix(node int) string {
	return fmt.Sprintf("nodes[%d]", node)
}

// LocationPrefix is the canonical snapshot path prefix of a location's
// fields.
func LocationPrefix(node, loc int) string {
	return fmt.Sprintf("nodes[%d].locations[%d]", node, loc)
}

// TransitionPrefix is the canonical snapshot path prefix of a transition's
// fields.
func TransitionPrefix(node, loc, trans int) string {
	return fmt.Sprintf("nodes[%d].locations[%d].transitions[%d]", node, loc, trans)
}
