// Package engine implements the execution semantics of a system: building
// the evaluation context for a transition, firing it with all-or-nothing
// mutation semantics, and enumerating the successors of a snapshot in a
// deterministic order.
package engine

import (
	"fmt"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/expr"
)

// buildScope composes the scope chain for one firing attempt:
// builtins -> extern constants -> system -> node -> location -> transition.
// Mutable fields resolve through the working snapshot, never through
// construction-time values. Building a scope mutates nothing.
func buildScope(sys *ena.System, w ena.Snapshot, path ena.Path) *expr.Scope {
	scope := systemScope(sys, w)

	node := sys.Nodes[path.Node]
	scope = expr.NewScope(scope)
	scope.Bind("node", &nodeView{sys: sys, w: w, n: path.Node})
	bindFields(scope, w, ena.NodePrefix(path.Node), node.Vars, node.Consts)

	loc := node.Locations[path.Location]
	scope = expr.NewScope(scope)
	scope.Bind("location", &locationView{sys: sys, w: w, n: path.Node, l: path.Location})
	bindFields(scope, w, ena.LocationPrefix(path.Node, path.Location), loc.Vars, loc.Consts)

	trans := loc.Transitions[path.Transition]
	scope = expr.NewScope(scope)
	scope.Bind("transition", &transitionView{sys: sys, w: w, path: path})
	bindFields(scope, w, ena.TransitionPrefix(path.Node, path.Location, path.Transition), trans.Vars, trans.Consts)

	return scope
}

// AssertScope composes the full-system scope used for assertion checking:
// builtins -> extern constants -> system. No transition-local bindings. The
// snapshot is copied so assertion code cannot leak mutations.
func AssertScope(sys *ena.System, snap ena.Snapshot) *expr.Scope {
	return systemScope(sys, snap.Copy())
}

func systemScope(sys *ena.System, w ena.Snapshot) *expr.Scope {
	extern := expr.NewScope(expr.NewBaseScope())
	for name, v := range sys.Consts {
		extern.Bind(name, v)
	}

	scope := expr.NewScope(extern)
	scope.Bind("system", &systemView{sys: sys, w: w})
	scope.Bind("nodes", &nodeList{sys: sys, w: w})
	bindFields(scope, w, "", sys.Vars, nil)
	return scope
}

// bindFields binds an entity's constants and mutable variables as bare
// names. Variables bind as live references into the working snapshot so a
// read observes writes made earlier in the same evaluation.
func bindFields(scope *expr.Scope, w ena.Snapshot, prefix string, vars []ena.Var, consts map[string]ena.Value) {
	for name, v := range consts {
		scope.Bind(name, v)
	}
	for _, v := range vars {
		scope.Bind(v.Name, &varBinding{w: w, path: joinPath(prefix, v.Name)})
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// varBinding is a live reference to one mutable field of the working
// snapshot.
type varBinding struct {
	w    ena.Snapshot
	path string
}

func (b *varBinding) Load() (any, error) {
	v, ok := b.w.Get(b.path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ena.ErrUnknownField, b.path)
	}
	return v, nil
}

// systemView exposes the system to evaluated code.
type systemView struct {
	sys *ena.System
	w   ena.Snapshot
}

func (v *systemView) ResolveField(name string) (any, error) {
	if name == "nodes" {
		return &nodeList{sys: v.sys, w: v.w}, nil
	}
	return resolveEntityField(v.w, "", v.sys.Vars, v.sys.Consts, name, "system")
}

func (v *systemView) AssignField(name string, value any) error {
	return assignEntityField(v.w, "", v.sys.Vars, name, value, "system")
}

// nodeList exposes system.nodes for indexing.
type nodeList struct {
	sys *ena.System
	w   ena.Snapshot
}

func (v *nodeList) ResolveIndex(i int64) (any, error) {
	if i < 0 || i >= int64(len(v.sys.Nodes)) {
		return nil, fmt.Errorf("engine: node index %d out of range [0, %d)", i, len(v.sys.Nodes))
	}
	return &nodeView{sys: v.sys, w: v.w, n: int(i)}, nil
}

// nodeView exposes one node to evaluated code.
type nodeView struct {
	sys *ena.System
	w   ena.Snapshot
	n   int
}

func (v *nodeView) ResolveField(name string) (any, error) {
	node := v.sys.Nodes[v.n]
	switch name {
	case "current":
		val, _ := v.w.Get(ena.CurrentPath(v.n))
		return val, nil
	case "inputs":
		return &inputList{node: node, n: v.n}, nil
	case "locations":
		return &locationList{sys: v.sys, w: v.w, n: v.n}, nil
	}
	return resolveEntityField(v.w, ena.NodePrefix(v.n), node.Vars, node.Consts, name, fmt.Sprintf("nodes[%d]", v.n))
}

func (v *nodeView) AssignField(name string, value any) error {
	node := v.sys.Nodes[v.n]
	if name == "current" {
		loc, ok := value.(int64)
		if !ok || loc < 0 || loc >= int64(len(node.Locations)) {
			return fmt.Errorf("engine: invalid current location %v for nodes[%d]", value, v.n)
		}
		v.w[ena.CurrentPath(v.n)] = loc
		return nil
	}
	return assignEntityField(v.w, ena.NodePrefix(v.n), node.Vars, name, value, fmt.Sprintf("nodes[%d]", v.n))
}

// inputList exposes node.inputs for indexing.
type inputList struct {
	node *ena.Node
	n    int
}

func (v *inputList) ResolveIndex(i int64) (any, error) {
	if i < 0 || i >= int64(len(v.node.Inputs)) {
		return nil, fmt.Errorf("engine: input index %d out of range for nodes[%d]", i, v.n)
	}
	return &inputView{in: v.node.Inputs[int(i)]}, nil
}

// inputView exposes one observation link.
type inputView struct {
	in ena.Input
}

func (v *inputView) ResolveField(name string) (any, error) {
	if name == "node" {
		return int64(v.in.Node), nil
	}
	return nil, fmt.Errorf("%w: input.%s", ena.ErrUnknownField, name)
}

// locationList exposes node.locations for indexing.
type locationList struct {
	sys *ena.System
	w   ena.Snapshot
	n   int
}

func (v *locationList) ResolveIndex(i int64) (any, error) {
	locs := v.sys.Nodes[v.n].Locations
	if i < 0 || i >= int64(len(locs)) {
		return nil, fmt.Errorf("engine: location index %d out of range for nodes[%d]", i, v.n)
	}
	return &locationView{sys: v.sys, w: v.w, n: v.n, l: int(i)}, nil
}

// locationView exposes one location to evaluated code.
type locationView struct {
	sys *ena.System
	w   ena.Snapshot
	n   int
	l   int
}

func (v *locationView) ResolveField(name string) (any, error) {
	loc := v.sys.Nodes[v.n].Locations[v.l]
	if name == "transitions" {
		return &transitionList{sys: v.sys, w: v.w, n: v.n, l: v.l}, nil
	}
	return resolveEntityField(v.w, ena.LocationPrefix(v.n, v.l), loc.Vars, loc.Consts, name,
		fmt.Sprintf("nodes[%d].locations[%d]", v.n, v.l))
}

func (v *locationView) AssignField(name string, value any) error {
	loc := v.sys.Nodes[v.n].Locations[v.l]
	return assignEntityField(v.w, ena.LocationPrefix(v.n, v.l), loc.Vars, name, value,
		fmt.Sprintf("nodes[%d].locations[%d]", v.n, v.l))
}

// transitionList exposes location.transitions for indexing.
type transitionList struct {
	sys *ena.System
	w   ena.Snapshot
	n   int
	l   int
}

func (v *transitionList) ResolveIndex(i int64) (any, error) {
	trans := v.sys.Nodes[v.n].Locations[v.l].Transitions
	if i < 0 || i >= int64(len(trans)) {
		return nil, fmt.Errorf("engine: transition index %d out of range for nodes[%d].locations[%d]", i, v.n, v.l)
	}
	return &transitionView{sys: v.sys, w: v.w, path: ena.Path{Node: v.n, Location: v.l, Transition: int(i)}}, nil
}

// transitionView exposes one transition to evaluated code.
type transitionView struct {
	sys  *ena.System
	w    ena.Snapshot
	path ena.Path
}

func (v *transitionView) ResolveField(name string) (any, error) {
	trans := v.sys.Nodes[v.path.Node].Locations[v.path.Location].Transitions[v.path.Transition]
	if name == "target" {
		return int64(trans.Target), nil
	}
	prefix := ena.TransitionPrefix(v.path.Node, v.path.Location, v.path.Transition)
	return resolveEntityField(v.w, prefix, trans.Vars, trans.Consts, name, v.path.String())
}

func (v *transitionView) AssignField(name string, value any) error {
	trans := v.sys.Nodes[v.path.Node].Locations[v.path.Location].Transitions[v.path.Transition]
	prefix := ena.TransitionPrefix(v.path.Node, v.path.Location, v.path.Transition)
	return assignEntityField(v.w, prefix, trans.Vars, name, value, v.path.String())
}

func resolveEntityField(w ena.Snapshot, prefix string, vars []ena.Var, consts map[string]ena.Value, name, where string) (any, error) {
	for _, vr := range vars {
		if vr.Name == name {
			val, _ := w.Get(joinPath(prefix, name))
			return val, nil
		}
	}
	if c, ok := consts[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ena.ErrUnknownField, where, name)
}

func assignEntityField(w ena.Snapshot, prefix string, vars []ena.Var, name string, value any, where string) error {
	for _, vr := range vars {
		if vr.Name == name {
			w[joinPath(prefix, name)] = value
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", expr.ErrNotAssignable, where, name)
}
