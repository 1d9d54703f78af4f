package ena

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-ena/expr"
)

// Builder provides a fluent API for constructing systems. Node, Location and
// Transition open a nested context; Const, Var, Guard, Cost and Update apply
// to the innermost open entity. Done validates and returns the system.
//
// Example:
//
//	sys, err := ena.Build().
//	    Node().Input(1).
//	        Location().
//	            Transition(1).Cost("1").
//	        Location().
//	    Node().Input(0).
//	        Location().
//	            Transition(1).Cost("1").
//	        Location().
//	    Done()
type Builder struct {
	sys   *System
	node  *Node
	loc   *Location
	trans *Transition
	errs  []error
}

// Build creates a new Builder.
func Build() *Builder {
	return &Builder{
		sys: &System{Consts: make(map[string]Value)},
	}
}

// Node opens a new node context.
func (b *Builder) Node() *Builder {
	b.node = &Node{Consts: make(map[string]Value)}
	b.loc = nil
	b.trans = nil
	b.sys.Nodes = append(b.sys.Nodes, b.node)
	return b
}

// Input declares an observation link from the current node to a peer, by
// node index.
func (b *Builder) Input(peer int) *Builder {
	if b.node == nil {
		b.fail("Input outside a node context")
		return b
	}
	b.node.Inputs = append(b.node.Inputs, Input{Node: peer})
	return b
}

// Initial sets the current node's initial location index (default 0).
func (b *Builder) Initial(loc int) *Builder {
	if b.node == nil {
		b.fail("Initial outside a node context")
		return b
	}
	b.node.Current = loc
	return b
}

// Location opens a new location context on the current node.
func (b *Builder) Location() *Builder {
	if b.node == nil {
		b.fail("Location outside a node context")
		return b
	}
	b.loc = &Location{Consts: make(map[string]Value)}
	b.trans = nil
	b.node.Locations = append(b.node.Locations, b.loc)
	return b
}

// Transition opens a new transition context on the current location, with
// the given target location index.
func (b *Builder) Transition(target int) *Builder {
	if b.loc == nil {
		b.fail("Transition outside a location context")
		return b
	}
	b.trans = &Transition{Target: target, Consts: make(map[string]Value)}
	b.loc.Transitions = append(b.loc.Transitions, b.trans)
	return b
}

// Guard compiles a guard expression for the current transition.
func (b *Builder) Guard(src string) *Builder {
	if b.trans == nil {
		b.fail("Guard outside a transition context")
		return b
	}
	c, err := expr.Compile(src)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("guard %q: %w", src, err))
		return b
	}
	b.trans.Guard = c
	return b
}

// Cost compiles a cost expression for the current transition.
func (b *Builder) Cost(src string) *Builder {
	if b.trans == nil {
		b.fail("Cost outside a transition context")
		return b
	}
	c, err := expr.Compile(src)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("cost %q: %w", src, err))
		return b
	}
	b.trans.Cost = c
	return b
}

// Update compiles an update procedure for the current transition.
func (b *Builder) Update(src string) *Builder {
	if b.trans == nil {
		b.fail("Update outside a transition context")
		return b
	}
	c, err := expr.CompileUpdate(src)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("update %q: %w", src, err))
		return b
	}
	b.trans.Update = c
	return b
}

// GuardFn attaches a native guard to the current transition.
func (b *Builder) GuardFn(e expr.Evaluable) *Builder {
	if b.trans == nil {
		b.fail("GuardFn outside a transition context")
		return b
	}
	b.trans.Guard = e
	return b
}

// CostFn attaches a native cost to the current transition.
func (b *Builder) CostFn(e expr.Evaluable) *Builder {
	if b.trans == nil {
		b.fail("CostFn outside a transition context")
		return b
	}
	b.trans.Cost = e
	return b
}

// UpdateFn attaches a native update procedure to the current transition.
func (b *Builder) UpdateFn(e expr.Evaluable) *Builder {
	if b.trans == nil {
		b.fail("UpdateFn outside a transition context")
		return b
	}
	b.trans.Update = e
	return b
}

// Const binds a constant on the innermost open entity.
func (b *Builder) Const(name string, v Value) *Builder {
	switch {
	case b.trans != nil:
		b.trans.Consts[name] = v
	case b.loc != nil:
		b.loc.Consts[name] = v
	case b.node != nil:
		b.node.Consts[name] = v
	default:
		b.sys.Consts[name] = v
	}
	return b
}

// Var declares a mutable variable on the innermost open entity.
func (b *Builder) Var(name string, init Value) *Builder {
	v := Var{Name: name, Init: init}
	switch {
	case b.trans != nil:
		b.trans.Vars = append(b.trans.Vars, v)
	case b.loc != nil:
		b.loc.Vars = append(b.loc.Vars, v)
	case b.node != nil:
		b.node.Vars = append(b.node.Vars, v)
	default:
		b.sys.Vars = append(b.sys.Vars, v)
	}
	return b
}

// Done validates the constructed system and returns it.
func (b *Builder) Done() (*System, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if err := b.sys.Validate(); err != nil {
		return nil, err
	}
	return b.sys, nil
}

func (b *Builder) fail(msg string) {
	b.errs = append(b.errs, fmt.Errorf("ena: %s", msg))
}
