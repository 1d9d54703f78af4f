package expr

import (
	"fmt"
)

// Scope is one level of a name-resolution chain. Resolution walks parent
// links from the innermost scope outward; the chain is built explicitly per
// firing attempt rather than captured in closures.
type Scope struct {
	parent *Scope
	names  map[string]any
}

// NewScope creates a scope with the given parent (nil for a root scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, names: make(map[string]any)}
}

// Bind binds a name in this scope, shadowing outer bindings.
func (s *Scope) Bind(name string, value any) {
	s.names[name] = value
}

// Lookup finds a name in this scope or any ancestor.
func (s *Scope) Lookup(name string) (any, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.names[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve finds a name and dereferences live bindings. A miss in every scope
// is ErrUnboundName.
func (s *Scope) Resolve(name string) (any, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnboundName, name)
	}
	if b, ok := v.(Binding); ok {
		return b.Load()
	}
	return v, nil
}

// Binding is a live value bound in a scope. Identifier resolution loads it on
// every access, so reads observe writes made earlier in the same evaluation.
type Binding interface {
	Load() (any, error)
}

// Func is a callable value bound in a scope.
type Func func(args ...any) (any, error)

// NewBaseScope returns the root scope with the builtin functions bound:
// abort() and jump(value, node, loc, ...).
func NewBaseScope() *Scope {
	s := NewScope(nil)
	s.Bind("abort", Func(func(args ...any) (any, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("abort() takes no arguments")
		}
		return nil, &AbortSignal{}
	}))
	s.Bind("jump", Func(func(args ...any) (any, error) {
		if len(args) < 3 || len(args)%2 == 0 {
			return nil, fmt.Errorf("jump() requires a value followed by (node, location) pairs")
		}
		sig := &JumpSignal{Value: args[0], Jumps: make(map[int]int)}
		for i := 1; i < len(args); i += 2 {
			node, ok := toInt64(args[i])
			if !ok {
				return nil, fmt.Errorf("jump() node index must be numeric, got %T", args[i])
			}
			loc, ok := toInt64(args[i+1])
			if !ok {
				return nil, fmt.Errorf("jump() location index must be numeric, got %T", args[i+1])
			}
			sig.Jumps[int(node)] = int(loc)
		}
		return nil, sig
	}))
	return s
}
