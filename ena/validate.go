package ena

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Validate checks the system for structural correctness: non-empty node
// sequence, in-range index references, and per-entity field-name uniqueness.
// The firing engine assumes a validated system and behaves incorrectly on a
// malformed one.
func (s *System) Validate() error {
	if len(s.Nodes) == 0 {
		return ErrNoNodes
	}
	if err := checkFields(s.Vars, s.Consts, "system"); err != nil {
		return err
	}
	for n, node := range s.Nodes {
		if len(node.Locations) == 0 {
			return fmt.Errorf("%w: nodes[%d]", ErrNoLocations, n)
		}
		if node.Current < 0 || node.Current >= len(node.Locations) {
			return fmt.Errorf("%w: nodes[%d].current = %d", ErrInvalidInitial, n, node.Current)
		}
		if err := checkFields(node.Vars, node.Consts, NodePrefix(n)); err != nil {
			return err
		}
		for i, in := range node.Inputs {
			if in.Node < 0 || in.Node >= len(s.Nodes) {
				return fmt.Errorf("%w: nodes[%d].inputs[%d] = %d", ErrInvalidInput, n, i, in.Node)
			}
		}
		for l, loc := range node.Locations {
			if err := checkFields(loc.Vars, loc.Consts, LocationPrefix(n, l)); err != nil {
				return err
			}
			for t, trans := range loc.Transitions {
				if trans.Target < 0 || trans.Target >= len(node.Locations) {
					return fmt.Errorf("%w: %s = %d",
						ErrInvalidTarget, Path{n, l, t}, trans.Target)
				}
				if err := checkFields(trans.Vars, trans.Consts, TransitionPrefix(n, l, t)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkFields rejects duplicate names across an entity's vars and consts,
// and initial values outside the supported types.
func checkFields(vars []Var, consts map[string]Value, where string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v.Name] {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateName, where, v.Name)
		}
		seen[v.Name] = true
		if !validValue(v.Init) {
			return fmt.Errorf("%w: %s.%s = %T", ErrInvalidInitValue, where, v.Name, v.Init)
		}
	}
	for name := range consts {
		if seen[name] {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateName, where, name)
		}
	}
	return nil
}

func validValue(v Value) bool {
	switch v.(type) {
	case int64, bool, string, *uint256.Int:
		return true
	default:
		return false
	}
}
