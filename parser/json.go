// Package parser handles JSON import/export of system instance definitions.
// It is the thin loading layer in front of the core: guard, cost and update
// code arrives as source strings and is compiled once at load time.
//
// Format:
//
//	{
//	  "consts": {"nbSecrets": 1},
//	  "vars": [{"name": "stolen", "init": false}],
//	  "nodes": [
//	    {
//	      "current": 0,
//	      "inputs": [1],
//	      "vars": [{"name": "count", "init": 0}],
//	      "locations": [
//	        {"transitions": [
//	          {"target": 1, "guard": "count < 3", "cost": "1",
//	           "update": "node.count = node.count + 1"}
//	        ]},
//	        {"transitions": []}
//	      ]
//	    }
//	  ]
//	}
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/expr"
)

var (
	ErrMissingField = errors.New("parser: missing required field")
	ErrBadValue     = errors.New("parser: unsupported value")
)

type systemDoc struct {
	Consts map[string]any `json:"consts,omitempty"`
	Vars   []varDoc       `json:"vars,omitempty"`
	Nodes  []nodeDoc      `json:"nodes"`
}

type nodeDoc struct {
	Inputs    *[]int         `json:"inputs,omitempty"`
	Current   *int           `json:"current"`
	Locations []locationDoc  `json:"locations"`
	Consts    map[string]any `json:"consts,omitempty"`
	Vars      []varDoc       `json:"vars,omitempty"`
}

type locationDoc struct {
	Transitions *[]transitionDoc `json:"transitions"`
	Consts      map[string]any   `json:"consts,omitempty"`
	Vars        []varDoc         `json:"vars,omitempty"`
}

type transitionDoc struct {
	Target *int           `json:"target"`
	Guard  string         `json:"guard,omitempty"`
	Cost   string         `json:"cost,omitempty"`
	Update string         `json:"update,omitempty"`
	Consts map[string]any `json:"consts,omitempty"`
	Vars   []varDoc       `json:"vars,omitempty"`
}

type varDoc struct {
	Name string `json:"name"`
	Init any    `json:"init"`
}

// FromJSON parses a validated system from JSON bytes. Missing primitive
// fields (nodes, locations, current, target) are fatal; missing optional
// fields are reported as warnings and defaulted.
func FromJSON(data []byte) (*ena.System, []string, error) {
	var doc systemDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parser: invalid JSON: %w", err)
	}

	var warnings []string
	sys := &ena.System{Consts: make(map[string]ena.Value)}

	var err error
	if sys.Consts, err = convertConsts(doc.Consts, "system"); err != nil {
		return nil, nil, err
	}
	if sys.Vars, err = convertVars(doc.Vars, "system"); err != nil {
		return nil, nil, err
	}
	if len(doc.Nodes) == 0 {
		return nil, nil, fmt.Errorf("%w: nodes", ErrMissingField)
	}

	for n, nd := range doc.Nodes {
		where := ena.NodePrefix(n)
		node := &ena.Node{}
		if nd.Current == nil {
			return nil, nil, fmt.Errorf("%w: %s.current", ErrMissingField, where)
		}
		node.Current = *nd.Current
		if nd.Inputs == nil {
			warnings = append(warnings, fmt.Sprintf("missing %s.inputs", where))
		} else {
			for _, peer := range *nd.Inputs {
				node.Inputs = append(node.Inputs, ena.Input{Node: peer})
			}
		}
		if node.Consts, err = convertConsts(nd.Consts, where); err != nil {
			return nil, nil, err
		}
		if node.Vars, err = convertVars(nd.Vars, where); err != nil {
			return nil, nil, err
		}
		if len(nd.Locations) == 0 {
			return nil, nil, fmt.Errorf("%w: %s.locations", ErrMissingField, where)
		}

		for l, ld := range nd.Locations {
			where := ena.LocationPrefix(n, l)
			loc := &ena.Location{}
			if ld.Transitions == nil {
				warnings = append(warnings, fmt.Sprintf("missing %s.transitions", where))
			}
			if loc.Consts, err = convertConsts(ld.Consts, where); err != nil {
				return nil, nil, err
			}
			if loc.Vars, err = convertVars(ld.Vars, where); err != nil {
				return nil, nil, err
			}

			if ld.Transitions != nil {
				for t, td := range *ld.Transitions {
					where := ena.TransitionPrefix(n, l, t)
					trans, err := convertTransition(td, where)
					if err != nil {
						return nil, nil, err
					}
					loc.Transitions = append(loc.Transitions, trans)
				}
			}
			node.Locations = append(node.Locations, loc)
		}
		sys.Nodes = append(sys.Nodes, node)
	}

	if err := sys.Validate(); err != nil {
		return nil, nil, err
	}
	return sys, warnings, nil
}

func convertTransition(td transitionDoc, where string) (*ena.Transition, error) {
	if td.Target == nil {
		return nil, fmt.Errorf("%w: %s.target", ErrMissingField, where)
	}
	trans := &ena.Transition{Target: *td.Target}

	var err error
	if td.Guard != "" {
		if trans.Guard, err = expr.Compile(td.Guard); err != nil {
			return nil, fmt.Errorf("parser: %s.guard: %w", where, err)
		}
	}
	if td.Cost != "" {
		if trans.Cost, err = expr.Compile(td.Cost); err != nil {
			return nil, fmt.Errorf("parser: %s.cost: %w", where, err)
		}
	}
	if td.Update != "" {
		if trans.Update, err = expr.CompileUpdate(td.Update); err != nil {
			return nil, fmt.Errorf("parser: %s.update: %w", where, err)
		}
	}
	if trans.Consts, err = convertConsts(td.Consts, where); err != nil {
		return nil, err
	}
	if trans.Vars, err = convertVars(td.Vars, where); err != nil {
		return nil, err
	}
	return trans, nil
}

func convertConsts(in map[string]any, where string) (map[string]ena.Value, error) {
	out := make(map[string]ena.Value, len(in))
	for name, raw := range in {
		v, err := convertValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrBadValue, where, name, err)
		}
		out[name] = v
	}
	return out, nil
}

func convertVars(in []varDoc, where string) ([]ena.Var, error) {
	var out []ena.Var
	for _, vd := range in {
		if vd.Name == "" {
			return nil, fmt.Errorf("%w: %s var name", ErrMissingField, where)
		}
		v, err := convertValue(vd.Init)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrBadValue, where, vd.Name, err)
		}
		out = append(out, ena.Var{Name: vd.Name, Init: v})
	}
	return out, nil
}

// convertValue maps a decoded JSON value onto a model value. JSON numbers
// must be integral.
func convertValue(raw any) (ena.Value, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("non-integer number %v", v)
		}
		return int64(v), nil
	case nil:
		return nil, fmt.Errorf("null value")
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
}

// ToJSON exports a system back to its JSON instance form. Only compiled
// source code round-trips; native guards export their display name.
func ToJSON(sys *ena.System) ([]byte, error) {
	doc := systemDoc{
		Consts: exportConsts(sys.Consts),
		Vars:   exportVars(sys.Vars),
	}
	for _, node := range sys.Nodes {
		current := node.Current
		inputs := make([]int, 0, len(node.Inputs))
		for _, in := range node.Inputs {
			inputs = append(inputs, in.Node)
		}
		nd := nodeDoc{
			Current: &current,
			Inputs:  &inputs,
			Consts:  exportConsts(node.Consts),
			Vars:    exportVars(node.Vars),
		}
		for _, loc := range node.Locations {
			transitions := make([]transitionDoc, 0, len(loc.Transitions))
			for _, trans := range loc.Transitions {
				target := trans.Target
				td := transitionDoc{
					Target: &target,
					Consts: exportConsts(trans.Consts),
					Vars:   exportVars(trans.Vars),
				}
				if trans.Guard != nil {
					td.Guard = trans.Guard.String()
				}
				if trans.Cost != nil {
					td.Cost = trans.Cost.String()
				}
				if trans.Update != nil {
					td.Update = trans.Update.String()
				}
				transitions = append(transitions, td)
			}
			nd.Locations = append(nd.Locations, locationDoc{
				Transitions: &transitions,
				Consts:      exportConsts(loc.Consts),
				Vars:        exportVars(loc.Vars),
			})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func exportConsts(in map[string]ena.Value) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func exportVars(in []ena.Var) []varDoc {
	var out []varDoc
	for _, v := range in {
		out = append(out, varDoc{Name: v.Name, Init: v.Init})
	}
	return out
}
