package ena

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/holiman/uint256"
)

// Snapshot captures every mutable field's value across the whole system at
// one instant, keyed by canonical structural path ("nodes[0].current",
// "nodes[1].count", "stolen", ...). A snapshot is never mutated in place:
// firing always produces a new value, so old snapshots stay valid as graph
// vertices and frontier entries.
type Snapshot map[string]Value

// Initial extracts the construction-time values of all mutable fields, in
// canonical path order (node index, then field declaration order).
func Initial(s *System) Snapshot {
	snap := make(Snapshot)
	for _, v := range s.Vars {
		snap[v.Name] = v.Init
	}
	for n, node := range s.Nodes {
		snap[CurrentPath(n)] = int64(node.Current)
		for _, v := range node.Vars {
			snap[NodePrefix(n)+"."+v.Name] = v.Init
		}
		for l, loc := range node.Locations {
			for _, v := range loc.Vars {
				snap[LocationPrefix(n, l)+"."+v.Name] = v.Init
			}
			for t, trans := range loc.Transitions {
				for _, v := range trans.Vars {
					snap[TransitionPrefix(n, l, t)+"."+v.Name] = v.Init
				}
			}
		}
	}
	return snap
}

// Copy creates a copy of the snapshot.
func (s Snapshot) Copy() Snapshot {
	result := make(Snapshot, len(s))
	for k, v := range s {
		result[k] = v
	}
	return result
}

// Get returns the value at a path.
func (s Snapshot) Get(path string) (Value, bool) {
	v, ok := s[path]
	return v, ok
}

// Current returns a node's current location index.
func (s Snapshot) Current(node int) int {
	if v, ok := s[CurrentPath(node)]; ok {
		if n, ok := v.(int64); ok {
			return int(n)
		}
	}
	return 0
}

// With returns a new snapshot with one field replaced; the receiver is
// untouched.
func (s Snapshot) With(path string, value Value) Snapshot {
	result := s.Copy()
	result[path] = value
	return result
}

// Equals checks structural equality: every mapped value equal under the
// same canonical encoding used for hashing.
func (s Snapshot) Equals(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || valueKey(v) != valueKey(ov) {
			return false
		}
	}
	return true
}

// Hash returns a deterministic hash of the snapshot, consistent with Equals
// regardless of construction order.
func (s Snapshot) Hash() string {
	keys := s.SortedPaths()
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(valueKey(s[k])))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// SortedPaths returns the snapshot's paths in sorted order.
func (s Snapshot) SortedPaths() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a human-readable representation.
func (s Snapshot) String() string {
	keys := s.SortedPaths()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, s[k]))
	}
	return strings.Join(parts, ", ")
}

// valueKey encodes a value canonically for hashing and equality. Numeric
// values are normalized so that an int64 and a 256-bit integer holding the
// same number encode identically.
func valueKey(v Value) string {
	switch val := v.(type) {
	case int64:
		return fmt.Sprintf("i:%d", val)
	case int:
		return fmt.Sprintf("i:%d", val)
	case bool:
		return fmt.Sprintf("b:%t", val)
	case string:
		return "s:" + val
	case *uint256.Int:
		if val.IsUint64() && val.Uint64() <= math.MaxInt64 {
			return fmt.Sprintf("i:%d", val.Uint64())
		}
		return "u:" + val.Dec()
	default:
		return fmt.Sprintf("?:%v", val)
	}
}
