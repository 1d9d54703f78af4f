package expr

import (
	"fmt"
	"sort"
	"strings"
)

// AbortSignal declares the current firing attempt not executable. It is
// expected control flow, absorbed by the firing engine, never reported as an
// error to callers.
type AbortSignal struct{}

func (s *AbortSignal) Error() string {
	return "expr: abort signal"
}

// JumpSignal overrides the normal outcome of a firing: Value replaces the
// cost expression's result and Jumps relocates the listed nodes directly,
// bypassing the transition's declared target.
type JumpSignal struct {
	Value any
	Jumps map[int]int // node index -> new current location index
}

func (s *JumpSignal) Error() string {
	pairs := make([]string, 0, len(s.Jumps))
	for n := range s.Jumps {
		pairs = append(pairs, fmt.Sprintf("%d:%d", n, s.Jumps[n]))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("expr: jump signal {%s}", strings.Join(pairs, " "))
}
