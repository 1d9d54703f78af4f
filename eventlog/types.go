// Package eventlog persists exploration output as streams of records:
// one record per graph vertex (the full serialized snapshot) and one per
// labelled edge. The stream is sufficient to reconstruct any trace without
// re-running exploration. Supported formats are JSONL and CSV.
package eventlog

import (
	"github.com/google/uuid"
)

// Kind discriminates record types within one stream.
type Kind string

const (
	KindState Kind = "state"
	KindEdge  Kind = "edge"
)

// Record is one line of a persisted exploration stream.
type Record struct {
	Run  string `json:"run"`
	Seq  int    `json:"seq"`
	Kind Kind   `json:"kind"`

	// State records
	Hash     string         `json:"hash,omitempty"`
	Snapshot map[string]any `json:"snapshot,omitempty"`
	Depth    int            `json:"depth,omitempty"`
	Initial  bool           `json:"initial,omitempty"`

	// Edge records
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Trans string `json:"trans,omitempty"`
	Value any    `json:"value,omitempty"`
}

// NewRunID returns a fresh exploration run identifier.
func NewRunID() string {
	return uuid.NewString()
}
