package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pflow-xyz/go-ena/reachability"
)

// WriteJSONL streams an exploration result as JSONL: all state records in
// discovery order, then all edge records. Returns the run ID assigned to
// the stream.
func WriteJSONL(w io.Writer, result *reachability.Result) (string, error) {
	run := NewRunID()
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	seq := 0

	for _, state := range result.Graph.StatesList() {
		rec := Record{
			Run:      run,
			Seq:      seq,
			Kind:     KindState,
			Hash:     state.Hash,
			Snapshot: state.Snapshot,
			Depth:    state.Depth,
			Initial:  state.IsInitial,
		}
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("eventlog: encoding state %s: %w", state.Hash, err)
		}
		seq++
	}

	for _, edge := range result.Graph.Edges {
		rec := Record{
			Run:   run,
			Seq:   seq,
			Kind:  KindEdge,
			From:  edge.From.Hash,
			To:    edge.To.Hash,
			Trans: edge.Path.String(),
			Value: edge.Value,
		}
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("eventlog: encoding edge %s -> %s: %w", edge.From.Hash, edge.To.Hash, err)
		}
		seq++
	}

	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("eventlog: flushing: %w", err)
	}
	return run, nil
}

// ReadJSONL parses a persisted exploration stream.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: reading: %w", err)
	}
	return records, nil
}
