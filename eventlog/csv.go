package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pflow-xyz/go-ena/reachability"
)

// WriteEdgesCSV writes the labelled edges of an exploration result as CSV
// with a header row: run, from, to, transition, value. State contents are
// not included; pair with WriteJSONL when full snapshots are needed.
func WriteEdgesCSV(w io.Writer, result *reachability.Result) (string, error) {
	run := NewRunID()
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"run", "from", "to", "transition", "value"}); err != nil {
		return "", fmt.Errorf("eventlog: writing header: %w", err)
	}
	for _, edge := range result.Graph.Edges {
		row := []string{
			run,
			edge.From.Hash,
			edge.To.Hash,
			edge.Path.String(),
			fmt.Sprintf("%v", edge.Value),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("eventlog: writing edge: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("eventlog: flushing: %w", err)
	}
	return run, nil
}
