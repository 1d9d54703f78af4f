package eventlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/reachability"
)

func exploreSwapSystem(t *testing.T) *reachability.Result {
	t.Helper()
	sys, err := ena.Build().
		Node().
		Location().Transition(1).Cost("1").
		Location().Transition(0).Cost("1").
		Node().
		Location().Transition(1).Cost("1").
		Location().Transition(0).Cost("1").
		Done()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	result, err := reachability.NewExplorer(sys).Explore()
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	return result
}

func TestWriteReadJSONL(t *testing.T) {
	result := exploreSwapSystem(t)

	var buf bytes.Buffer
	run, err := WriteJSONL(&buf, result)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if run == "" {
		t.Fatal("expected a run ID")
	}

	records, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != result.StateCount+result.EdgeCount {
		t.Fatalf("expected %d records, got %d", result.StateCount+result.EdgeCount, len(records))
	}

	states := 0
	edges := 0
	for i, rec := range records {
		if rec.Run != run {
			t.Errorf("record %d: run %q != %q", i, rec.Run, run)
		}
		if rec.Seq != i {
			t.Errorf("record %d: seq %d", i, rec.Seq)
		}
		switch rec.Kind {
		case KindState:
			states++
			if rec.Hash == "" || rec.Snapshot == nil {
				t.Errorf("record %d: incomplete state record", i)
			}
		case KindEdge:
			edges++
			if rec.From == "" || rec.To == "" || rec.Trans == "" {
				t.Errorf("record %d: incomplete edge record", i)
			}
		default:
			t.Errorf("record %d: unknown kind %q", i, rec.Kind)
		}
	}
	if states != result.StateCount || edges != result.EdgeCount {
		t.Errorf("expected %d states and %d edges, got %d and %d",
			result.StateCount, result.EdgeCount, states, edges)
	}

	// State records come first, and the first is the initial state.
	if records[0].Kind != KindState || !records[0].Initial {
		t.Error("stream must start with the initial state record")
	}
	if records[0].Depth != 0 {
		t.Errorf("initial state depth: expected 0, got %d", records[0].Depth)
	}
}

func TestReadJSONLSkipsBlankLines(t *testing.T) {
	input := `{"run":"r","seq":0,"kind":"state","hash":"abc"}` + "\n\n" +
		`{"run":"r","seq":1,"kind":"edge","from":"abc","to":"def","trans":"t"}` + "\n"
	records, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestReadJSONLRejectsGarbage(t *testing.T) {
	if _, err := ReadJSONL(strings.NewReader("not json\n")); err == nil {
		t.Error("expected error on malformed line")
	}
}

func TestWriteEdgesCSV(t *testing.T) {
	result := exploreSwapSystem(t)

	var buf bytes.Buffer
	run, err := WriteEdgesCSV(&buf, result)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+result.EdgeCount {
		t.Fatalf("expected header plus %d edge rows, got %d lines", result.EdgeCount, len(lines))
	}
	if lines[0] != "run,from,to,transition,value" {
		t.Errorf("unexpected header %q", lines[0])
	}
	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, run+",") {
			t.Errorf("row %d: missing run prefix: %q", i, line)
		}
	}
}

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == "" || a == b {
		t.Errorf("run IDs must be unique and non-empty: %q, %q", a, b)
	}
}
