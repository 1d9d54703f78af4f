package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-ena/eventlog"
	"github.com/pflow-xyz/go-ena/parser"
	"github.com/pflow-xyz/go-ena/reachability"
	"github.com/pflow-xyz/go-ena/store"
)

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return fmt.Sprintf("%v", []string(*l)) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func reach(args []string) error {
	fs := flag.NewFlagSet("reach", flag.ExitOnError)
	limit := fs.Int("limit", 10000, "Maximum states to explore")
	outputJSON := fs.Bool("json", false, "Output summary as JSON")
	showTrace := fs.Bool("trace", false, "Print a trace to the first violation")
	saveFile := fs.String("save", "", "Write the graph as JSON lines to file")
	csvFile := fs.String("csv", "", "Write the edge list as CSV to file")
	dbFile := fs.String("db", "", "Persist the run to a SQLite database")
	var asserts stringList
	fs.Var(&asserts, "assert", "Assertion to check at every state (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ena reach <model.json> [options]

Explore the reachable state space breadth-first from the initial snapshot.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Full exploration up to the state limit
  ena reach model.json --limit 50000

  # Check assertions, print a counterexample trace
  ena reach model.json --assert "nodes[0].current != 2" --trace

  # Persist the graph
  ena reach model.json --save graph.jsonl --csv edges.csv --db runs.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}

	jsonData, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	sys, warnings, err := parser.FromJSON(jsonData)
	if err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	explorer := reachability.NewExplorer(sys).WithMaxStates(*limit)
	for _, src := range asserts {
		a, err := reachability.CompileAssert(src)
		if err != nil {
			return fmt.Errorf("compile assertion: %w", err)
		}
		explorer = explorer.WithAssert(a)
	}
	if *showTrace {
		explorer = explorer.WithTraceOnViolation()
	}

	result, err := explorer.Explore()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	if *outputJSON {
		summary := map[string]any{
			"status":      result.Status.String(),
			"state_count": result.StateCount,
			"edge_count":  result.EdgeCount,
			"max_depth":   result.MaxDepth,
			"violations":  len(result.Violations),
		}
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printReachResults(result)
	}

	if *saveFile != "" {
		f, err := os.Create(*saveFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", *saveFile, err)
		}
		runID, err := eventlog.WriteJSONL(f, result)
		f.Close()
		if err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Graph written to %s (run %s)\n", *saveFile, runID)
	}

	if *csvFile != "" {
		f, err := os.Create(*csvFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", *csvFile, err)
		}
		_, err2 := eventlog.WriteEdgesCSV(f, result)
		f.Close()
		if err2 != nil {
			return fmt.Errorf("write edges: %w", err2)
		}
		fmt.Fprintf(os.Stderr, "Edges written to %s\n", *csvFile)
	}

	if *dbFile != "" {
		db, err := store.Open(*dbFile)
		if err != nil {
			return err
		}
		runID, err := db.SaveResult(result)
		db.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run %s saved to %s\n", runID, *dbFile)
	}

	if len(result.Violations) > 0 {
		os.Exit(1)
	}
	return nil
}

func printReachResults(result *reachability.Result) {
	fmt.Println("=== State Space Exploration ===")
	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("States:     %d\n", result.StateCount)
	fmt.Printf("Edges:      %d\n", result.EdgeCount)
	fmt.Printf("Max depth:  %d\n", result.MaxDepth)
	fmt.Printf("Terminal:   %d\n", len(result.Graph.TerminalStates()))
	if result.Stats.BranchingFactor > 0 {
		fmt.Printf("Branching:  %.2f\n", result.Stats.BranchingFactor)
	}

	if len(result.Violations) > 0 {
		fmt.Printf("\nViolations (%d):\n", len(result.Violations))
		for _, v := range result.Violations {
			fmt.Printf("  ✗ %s\n", v.Error())
		}
	}

	if len(result.Trace) > 0 {
		fmt.Printf("\nTrace to first violation (%d steps):\n", len(result.Trace))
		for i, edge := range result.Trace {
			fmt.Printf("  %d. %s -> %s\n", i+1, edge.Path, edge.To.Snapshot)
		}
	}
}
