package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-ena/store"
)

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbFile := fs.String("db", "runs.db", "SQLite database path")
	traceTo := fs.String("trace", "", "Reconstruct the trace to the state with this hash")
	runID := fs.String("run", "", "Run ID (required with --trace)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ena runs [options]

List persisted exploration runs, or reconstruct a stored trace.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  ena runs --db runs.db
  ena runs --db runs.db --run <id> --trace <state-hash>
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	if *traceTo != "" {
		if *runID == "" {
			return fmt.Errorf("--trace requires --run")
		}
		trace, err := db.TraceTo(*runID, *traceTo)
		if err != nil {
			return err
		}
		if len(trace) == 0 {
			fmt.Println("state is initial, empty trace")
			return nil
		}
		for i, e := range trace {
			fmt.Printf("%2d. %s  value=%s  -> %s\n", i+1, e.Trans, e.Value, e.To)
		}
		return nil
	}

	list, err := db.ListRuns()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no runs")
		return nil
	}
	fmt.Printf("%-36s  %-20s  %-14s  %8s  %8s  %6s\n",
		"ID", "CREATED", "STATUS", "STATES", "EDGES", "DEPTH")
	for _, run := range list {
		fmt.Printf("%-36s  %-20s  %-14s  %8d  %8d  %6d\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Status, run.StateCount, run.EdgeCount, run.MaxDepth)
	}
	return nil
}
