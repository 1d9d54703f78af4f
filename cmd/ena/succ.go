package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/engine"
	"github.com/pflow-xyz/go-ena/parser"
)

func succ(args []string) error {
	fs := flag.NewFlagSet("succ", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ena succ <model.json>

Enumerate the successors of the model's initial snapshot, one per line:
the fired transition, its cost value and the resulting snapshot.

Examples:
  ena succ model.json
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

	sys, _, err := parser.FromJSON(jsonData)
	if err != nil {
		return fmt.Errorf("parse model: %w", err)
	}

	initial := ena.Initial(sys)
	fmt.Printf("initial: %s\n", initial)

	succs, err := engine.Successors(sys, initial)
	if err != nil {
		return fmt.Errorf("enumerate successors: %w", err)
	}
	if len(succs) == 0 {
		fmt.Println("deadlock: no executable transitions")
		return nil
	}
	for _, s := range succs {
		fmt.Printf("%s  cost=%v  %s\n", s.Path, s.Value, s.Snapshot)
	}
	return nil
}
