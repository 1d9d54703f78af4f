package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/pflow-xyz/go-ena/ena"
	"github.com/pflow-xyz/go-ena/engine"
	"github.com/pflow-xyz/go-ena/parser"
)

func walk(args []string) error {
	fs := flag.NewFlagSet("walk", flag.ExitOnError)
	steps := fs.Int("steps", 20, "Maximum steps to take")
	seed := fs.Int64("seed", 0, "Random seed")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ena walk <model.json> [options]

Run a random execution trace from the initial snapshot, printing each
fired transition and the snapshot it produced. Stops early at deadlock.

Options:
`)
		fs.PrintDefaults()
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
	fmt.Printf(" 0. %s\n", initial)

	rng := rand.New(rand.NewSource(*seed))
	trace, err := engine.Walk(sys, initial, *steps, rng)
	if err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	for i, step := range trace {
		fmt.Printf("%2d. %s  cost=%v  %s\n", i+1, step.Path, step.Value, step.Snapshot)
	}
	if len(trace) < *steps {
		fmt.Printf("deadlock after %d steps\n", len(trace))
	}
	return nil
}
