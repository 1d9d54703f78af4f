package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-ena/parser"
)

func validate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Suppress warnings, only report errors")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ena validate <model.json> [options]

Validate system model structure.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Checks performed:
  - Structural integrity (nodes, locations, index ranges)
  - Input and jump target references
  - Name clashes between constants and variables
  - Guard, cost and update expression syntax

Examples:
  ena validate model.json
  ena validate model.json --quiet
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("model file required")
	}

	modelFile := fs.Arg(0)

	jsonData, err := os.ReadFile(modelFile)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	sys, warnings, err := parser.FromJSON(jsonData)
	if err != nil {
		return fmt.Errorf("parse model: %w", err)
	}

	if !*quiet {
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
	}

	locations := 0
	transitions := 0
	for _, node := range sys.Nodes {
		locations += len(node.Locations)
		for _, loc := range node.Locations {
			transitions += len(loc.Transitions)
		}
	}
	fmt.Printf("ok: %d nodes, %d locations, %d transitions\n",
		len(sys.Nodes), locations, transitions)
	return nil
}
