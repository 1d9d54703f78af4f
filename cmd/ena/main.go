package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		if err := validate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "succ":
		if err := succ(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "reach":
		if err := reach(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "walk":
		if err := walk(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("ena version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ena - executable network of automata modeling and exploration tool

Usage:
  ena <command> [options]

Commands:
  validate   Validate a system model
  succ       Enumerate successor states of a snapshot
  reach      Explore the reachable state space
  walk       Run a random execution trace
  runs       List or inspect persisted exploration runs
  help       Show this help message
  version    Show version information

Examples:
  # Validate model structure
  ena validate model.json

  # Explore up to 10000 states, checking an assertion
  ena reach model.json --limit 10000 --assert "nodes[0].current != 2"

  # Explore and persist the graph
  ena reach model.json --save graph.jsonl --db runs.db

  # Random walk of 50 steps
  ena walk model.json --steps 50

For command-specific help, run:
  ena <command> --help`)
}
