package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"ets/pkg/journal"
)

// Dumps journaled events for one instance so a finished test run can be
// inspected offline.
func main() {
	var (
		path     string
		instance string
	)
	flag.StringVar(&path, "path", "", "journal database path")
	flag.StringVar(&instance, "instance", "", "instance id to dump")
	flag.Parse()
	if path == "" || instance == "" {
		fmt.Fprintln(os.Stderr, "--path and --instance required")
		os.Exit(2)
	}

	j, err := journal.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.List(instance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list entries: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			fmt.Fprintf(os.Stderr, "encode entry %d: %v\n", e.Seq, err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "%d entries\n", len(entries))
}
