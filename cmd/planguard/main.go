// Package main is the entry point for the planguard CLI.
//
// planguard manages plan governance policies: named, per-provider rule sets
// that decide which fields of a cluster plan may change. Policies live in a
// Kubernetes namespace, an S3 bucket or a PostgreSQL table, as selected in
// planguard.yaml.
//
// Commands: init, seed, create, update, delete, get, list, allow, deny,
// evaluate.
//
// For detailed usage information, run:
//
//	planguard --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/planguard/cmd/planguard/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
