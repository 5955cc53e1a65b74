// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package main is the entry point for the frontmark CLI: a rule engine for
// bulk mutation of YAML front-matter attached to Markdown notes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frontmark",
		Short:         "Bulk-edit YAML front-matter with rules",
		Long:          "Frontmark applies condition/action rules to the YAML front-matter of Markdown notes.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewApplyCmd())
	root.AddCommand(NewCheckCmd())
	root.AddCommand(NewListCmd())
	return root
}
