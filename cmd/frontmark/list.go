// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/frontmark/frontmark/internal/store"
)

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the loaded rule set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runList(cfg)
		},
	}
	registerCommonFlags(cmd.Flags())
	return cmd
}

func runList(cfg *appConfig) error {
	data, err := os.ReadFile(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("reading rule file: %w", err)
	}
	ruleFile, err := store.Load(data, slog.Default())
	if err != nil {
		return err
	}

	fmt.Printf("%d rule(s), file version %s\n", len(ruleFile.Rules), ruleFile.Version)
	for _, r := range ruleFile.Rules {
		cond := r.Condition
		if cond == "" {
			cond = "(always)"
		}
		fmt.Printf("  %s  %-30s  when %s  do %s\n", r.ID, r.Name, cond, r.Action)
	}
	if ruleFile.LastRun != "" {
		fmt.Printf("last run: %s\n", ruleFile.LastRun)
	}
	return nil
}
