// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/frontmark/frontmark/internal/action"
	"github.com/frontmark/frontmark/internal/condition"
	"github.com/frontmark/frontmark/internal/logging"
	"github.com/frontmark/frontmark/internal/store"
	"github.com/frontmark/frontmark/internal/template"
	"github.com/frontmark/frontmark/internal/value"
	"github.com/frontmark/frontmark/pkg/errutil"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate all rules without touching notes",
		Long: `Parses every rule's condition and action (with templates expanded
against a fixed clock) and reports problems. Exits non-zero when any rule
is invalid. Useful in CI or before a large scan:
  frontmark check --rules rules.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runCheck(cfg)
		},
	}
	registerCommonFlags(cmd.Flags())
	return cmd
}

func runCheck(cfg *appConfig) error {
	logger := logging.Setup(version, cfg.LogFormat, cfg.Debug, nil)
	slog.SetDefault(logger)

	data, err := os.ReadFile(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("reading rule file: %w", err)
	}
	ruleFile, err := store.Load(data, logger)
	if err != nil {
		return err
	}

	// A fixed clock and empty front-matter: check validates shape, not
	// note-specific data.
	checkCtx := template.Context{
		Value: value.NewMap(),
		File: template.FileInfo{
			Basename: "note",
			Path:     "note.md",
			Folder:   ".",
			Vault:    "vault",
		},
		Now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	invalid := 0
	for _, rule := range ruleFile.Rules {
		if rule.Condition != "" {
			if _, err := condition.Parse(rule.Condition); err != nil {
				logger.Error("invalid condition", "rule", rule.Name, "error", err)
				invalid++
				continue
			}
		}
		expanded, err := template.Expand(rule.Action, checkCtx)
		if err != nil {
			if oopsErr, ok := oops.AsOops(err); ok && errutil.IsEval(err) && oopsErr.Context()["path"] != nil {
				// fm: lookups depend on note data; only report, don't fail.
				logger.Warn("action references note data", "rule", rule.Name, "detail", err.Error())
				continue
			}
			logger.Error("invalid action template", "rule", rule.Name, "error", err)
			invalid++
			continue
		}
		if _, err := action.Parse(expanded); err != nil {
			logger.Error("invalid action", "rule", rule.Name, "error", err)
			invalid++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("validation failed: %d of %d rules invalid", invalid, len(ruleFile.Rules))
	}
	logger.Info("all rules valid", "count", len(ruleFile.Rules))
	return nil
}
