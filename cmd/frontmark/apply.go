// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/frontmark/frontmark/internal/engine"
	"github.com/frontmark/frontmark/internal/logging"
	"github.com/frontmark/frontmark/internal/scope"
	"github.com/frontmark/frontmark/internal/store"
	"github.com/frontmark/frontmark/pkg/errutil"
)

// runSummary aggregates per-file outcomes of one scan.
type runSummary struct {
	Files    int
	Modified int
	Warnings int
	Errors   int
	Skipped  int
}

// NewApplyCmd creates the apply subcommand.
func NewApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply rules to the notes of a vault",
		Long: `Walk the vault for Markdown notes, match each rule's scope,
run matching rules against the note's front-matter, and persist the
mutated notes. Bodies are never touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return runApply(cmd.Context(), cfg)
		},
	}
	registerCommonFlags(cmd.Flags())
	cmd.Flags().String("vault", ".", "vault directory to scan")
	cmd.Flags().Bool("dry-run", false, "report changes without writing")
	cmd.Flags().String("rule", "", "apply only the rule with this id")
	cmd.Flags().Bool("backup", false, "write a .bak copy before every mutation")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Int("scan-timeout", 0, "overall scan budget in milliseconds (0 = the rule file's scanTimeout, if any)")
	return cmd
}

func runApply(ctx context.Context, cfg *appConfig) error {
	logger := logging.Setup(version, cfg.LogFormat, cfg.Debug, nil)
	slog.SetDefault(logger)

	ruleFile, rules, err := loadRules(cfg, logger)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		logger.Info("no rules to apply")
		return nil
	}

	if cfg.ScanTimeout == 0 && ruleFile.Settings.ScanTimeout > 0 {
		cfg.ScanTimeout = time.Duration(ruleFile.Settings.ScanTimeout) * time.Millisecond
	}
	if cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ScanTimeout)
		defer cancel()
	}

	registry := prometheus.NewRegistry()
	eng := engine.NewEngine(cfg.Limits, engine.NewMetrics(registry))

	var metricsSrv *metricsServer
	if cfg.MetricsAddr != "" {
		metricsSrv = newMetricsServer(cfg.MetricsAddr, registry)
		if err := metricsSrv.Start(); err != nil {
			return err
		}
		defer metricsSrv.Stop()
	}

	matchers, err := compileScopes(rules)
	if err != nil {
		return err
	}

	start := time.Now()
	summary := &runSummary{}
	vault := filepath.Clean(cfg.Vault)
	vaultName := filepath.Base(vault)

	walkErr := filepath.WalkDir(vault, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(vault, path)
		if err != nil {
			return err
		}
		applyToNote(ctx, applyArgs{
			engine:    eng,
			rules:     rules,
			matchers:  matchers,
			settings:  ruleFile.Settings,
			cfg:       cfg,
			logger:    logger,
			vaultName: vaultName,
			absPath:   path,
			relPath:   filepath.ToSlash(rel),
			summary:   summary,
		})
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("scanning vault: %w", walkErr)
	}

	logger.Info("scan complete",
		"files", summary.Files,
		"modified", summary.Modified,
		"warnings", summary.Warnings,
		"errors", summary.Errors,
		"skipped", summary.Skipped,
		"duration", time.Since(start),
		"dry_run", cfg.DryRun,
	)
	if summary.Errors > 0 {
		return fmt.Errorf("%d file(s) reported errors", summary.Errors)
	}
	return nil
}

func loadRules(cfg *appConfig, logger *slog.Logger) (*store.File, []engine.Rule, error) {
	data, err := os.ReadFile(cfg.RulesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading rule file: %w", err)
	}
	ruleFile, err := store.Load(data, logger)
	if err != nil {
		return nil, nil, err
	}
	rules := ruleFile.Rules
	if cfg.RuleID != "" {
		var selected []engine.Rule
		for _, r := range rules {
			if r.ID == cfg.RuleID {
				selected = append(selected, r)
			}
		}
		if len(selected) == 0 {
			return nil, nil, fmt.Errorf("no rule with id %q", cfg.RuleID)
		}
		rules = selected
	}
	return ruleFile, rules, nil
}

func compileScopes(rules []engine.Rule) (map[string]*scope.Matcher, error) {
	matchers := make(map[string]*scope.Matcher, len(rules))
	for _, r := range rules {
		m, err := r.Scope.Compile()
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		matchers[r.ID] = m
	}
	return matchers, nil
}

type applyArgs struct {
	engine    *engine.Engine
	rules     []engine.Rule
	matchers  map[string]*scope.Matcher
	settings  store.Settings
	cfg       *appConfig
	logger    *slog.Logger
	vaultName string
	absPath   string
	relPath   string
	summary   *runSummary
}

func applyToNote(ctx context.Context, a applyArgs) {
	a.summary.Files++

	data, err := os.ReadFile(a.absPath)
	if err != nil {
		a.logger.Error("reading note failed", "path", a.relPath, "error", err)
		a.summary.Errors++
		return
	}

	fc := engine.FileContext{
		Basename:  strings.TrimSuffix(filepath.Base(a.absPath), ".md"),
		Path:      a.relPath,
		Folder:    filepath.ToSlash(filepath.Dir(a.relPath)),
		VaultName: a.vaultName,
	}

	text := string(data)
	modified := false
	backedUp := false
	for _, rule := range a.rules {
		if m := a.matchers[rule.ID]; m != nil && !m.Matches(a.relPath) {
			continue
		}
		newText, result := a.engine.ProcessNote(text, rule, fc, time.Now)
		switch result.Status {
		case engine.StatusError:
			a.logger.Error("rule failed", "rule", rule.Name, "path", a.relPath, "error", result.Error)
			a.summary.Errors++
		case engine.StatusWarning:
			a.logger.Warn("rule warning", "rule", rule.Name, "path", a.relPath, "warning", result.Warning)
			a.summary.Warnings++
		case engine.StatusSkipped:
			a.summary.Skipped++
		case engine.StatusSuccess:
			a.logger.Debug("rule applied", "rule", rule.Name, "path", a.relPath, "changes", result.Changes)
		}
		if result.Modified {
			if (rule.Options.Backup || a.settings.DefaultBackup || a.cfg.BackupAlways) && !backedUp && !a.cfg.DryRun {
				if err := writeFileRetry(ctx, a.absPath+".bak", data); err != nil {
					errutil.LogError(a.logger, "writing backup failed", err)
					a.summary.Errors++
					return
				}
				backedUp = true
			}
			text = newText
			modified = true
		}
	}

	if !modified {
		return
	}
	a.summary.Modified++
	if a.cfg.DryRun {
		a.logger.Info("would modify note", "path", a.relPath)
		return
	}
	if err := writeFileRetry(ctx, a.absPath, []byte(text)); err != nil {
		errutil.LogError(a.logger, "writing note failed", err)
		a.summary.Errors++
	}
}

// writeFileRetry writes a file, retrying any write error up to three times
// with exponential backoff.
func writeFileRetry(ctx context.Context, path string, data []byte) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(_ context.Context) error {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
