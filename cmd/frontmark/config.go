// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/frontmark/frontmark/internal/engine"
	"github.com/frontmark/frontmark/internal/xdg"
)

// appConfig holds the resolved CLI configuration: defaults, then the
// config file, then flags.
type appConfig struct {
	RulesFile    string
	Vault        string
	LogFormat    string
	Debug        bool
	DryRun       bool
	RuleID       string
	MetricsAddr  string
	ScanTimeout  time.Duration
	Limits       engine.Limits
	BackupAlways bool
}

// Validate checks that the configuration is usable.
func (cfg *appConfig) Validate() error {
	if cfg.RulesFile == "" {
		return fmt.Errorf("rules file is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	return nil
}

// registerCommonFlags declares the flags shared by all subcommands.
func registerCommonFlags(flags *pflag.FlagSet) {
	flags.String("rules", xdg.RulesFile(), "path to the rule file")
	flags.String("log-format", "json", "log format: json or text")
	flags.Bool("debug", false, "enable debug logging")
}

// loadConfig resolves configuration: built-in defaults, then an optional
// config.yaml in the XDG config directory, then command-line flags.
func loadConfig(flags *pflag.FlagSet) (*appConfig, error) {
	k := koanf.New(".")

	configPath := filepath.Join(xdg.ConfigDir(), "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	cfg := &appConfig{
		RulesFile:   stringOr(k, "rules", xdg.RulesFile()),
		Vault:       k.String("vault"),
		LogFormat:   stringOr(k, "log-format", "json"),
		Debug:       k.Bool("debug"),
		DryRun:      k.Bool("dry-run"),
		RuleID:      k.String("rule"),
		MetricsAddr: k.String("metrics-addr"),
		Limits: engine.Limits{
			MaxRegexLength: k.Int("limits.max-regex-length"),
			RegexTimeout:   k.Duration("limits.regex-timeout"),
		},
		BackupAlways: k.Bool("backup"),
	}
	if ms := k.Int("scan-timeout"); ms > 0 {
		cfg.ScanTimeout = time.Duration(ms) * time.Millisecond
	}
	return cfg, cfg.Validate()
}

func stringOr(k *koanf.Koanf, key, fallback string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return fallback
}
