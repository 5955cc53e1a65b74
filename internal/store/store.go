// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package store loads and saves the rule file: a JSON document holding the
// rule set and host settings. Invalid rule entries are dropped on load;
// they never abort the whole file.
package store

import (
	"encoding/json"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/engine"
)

// CurrentVersion is the rule-file format version written on save.
const CurrentVersion = "1.0"

// Settings are host-level settings persisted alongside the rules.
type Settings struct {
	DefaultBackup bool `json:"defaultBackup"`
	ScanTimeout   int  `json:"scanTimeout" jsonschema:"minimum=0"`
	Debug         bool `json:"debug"`
}

// File is the persisted rule document.
type File struct {
	Version  string        `json:"version" jsonschema:"required"`
	Rules    []engine.Rule `json:"rules"`
	Settings Settings      `json:"settings"`
	LastRun  string        `json:"lastRun,omitempty"`
}

// DefaultSettings returns the settings used when a file has none.
func DefaultSettings() Settings {
	return Settings{ScanTimeout: 30000}
}

// rawFile defers rule decoding so invalid entries can be skipped
// individually.
type rawFile struct {
	Version  string            `json:"version"`
	Rules    []json.RawMessage `json:"rules"`
	Settings *Settings         `json:"settings"`
	LastRun  string            `json:"lastRun"`
}

// Load parses a rule file. Rules that fail schema validation or decoding
// are dropped silently (logged at debug level). Files from a different
// major version are rejected.
func Load(data []byte, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, oops.Code("PARSE_ERROR").Wrapf(err, "invalid rule file JSON")
	}

	ver, err := semver.NewVersion(raw.Version)
	if err != nil {
		return nil, oops.Code("PARSE_ERROR").
			With("version", raw.Version).
			Wrapf(err, "invalid rule file version %q", raw.Version)
	}
	if ver.Major() != 1 {
		return nil, oops.Code("PARSE_ERROR").
			With("version", raw.Version).
			Errorf("unsupported rule file version %q", raw.Version)
	}

	sch, err := compiledRuleSchema()
	if err != nil {
		return nil, err
	}

	f := &File{
		Version:  raw.Version,
		Settings: DefaultSettings(),
		LastRun:  raw.LastRun,
	}
	if raw.Settings != nil {
		f.Settings = *raw.Settings
	}

	for i, entry := range raw.Rules {
		var generic any
		if err := json.Unmarshal(entry, &generic); err != nil {
			logger.Debug("dropping unreadable rule entry", "index", i, "error", err)
			continue
		}
		if err := sch.Validate(generic); err != nil {
			logger.Debug("dropping invalid rule entry", "index", i, "error", err)
			continue
		}
		var rule engine.Rule
		if err := json.Unmarshal(entry, &rule); err != nil {
			logger.Debug("dropping undecodable rule entry", "index", i, "error", err)
			continue
		}
		if rule.ID == "" {
			rule.ID = ulid.Make().String()
		}
		f.Rules = append(f.Rules, rule)
	}
	return f, nil
}

// Save serializes a rule file with the current format version.
func Save(f *File) ([]byte, error) {
	out := *f
	out.Version = CurrentVersion
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, oops.Code("EXEC_ERROR").Wrapf(err, "encoding rule file")
	}
	return append(data, '\n'), nil
}
