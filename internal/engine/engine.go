// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package engine

import (
	"time"

	"github.com/frontmark/frontmark/internal/action"
	"github.com/frontmark/frontmark/internal/condition"
	"github.com/frontmark/frontmark/internal/frontmatter"
	"github.com/frontmark/frontmark/internal/template"
	"github.com/frontmark/frontmark/internal/value"
)

// Clock supplies the current local time for template expansion.
type Clock func() time.Time

// FileContext carries the host-provided identity of the note being
// processed.
type FileContext struct {
	Basename  string
	Path      string
	Folder    string
	VaultName string
}

// Limits bounds condition evaluation and action execution. Zero fields
// fall back to the package defaults.
type Limits struct {
	MaxRegexLength int
	RegexTimeout   time.Duration
}

// Engine applies rules to front-matter values. The zero value is usable;
// NewEngine attaches limits and metrics.
type Engine struct {
	limits  Limits
	metrics *Metrics
}

// NewEngine creates an engine. metrics may be nil.
func NewEngine(limits Limits, metrics *Metrics) *Engine {
	return &Engine{limits: limits, metrics: metrics}
}

func (e *Engine) conditionConfig() condition.Config {
	return condition.Config{
		MaxRegexLength: e.limits.MaxRegexLength,
		RegexTimeout:   e.limits.RegexTimeout,
	}
}

// RunRule applies one rule to one value. The input value is never mutated;
// mutations happen on a clone that is only surfaced on success.
func (e *Engine) RunRule(rule Rule, v *value.Value, fc FileContext, clock Clock) FileResult {
	start := time.Now()
	result := e.runRule(rule, v, fc, clock)
	result.DurationMS = time.Since(start).Milliseconds()
	if e.metrics != nil {
		e.metrics.observeRun(result, time.Since(start))
	}
	return result
}

func (e *Engine) runRule(rule Rule, v *value.Value, fc FileContext, clock Clock) FileResult {
	base := FileResult{
		OriginalValue: v,
		NewValue:      v,
	}
	if clock == nil {
		clock = time.Now
	}

	// Condition gate: a failing condition skips before the action is
	// even parsed.
	if rule.Condition != "" {
		cond, err := condition.Parse(rule.Condition)
		if err != nil {
			return errorResult(base, err)
		}
		matched, err := condition.EvaluateWith(e.conditionConfig(), cond, v)
		if err != nil {
			return errorResult(base, err)
		}
		if !matched {
			base.Status = StatusSkipped
			return base
		}
	}

	expanded, err := template.Expand(rule.Action, template.Context{
		Value: v,
		File: template.FileInfo{
			Basename: fc.Basename,
			Path:     fc.Path,
			Folder:   fc.Folder,
			Vault:    fc.VaultName,
		},
		Now: clock(),
	})
	if err != nil {
		return errorResult(base, err)
	}

	act, err := action.Parse(expanded)
	if err != nil {
		return errorResult(base, err)
	}

	clone := v.Clone()
	outcome := action.ExecuteWith(action.Config{Condition: e.conditionConfig()}, act, clone)
	if outcome.Err != nil {
		// Atomic per file: the partially mutated clone is discarded.
		return errorResult(base, outcome.Err)
	}

	base.Modified = outcome.Modified
	base.Changes = outcome.Changes
	base.Warning = outcome.Warning
	if outcome.Modified {
		base.NewValue = clone
	}
	switch {
	case outcome.Warning != "":
		base.Status = StatusWarning
	case !outcome.Modified:
		base.Status = StatusSkipped
	default:
		base.Status = StatusSuccess
	}
	return base
}

func errorResult(base FileResult, err error) FileResult {
	base.Status = StatusError
	base.Modified = false
	base.Changes = nil
	base.Error = err.Error()
	return base
}

// ProcessNote applies a rule to raw note text: split front-matter, run the
// rule, and rejoin when the value was modified. The body is preserved byte
// for byte.
func (e *Engine) ProcessNote(text string, rule Rule, fc FileContext, clock Clock) (string, FileResult) {
	fm, body, err := frontmatter.Split(text)
	if err != nil {
		return text, FileResult{Status: StatusError, Error: err.Error()}
	}
	result := e.RunRule(rule, fm, fc, clock)
	if result.Status == StatusError || !result.Modified {
		return text, result
	}
	joined, err := frontmatter.Join(result.NewValue, body)
	if err != nil {
		return text, errorResult(FileResult{OriginalValue: fm, NewValue: fm}, err)
	}
	return joined, result
}
