// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package engine orchestrates rule application: clone the front-matter
// value, evaluate the condition, expand templates, execute the action, and
// classify the outcome.
package engine

import (
	"github.com/frontmark/frontmark/internal/scope"
)

// Rule couples a condition with an action. Scope is interpreted by the
// host; the engine itself consumes only Condition, Action, and Options.
type Rule struct {
	ID        string      `json:"id,omitempty" jsonschema:"minLength=1"`
	Name      string      `json:"name" jsonschema:"required,minLength=1,maxLength=200"`
	Condition string      `json:"condition,omitempty"`
	Action    string      `json:"action" jsonschema:"required,minLength=1"`
	Scope     scope.Scope `json:"scope,omitempty"`
	Options   Options     `json:"options,omitempty"`
}

// Options are per-rule execution options.
type Options struct {
	Backup bool `json:"backup,omitempty"`
}
