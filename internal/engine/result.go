// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package engine

import (
	"github.com/frontmark/frontmark/internal/value"
)

// Status classifies the outcome of applying a rule to one file.
type Status string

// File statuses.
const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// FileResult is the outcome of applying one rule to one value. On error,
// NewValue is always the original value: the engine is atomic per file.
type FileResult struct {
	Status        Status
	Modified      bool
	Changes       []string
	OriginalValue *value.Value
	NewValue      *value.Value
	Error         string
	Warning       string
	DurationMS    int64
}
