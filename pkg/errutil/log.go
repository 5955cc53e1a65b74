// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package errutil carries oops-aware logging helpers and the stable error
// class tags of the rule engine.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Stable error class tags surfaced to hosts.
const (
	ClassParse = "PARSE_ERROR"
	ClassEval  = "EVAL_ERROR"
	ClassExec  = "EXEC_ERROR"
)

// Class extracts the error class tag from an oops error, or "" for plain
// errors.
func Class(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	s, _ := code.(string)
	return s
}

// IsParse reports whether err carries the parse-error class.
func IsParse(err error) bool { return Class(err) == ClassParse }

// IsEval reports whether err carries the evaluation-error class.
func IsEval(err error) bool { return Class(err) == ClassEval }

// IsExec reports whether err carries the execution-error class.
func IsExec(err error) bool { return Class(err) == ClassExec }

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}
