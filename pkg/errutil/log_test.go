// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmark/frontmark/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code(errutil.ClassExec).
		With("path", "tags").
		Errorf("something failed")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "operation failed", logEntry["msg"])
	assert.Equal(t, errutil.ClassExec, logEntry["code"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := errors.New("standard error")

	errutil.LogError(logger, "operation failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
}

func TestClass(t *testing.T) {
	assert.Equal(t, errutil.ClassParse, errutil.Class(oops.Code(errutil.ClassParse).Errorf("bad token")))
	assert.Equal(t, "", errutil.Class(errors.New("plain")))
	assert.True(t, errutil.IsEval(oops.Code(errutil.ClassEval).Errorf("unsafe pattern")))
	assert.False(t, errutil.IsExec(oops.Code(errutil.ClassParse).Errorf("bad token")))
}
