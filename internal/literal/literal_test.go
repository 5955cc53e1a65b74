// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package literal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmark/frontmark/internal/value"
	"github.com/frontmark/frontmark/pkg/errutil"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *value.Value
	}{
		{"double quoted", `"hello"`, value.String("hello")},
		{"single quoted", `'hello'`, value.String("hello")},
		{"escapes", `"a\"b\n\t\r\\c"`, value.String("a\"b\n\t\r\\c")},
		{"escaped single quote", `'it\'s'`, value.String("it's")},
		{"int", "42", value.Int(42)},
		{"negative int", "-42", value.Int(-42)},
		{"float", "3.25", value.Float(3.25)},
		{"negative float", "-0.5", value.Float(-0.5)},
		{"true", "true", value.Bool(true)},
		{"true case-insensitive", "TRUE", value.Bool(true)},
		{"false", "False", value.Bool(false)},
		{"null", "null", value.Null()},
		{"null case-insensitive", "NULL", value.Null()},
		{"bare text", "draft", value.String("draft")},
		{"bare text with dash", "in-progress", value.String("in-progress")},
		{"empty", "", value.String("")},
		{"number-ish text", "1.2.3", value.String("1.2.3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestParse_IntVsFloatKind(t *testing.T) {
	i, err := Parse("5")
	require.NoError(t, err)
	assert.Equal(t, value.KindInt, i.Kind())

	f, err := Parse("5.0")
	require.NoError(t, err)
	assert.Equal(t, value.KindFloat, f.Kind())
}

func TestParse_UnterminatedString(t *testing.T) {
	for _, text := range []string{`"open`, `'open`} {
		_, err := Parse(text)
		require.Error(t, err)
		errutil.AssertParseError(t, err)
	}
}

func TestParseJSON_Array(t *testing.T) {
	got, err := Parse(`["a", 1, true, null]`)
	require.NoError(t, err)
	require.Equal(t, value.KindSeq, got.Kind())
	assert.True(t, got.Equal(value.Seq(value.String("a"), value.Int(1), value.Bool(true), value.Null())))
}

func TestParseJSON_ObjectOrder(t *testing.T) {
	got, err := Parse(`{"z": 1, "a": {"nested": [2]}}`)
	require.NoError(t, err)
	require.Equal(t, value.KindMap, got.Kind())
	assert.Equal(t, []string{"z", "a"}, got.Keys())
}

func TestParseJSON_ForbiddenKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"proto at top", `{"__proto__": 1}`},
		{"constructor nested", `{"a": {"constructor": {}}}`},
		{"prototype in array element", `[{"prototype": true}]`},
		{"deeply nested", `{"a": [{"b": {"__proto__": {}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			errutil.AssertParseError(t, err)
			assert.Contains(t, err.Error(), "unsafe properties")
		})
	}
}

func TestParseJSON_SafeKeysPass(t *testing.T) {
	got, err := Parse(`{"proto": 1, "construct": 2}`)
	require.NoError(t, err)
	assert.Equal(t, value.KindMap, got.Kind())
}
