// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package literal parses scalar and composite literal values used by the
// condition and action languages: quoted strings, numbers, booleans, null,
// and JSON arrays/objects. Composite literals are screened for unsafe keys
// before they are admitted.
package literal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/frontmark/frontmark/internal/value"
)

// forbiddenKeys are rejected at any depth of a composite literal. The guard
// protects downstream JSON consumers from prototype pollution.
var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Parse converts literal text into a value. Unquoted text that is not a
// number, boolean, null, or JSON composite is a string.
func Parse(text string) (*value.Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return value.String(""), nil
	}

	switch trimmed[0] {
	case '"', '\'':
		return parseQuoted(trimmed)
	case '{', '[':
		return ParseJSON(trimmed)
	}

	if numberPattern.MatchString(trimmed) {
		return parseNumber(trimmed), nil
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "null":
		return value.Null(), nil
	}

	return value.String(trimmed), nil
}

// parseNumber assumes text already matched numberPattern.
func parseNumber(text string) *value.Value {
	if strings.ContainsRune(text, '.') {
		f, _ := strconv.ParseFloat(text, 64)
		return value.Float(f)
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, _ := strconv.ParseFloat(text, 64)
		return value.Float(f)
	}
	return value.Int(i)
}

// parseQuoted parses a single- or double-quoted string with the escapes
// \" \' \\ \n \t \r.
func parseQuoted(text string) (*value.Value, error) {
	quote := text[0]
	var b strings.Builder
	i := 1
	for i < len(text) {
		c := text[i]
		if c == quote {
			if i != len(text)-1 {
				return nil, oops.Code("PARSE_ERROR").
					Errorf("unexpected text after closing quote in %q", text)
			}
			return value.String(b.String()), nil
		}
		if c == '\\' && i+1 < len(text) {
			i++
			switch text[i] {
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteByte(text[i])
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return nil, oops.Code("PARSE_ERROR").Errorf("unterminated string literal %q", text)
}

// ParseJSON parses a JSON array or object literal into a value with mapping
// key order preserved, then screens it for forbidden keys.
func ParseJSON(text string) (*value.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, oops.Code("PARSE_ERROR").Wrapf(err, "invalid JSON literal")
	}
	v, err := value.FromYAMLNode(&node)
	if err != nil {
		return nil, err
	}
	if v.Kind() != value.KindSeq && v.Kind() != value.KindMap {
		return nil, oops.Code("PARSE_ERROR").Errorf("expected a JSON array or object, got %s", v.Kind())
	}
	if key := findForbiddenKey(v); key != "" {
		return nil, oops.Code("PARSE_ERROR").
			With("key", key).
			Errorf("unsafe properties: key %q is not allowed", key)
	}
	return v, nil
}

// findForbiddenKey returns the first forbidden key found at any depth, or
// the empty string.
func findForbiddenKey(v *value.Value) string {
	switch v.Kind() {
	case value.KindMap:
		for _, k := range v.Keys() {
			if forbiddenKeys[k] {
				return k
			}
			child, _ := v.Get(k)
			if found := findForbiddenKey(child); found != "" {
				return found
			}
		}
	case value.KindSeq:
		for _, e := range v.Elems() {
			if found := findForbiddenKey(e); found != "" {
				return found
			}
		}
	}
	return ""
}
