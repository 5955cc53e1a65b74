// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package frontmatter splits and joins YAML front-matter blocks attached to
// Markdown notes. The body is preserved byte for byte; mapping keys keep
// their insertion order across a round-trip.
package frontmatter

import (
	"bytes"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/frontmark/frontmark/internal/value"
)

const fence = "---"

// Split separates a note into its front-matter mapping and body. A note
// without front-matter yields an empty mapping and the full text as body.
func Split(text string) (*value.Value, string, error) {
	rest, ok := cutFence(text)
	if !ok {
		return value.NewMap(), text, nil
	}

	// Find the closing fence on its own line.
	offset := 0
	for {
		lineEnd := strings.IndexByte(rest[offset:], '\n')
		var line string
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
		}
		if isFenceLine(line) {
			block := rest[:offset]
			body := ""
			if lineEnd >= 0 {
				body = rest[offset+lineEnd+1:]
			}
			m, err := parseBlock(block)
			if err != nil {
				return nil, "", err
			}
			return m, body, nil
		}
		if lineEnd < 0 {
			// No closing fence: not front-matter at all.
			return value.NewMap(), text, nil
		}
		offset += lineEnd + 1
	}
}

func cutFence(text string) (string, bool) {
	if rest, ok := strings.CutPrefix(text, fence+"\n"); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(text, fence+"\r\n"); ok {
		return rest, true
	}
	return "", false
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimRight(line, "\r")
	return trimmed == fence || trimmed == "..."
}

func parseBlock(block string) (*value.Value, error) {
	if strings.TrimSpace(block) == "" {
		return value.NewMap(), nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block), &node); err != nil {
		return nil, oops.Code("PARSE_ERROR").Wrapf(err, "invalid front-matter YAML")
	}
	v, err := value.FromYAMLNode(&node)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return value.NewMap(), nil
	}
	if v.Kind() != value.KindMap {
		return nil, oops.Code("PARSE_ERROR").
			With("kind", v.Kind().String()).
			Errorf("front-matter must be a mapping, got %s", v.Kind())
	}
	return v, nil
}

// Join reassembles a note from a front-matter mapping and body. An empty
// mapping produces the body unchanged.
func Join(m *value.Value, body string) (string, error) {
	if m == nil || m.Kind() != value.KindMap || m.Len() == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.ToYAMLNode()); err != nil {
		return "", oops.Code("EXEC_ERROR").Wrapf(err, "encoding front-matter")
	}
	if err := enc.Close(); err != nil {
		return "", oops.Code("EXEC_ERROR").Wrapf(err, "encoding front-matter")
	}
	return fence + "\n" + buf.String() + fence + "\n" + body, nil
}
