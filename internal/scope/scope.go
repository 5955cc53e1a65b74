// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package scope matches rules against vault-relative note paths. Scopes
// are host-owned: the engine never consults them, the CLI does.
package scope

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Scope types.
const (
	TypeVault   = "vault"
	TypeFolder  = "folder"
	TypePattern = "pattern"
)

// maxPatternLen caps scope glob patterns.
const maxPatternLen = 200

// Scope selects which notes a rule applies to. An empty Type means the
// whole vault.
type Scope struct {
	Type     string   `json:"type,omitempty" jsonschema:"enum=vault,enum=folder,enum=pattern"`
	Patterns []string `json:"patterns,omitempty"`
}

// Matcher is a compiled scope.
type Matcher struct {
	scope   Scope
	globs   []glob.Glob
	folders []string
}

// Compile validates and compiles the scope's patterns. Globs use '/' as
// separator, so '*' never crosses directories; '**' does.
func (s Scope) Compile() (*Matcher, error) {
	m := &Matcher{scope: s}
	switch s.Type {
	case "", TypeVault:
		return m, nil
	case TypeFolder:
		for _, p := range s.Patterns {
			m.folders = append(m.folders, strings.Trim(p, "/"))
		}
		return m, nil
	case TypePattern:
		for _, p := range s.Patterns {
			if len(p) > maxPatternLen {
				return nil, oops.Code("PARSE_ERROR").
					With("pattern", p).
					Errorf("scope pattern exceeds maximum length of %d", maxPatternLen)
			}
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, oops.Code("PARSE_ERROR").Wrapf(err, "invalid scope pattern %q", p)
			}
			m.globs = append(m.globs, g)
		}
		return m, nil
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("type", s.Type).
			Errorf("unknown scope type %q", s.Type)
	}
}

// Matches reports whether a vault-relative slash path falls inside the
// scope.
func (m *Matcher) Matches(relPath string) bool {
	switch m.scope.Type {
	case "", TypeVault:
		return true
	case TypeFolder:
		for _, folder := range m.folders {
			if folder == "" || relPath == folder || strings.HasPrefix(relPath, folder+"/") {
				return true
			}
		}
		return false
	default:
		for _, g := range m.globs {
			if g.Match(relPath) {
				return true
			}
		}
		return false
	}
}
