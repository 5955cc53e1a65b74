// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package template expands {{…}} placeholders in action text before it is
// parsed. Values come from the clock, the file context, and the note's
// front-matter.
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// FileInfo carries the host-provided context of the note being processed.
type FileInfo struct {
	Basename string
	Path     string
	Folder   string
	Vault    string
}

// Context provides everything a placeholder can draw on.
type Context struct {
	Value *value.Value
	File  FileInfo
	Now   time.Time
}

// Expand substitutes every {{ name }} placeholder in text. Unknown names
// and missing front-matter lookups are errors.
func Expand(text string, ctx Context) (string, error) {
	var b strings.Builder
	i := 0
	for {
		open := strings.Index(text[i:], "{{")
		if open < 0 {
			b.WriteString(text[i:])
			return b.String(), nil
		}
		open += i
		closing := strings.Index(text[open+2:], "}}")
		if closing < 0 {
			return "", oops.Code("PARSE_ERROR").
				With("position", open).
				Errorf("unterminated template placeholder at position %d", open)
		}
		closing += open + 2
		b.WriteString(text[i:open])
		name := strings.TrimSpace(text[open+2 : closing])
		resolved, err := resolve(name, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(resolved)
		i = closing + 2
	}
}

func resolve(name string, ctx Context) (string, error) {
	if rest, ok := strings.CutPrefix(name, "date:"); ok {
		return ctx.Now.Format(goLayout(rest)), nil
	}
	if rest, ok := strings.CutPrefix(name, "fm:"); ok {
		return resolveFrontMatter(rest, ctx)
	}
	switch name {
	case "today":
		return ctx.Now.Format("2006-01-02"), nil
	case "now":
		return ctx.Now.Format("2006-01-02T15:04:05-07:00"), nil
	case "timestamp":
		return strconv.FormatInt(ctx.Now.Unix(), 10), nil
	case "year":
		return ctx.Now.Format("2006"), nil
	case "month":
		return ctx.Now.Format("01"), nil
	case "day":
		return ctx.Now.Format("02"), nil
	case "time":
		return ctx.Now.Format("15:04:05"), nil
	case "filename", "basename":
		return ctx.File.Basename, nil
	case "filepath":
		return ctx.File.Path, nil
	case "folder":
		return ctx.File.Folder, nil
	case "vault":
		return ctx.File.Vault, nil
	default:
		return "", oops.Code("EVAL_ERROR").
			With("name", name).
			Errorf("unknown template variable %q", name)
	}
}

func resolveFrontMatter(path string, ctx Context) (string, error) {
	segs, err := dotpath.Parse(path)
	if err != nil {
		return "", err
	}
	v, ok := dotpath.Resolve(ctx.Value, segs)
	if !ok {
		return "", oops.Code("EVAL_ERROR").
			With("path", path).
			Errorf("front-matter field %q does not exist", path)
	}
	return v.Text(), nil
}

// layoutTokens maps moment-style date tokens to Go reference layouts.
// Longer tokens are matched first; unrecognized characters are copied into
// the Go layout unchanged, so Go layout elements among them are formatted.
var layoutTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func goLayout(format string) string {
	var b strings.Builder
	i := 0
	for i < len(format) {
		matched := false
		for _, t := range layoutTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
