// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package dotpath parses and applies dotted/bracketed paths over values:
// fields separated by dots, sequence indices in brackets, negative indices
// counting from the end. Writes auto-vivify missing parents.
package dotpath

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/value"
)

// Default guard limits for parsed paths.
const (
	DefaultMaxDepth  = 50
	DefaultMaxLength = 500
)

// Limits bounds path parsing. Zero fields fall back to the defaults.
type Limits struct {
	MaxDepth  int
	MaxLength int
}

func (l Limits) maxDepth() int {
	if l.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return l.MaxDepth
}

func (l Limits) maxLength() int {
	if l.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return l.MaxLength
}

// Segment is one step of a path: either a mapping field or a sequence index.
type Segment struct {
	Field   string
	Index   int64
	IsIndex bool
}

// Parse parses a path with the default limits. An empty string yields zero
// segments.
func Parse(path string) ([]Segment, error) {
	return ParseWithLimits(path, Limits{})
}

// ParseWithLimits parses a path enforcing the given guard limits.
func ParseWithLimits(path string, lim Limits) ([]Segment, error) {
	if len(path) > lim.maxLength() {
		return nil, oops.Code("PARSE_ERROR").
			With("length", len(path)).
			Errorf("path length %d exceeds maximum of %d", len(path), lim.maxLength())
	}
	if path == "" {
		return nil, nil
	}

	var segs []Segment
	i := 0
	expectField := true
	for i < len(path) {
		switch {
		case path[i] == '.':
			if expectField {
				return nil, oops.Code("PARSE_ERROR").Errorf("empty path segment at offset %d", i)
			}
			i++
			expectField = true
		case path[i] == '[':
			if expectField && len(segs) > 0 {
				return nil, oops.Code("PARSE_ERROR").Errorf("empty path segment at offset %d", i)
			}
			close := strings.IndexByte(path[i:], ']')
			if close < 0 {
				return nil, oops.Code("PARSE_ERROR").Errorf("unclosed bracket at offset %d", i)
			}
			idxText := path[i+1 : i+close]
			idx, err := strconv.ParseInt(idxText, 10, 64)
			if err != nil {
				return nil, oops.Code("PARSE_ERROR").
					With("index", idxText).
					Errorf("index %q is not an integer", idxText)
			}
			segs = append(segs, Segment{Index: idx, IsIndex: true})
			i += close + 1
			expectField = false
		case path[i] == ']':
			return nil, oops.Code("PARSE_ERROR").Errorf("unexpected ']' at offset %d", i)
		default:
			if !expectField {
				return nil, oops.Code("PARSE_ERROR").Errorf("unexpected character %q at offset %d", path[i], i)
			}
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' && path[i] != ']' {
				if unicode.IsSpace(rune(path[i])) {
					return nil, oops.Code("PARSE_ERROR").Errorf("whitespace is not permitted in a path (offset %d)", i)
				}
				i++
			}
			if i == start {
				return nil, oops.Code("PARSE_ERROR").Errorf("empty path segment at offset %d", start)
			}
			segs = append(segs, Segment{Field: path[start:i]})
			expectField = false
		}
		if len(segs) > lim.maxDepth() {
			return nil, oops.Code("PARSE_ERROR").
				With("depth", len(segs)).
				Errorf("path depth exceeds maximum of %d", lim.maxDepth())
		}
	}
	if expectField {
		return nil, oops.Code("PARSE_ERROR").Errorf("path ends with a trailing '.'")
	}
	return segs, nil
}

// Format renders segments back into path syntax.
func Format(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.FormatInt(s.Index, 10))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Field)
	}
	return b.String()
}

// Resolve walks segs from v. Returns nil, false when any step is missing,
// an index lands outside the sequence, or a segment kind does not match the
// container kind. Zero segments resolve to v itself.
func Resolve(v *value.Value, segs []Segment) (*value.Value, bool) {
	cur := v
	for _, s := range segs {
		if cur == nil {
			return nil, false
		}
		if s.IsIndex {
			if cur.Kind() != value.KindSeq {
				return nil, false
			}
			cur = cur.At(s.Index)
			if cur == nil {
				return nil, false
			}
			continue
		}
		if cur.Kind() != value.KindMap {
			return nil, false
		}
		next, ok := cur.Get(s.Field)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Exists reports whether segs resolves to a present entry. A path to an
// explicit null returns true.
func Exists(v *value.Value, segs []Segment) bool {
	_, ok := Resolve(v, segs)
	return ok
}

// Set writes newVal at segs, auto-vivifying missing parents: a missing
// parent becomes a mapping when the next segment is a field, a sequence
// when it is an index. Writing past the end of a sequence extends it with
// null fillers. An empty path is a no-op.
func Set(v *value.Value, segs []Segment, newVal *value.Value) error {
	if len(segs) == 0 {
		return nil
	}
	parent, err := vivifyParent(v, segs)
	if err != nil {
		return err
	}
	last := segs[len(segs)-1]
	return writeInto(parent, last, newVal)
}

// vivifyParent walks to the parent of the final segment, creating missing
// or mismatched containers along the way.
func vivifyParent(v *value.Value, segs []Segment) (*value.Value, error) {
	cur := v
	for i := 0; i < len(segs)-1; i++ {
		s := segs[i]
		next := segs[i+1]
		child, err := stepChild(cur, s)
		if err != nil {
			return nil, err
		}
		if child == nil || !containerMatches(child, next) {
			child = emptyContainer(next)
			if err := writeInto(cur, s, child); err != nil {
				return nil, err
			}
		}
		cur = child
	}
	return cur, nil
}

// stepChild reads the child for segment s, or nil when absent or when the
// current container's kind cannot hold s; the caller then reshapes it.
func stepChild(cur *value.Value, s Segment) (*value.Value, error) {
	if s.IsIndex {
		if cur.Kind() != value.KindSeq {
			return nil, nil
		}
		return cur.At(s.Index), nil
	}
	if cur.Kind() != value.KindMap {
		return nil, nil
	}
	child, _ := cur.Get(s.Field)
	return child, nil
}

func containerMatches(v *value.Value, next Segment) bool {
	if next.IsIndex {
		return v.Kind() == value.KindSeq
	}
	return v.Kind() == value.KindMap
}

func emptyContainer(next Segment) *value.Value {
	if next.IsIndex {
		return value.Seq()
	}
	return value.NewMap()
}

// writeInto writes newVal as the s entry of parent, reshaping parent when
// its kind cannot hold the segment.
func writeInto(parent *value.Value, s Segment, newVal *value.Value) error {
	if s.IsIndex {
		if parent.Kind() != value.KindSeq {
			*parent = *value.Seq()
		}
		idx := s.Index
		n := int64(len(parent.Elems()))
		if idx < 0 {
			idx += n
			if idx < 0 {
				return oops.Code("EXEC_ERROR").
					With("index", s.Index).
					Errorf("index %d out of range for length %d", s.Index, n)
			}
		}
		for int64(len(parent.Elems())) <= idx {
			parent.Append(value.Null())
		}
		parent.Elems()[idx] = newVal
		return nil
	}
	if parent.Kind() != value.KindMap {
		*parent = *value.NewMap()
	}
	parent.Set(s.Field, newVal)
	return nil
}

// Delete removes the entry at segs. Returns false when any prefix is
// missing, the final parent is the wrong kind, or an index is out of
// bounds.
func Delete(v *value.Value, segs []Segment) bool {
	if len(segs) == 0 {
		return false
	}
	parent, ok := Resolve(v, segs[:len(segs)-1])
	if !ok {
		return false
	}
	last := segs[len(segs)-1]
	if last.IsIndex {
		if parent.Kind() != value.KindSeq {
			return false
		}
		idx := last.Index
		n := int64(len(parent.Elems()))
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return false
		}
		parent.RemoveAt(int(idx))
		return true
	}
	if parent.Kind() != value.KindMap {
		return false
	}
	return parent.Delete(last.Field)
}
