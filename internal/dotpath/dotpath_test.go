// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package dotpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmark/frontmark/internal/value"
	"github.com/frontmark/frontmark/pkg/errutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []Segment
	}{
		{"empty", "", nil},
		{"single field", "title", []Segment{{Field: "title"}}},
		{"nested fields", "a.b.c", []Segment{{Field: "a"}, {Field: "b"}, {Field: "c"}}},
		{"index", "tags[0]", []Segment{{Field: "tags"}, {Index: 0, IsIndex: true}}},
		{"negative index", "tags[-1]", []Segment{{Field: "tags"}, {Index: -1, IsIndex: true}}},
		{"mixed", "a.b[2].c[-1]", []Segment{
			{Field: "a"}, {Field: "b"}, {Index: 2, IsIndex: true}, {Field: "c"}, {Index: -1, IsIndex: true},
		}},
		{"dashed field", "my-field", []Segment{{Field: "my-field"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unclosed bracket", "tags[0"},
		{"non-integer index", "tags[x]"},
		{"float index", "tags[1.5]"},
		{"whitespace", "a b"},
		{"trailing dot", "a."},
		{"double dot", "a..b"},
		{"stray close", "a]b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path)
			require.Error(t, err)
			errutil.AssertParseError(t, err)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := "a" + strings.Repeat(".a", DefaultMaxDepth)
	_, err := Parse(deep)
	require.Error(t, err)
	errutil.AssertParseError(t, err)

	ok := "a" + strings.Repeat(".a", DefaultMaxDepth-1)
	_, err = Parse(ok)
	require.NoError(t, err)
}

func TestParse_LengthLimit(t *testing.T) {
	long := strings.Repeat("x", DefaultMaxLength+1)
	_, err := Parse(long)
	require.Error(t, err)
	errutil.AssertParseError(t, err)
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, path := range []string{"a", "a.b", "tags[0]", "a.b[2].c[-1]"} {
		segs, err := Parse(path)
		require.NoError(t, err)
		assert.Equal(t, path, Format(segs))
	}
}

func mustParse(t *testing.T, path string) []Segment {
	t.Helper()
	segs, err := Parse(path)
	require.NoError(t, err)
	return segs
}

func sampleDoc() *value.Value {
	tasks := value.Seq(
		value.String("one"),
		value.String("two"),
	)
	meta := value.NewMap()
	meta.Set("priority", value.Int(2))
	meta.Set("archived", value.Null())
	root := value.NewMap()
	root.Set("title", value.String("Note"))
	root.Set("tasks", tasks)
	root.Set("meta", meta)
	return root
}

func TestResolve(t *testing.T) {
	doc := sampleDoc()
	tests := []struct {
		name  string
		path  string
		want  *value.Value
		found bool
	}{
		{"root field", "title", value.String("Note"), true},
		{"nested field", "meta.priority", value.Int(2), true},
		{"explicit null", "meta.archived", value.Null(), true},
		{"index", "tasks[1]", value.String("two"), true},
		{"negative index", "tasks[-1]", value.String("two"), true},
		{"index out of range", "tasks[2]", nil, false},
		{"negative out of range", "tasks[-3]", nil, false},
		{"missing field", "nope", nil, false},
		{"field on non-map", "title.x", nil, false},
		{"index on non-seq", "title[0]", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(doc, mustParse(t, tt.path))
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_EmptyPathIsSelf(t *testing.T) {
	doc := sampleDoc()
	got, ok := Resolve(doc, nil)
	require.True(t, ok)
	assert.Same(t, doc, got)
}

func TestExists_NullIsPresent(t *testing.T) {
	doc := sampleDoc()
	assert.True(t, Exists(doc, mustParse(t, "meta.archived")))
	assert.False(t, Exists(doc, mustParse(t, "meta.missing")))
}

func TestSet_AutoVivifyMap(t *testing.T) {
	doc := value.NewMap()
	require.NoError(t, Set(doc, mustParse(t, "a.b.c"), value.Int(1)))
	got, ok := Resolve(doc, mustParse(t, "a.b.c"))
	require.True(t, ok)
	assert.True(t, got.Equal(value.Int(1)))
}

func TestSet_AutoVivifySeqWithNullFillers(t *testing.T) {
	doc := value.NewMap()
	require.NoError(t, Set(doc, mustParse(t, "list[2]"), value.String("x")))
	list, ok := Resolve(doc, mustParse(t, "list"))
	require.True(t, ok)
	require.Equal(t, 3, list.Len())
	assert.True(t, list.At(0).IsNull())
	assert.True(t, list.At(1).IsNull())
	assert.True(t, list.At(2).Equal(value.String("x")))
}

func TestSet_NegativeIndex(t *testing.T) {
	doc := sampleDoc()
	require.NoError(t, Set(doc, mustParse(t, "tasks[-1]"), value.String("last")))
	got, _ := Resolve(doc, mustParse(t, "tasks[1]"))
	assert.True(t, got.Equal(value.String("last")))

	err := Set(doc, mustParse(t, "tasks[-10]"), value.String("x"))
	require.Error(t, err)
}

func TestSet_EmptyPathNoop(t *testing.T) {
	doc := sampleDoc()
	before := doc.Clone()
	require.NoError(t, Set(doc, nil, value.Int(9)))
	assert.True(t, doc.Equal(before))
}

func TestSet_NewKeyAppendsAtEnd(t *testing.T) {
	doc := sampleDoc()
	require.NoError(t, Set(doc, mustParse(t, "status"), value.String("open")))
	assert.Equal(t, []string{"title", "tasks", "meta", "status"}, doc.Keys())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"map key", "meta.priority", true},
		{"seq index", "tasks[0]", true},
		{"negative seq index", "tasks[-1]", true},
		{"missing key", "meta.none", false},
		{"missing prefix", "none.deep", false},
		{"index out of range", "tasks[9]", false},
		{"wrong parent kind", "title[0]", false},
		{"empty path", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc()
			assert.Equal(t, tt.want, Delete(doc, mustParse(t, tt.path)))
		})
	}
}

func TestDelete_SeqShrinks(t *testing.T) {
	doc := sampleDoc()
	require.True(t, Delete(doc, mustParse(t, "tasks[0]")))
	tasks, _ := Resolve(doc, mustParse(t, "tasks"))
	require.Equal(t, 1, tasks.Len())
	assert.True(t, tasks.At(0).Equal(value.String("two")))
}
