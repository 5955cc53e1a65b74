// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmark/frontmark/internal/literal"
	"github.com/frontmark/frontmark/internal/value"
	"github.com/frontmark/frontmark/pkg/errutil"
)

// doc builds a value from a JSON document.
func doc(t *testing.T, src string) *value.Value {
	t.Helper()
	v, err := literal.Parse(src)
	require.NoError(t, err)
	return v
}

// run parses and executes an action against a JSON document, returning the
// outcome and the (possibly mutated) document.
func run(t *testing.T, src, docSrc string) (Outcome, *value.Value) {
	t.Helper()
	a, err := Parse(src)
	require.NoError(t, err, "action %q should parse", src)
	v := doc(t, docSrc)
	return Execute(a, v), v
}

func assertDoc(t *testing.T, got *value.Value, wantJSON string) {
	t.Helper()
	want := doc(t, wantJSON)
	assert.True(t, got.Equal(want), "document mismatch:\n got %s\nwant %s", got, want)
}

func TestExecute_SetOverwrites(t *testing.T) {
	out, v := run(t, `SET status "reviewed"`, `{"status": "draft"}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	require.Len(t, out.Changes, 1)
	assertDoc(t, v, `{"status": "reviewed"}`)
}

func TestExecute_SetSameValueIsNoop(t *testing.T) {
	out, _ := run(t, `SET status "draft"`, `{"status": "draft"}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Success)
	assert.False(t, out.Modified)
	assert.Empty(t, out.Warning)
}

func TestExecute_SetAutoVivifies(t *testing.T) {
	out, v := run(t, `SET meta.review.due "2026-03-01"`, `{}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"meta": {"review": {"due": "2026-03-01"}}}`)
}

func TestExecute_AddDoesNotOverwrite(t *testing.T) {
	out, v := run(t, `ADD status "new"`, `{"status": "draft"}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Success)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
	assertDoc(t, v, `{"status": "draft"}`)

	out, v = run(t, `ADD status "new"`, `{}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"status": "new"}`)
}

func TestExecute_DeleteMissingIsSkip(t *testing.T) {
	out, _ := run(t, `DELETE nothing`, `{"a": 1}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Success)
	assert.False(t, out.Modified)
	assert.Empty(t, out.Warning)
}

func TestExecute_DeleteThenDeleteIsIdempotent(t *testing.T) {
	a, err := Parse(`DELETE temp`)
	require.NoError(t, err)
	v := doc(t, `{"temp": 1, "keep": 2}`)

	first := Execute(a, v)
	require.NoError(t, first.Err)
	assert.True(t, first.Modified)
	after := v.Clone()

	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
	assert.True(t, v.Equal(after))
}

func TestExecute_RenameKeepsKeyPosition(t *testing.T) {
	out, v := run(t, `RENAME middle renamed`, `{"first": 1, "middle": 2, "last": 3}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assert.Equal(t, []string{"first", "renamed", "last"}, v.Keys())
}

func TestExecute_RenameMissingWarns(t *testing.T) {
	out, _ := run(t, `RENAME ghost real`, `{"a": 1}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
}

func TestExecute_RenameOverExistingWarns(t *testing.T) {
	out, v := run(t, `RENAME a b`, `{"a": 1, "b": 2}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
	assertDoc(t, v, `{"b": 1}`)
}

// Scenario: APPEND to an existing array.
func TestExecute_AppendToExistingArray(t *testing.T) {
	out, v := run(t, `APPEND tags "urgent"`, `{"tags": ["work", "project"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["work", "project", "urgent"]}`)
}

// Scenario: APPEND to a non-array is a hard error.
func TestExecute_AppendToNonArrayIsError(t *testing.T) {
	out, v := run(t, `APPEND status "x"`, `{"status": "draft"}`)
	require.Error(t, out.Err)
	errutil.AssertExecError(t, out.Err)
	assert.False(t, out.Modified)
	assertDoc(t, v, `{"status": "draft"}`)
}

func TestExecute_AppendCreatesMissingArray(t *testing.T) {
	out, v := run(t, `APPEND tags "first"`, `{}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["first"]}`)
}

func TestExecute_Prepend(t *testing.T) {
	out, v := run(t, `PREPEND tags "zero"`, `{"tags": ["one"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["zero", "one"]}`)
}

func TestExecute_InsertAt(t *testing.T) {
	out, v := run(t, `INSERT_AT tags "mid" AT 1`, `{"tags": ["a", "b"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "mid", "b"]}`)

	// Negative index counts from the end; i == len appends.
	out, v = run(t, `INSERT_AT tags "x" AT -1`, `{"tags": ["a", "b"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "x", "b"]}`)

	out, v = run(t, `INSERT_AT tags "end" AT 2`, `{"tags": ["a", "b"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "b", "end"]}`)
}

func TestExecute_InsertAtErrors(t *testing.T) {
	out, _ := run(t, `INSERT_AT tags "x" AT 5`, `{"tags": ["a"]}`)
	require.Error(t, out.Err)
	errutil.AssertExecError(t, out.Err)

	// Missing array: only index 0 creates.
	out, v := run(t, `INSERT_AT tags "x" AT 0`, `{}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["x"]}`)

	out, _ = run(t, `INSERT_AT tags "x" AT 1`, `{}`)
	require.Error(t, out.Err)
}

func TestExecute_InsertAnchors(t *testing.T) {
	out, v := run(t, `INSERT_AFTER tags "new" AFTER "a"`, `{"tags": ["a", "b"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "new", "b"]}`)

	out, v = run(t, `INSERT_BEFORE tags "new" BEFORE "b"`, `{"tags": ["a", "b"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "new", "b"]}`)

	out, _ = run(t, `INSERT_AFTER tags "new" AFTER "ghost"`, `{"tags": ["a"]}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
}

// Scenario: REMOVE of a missing value is a warning, not an error.
func TestExecute_RemoveMissingValueWarns(t *testing.T) {
	out, v := run(t, `REMOVE tags "z"`, `{"tags": ["a"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Success)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
	assertDoc(t, v, `{"tags": ["a"]}`)
}

func TestExecute_RemoveFirstOnly(t *testing.T) {
	out, v := run(t, `REMOVE tags "x"`, `{"tags": ["x", "y", "x"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["y", "x"]}`)
}

func TestExecute_RemoveAll(t *testing.T) {
	out, v := run(t, `REMOVE_ALL tags "x"`, `{"tags": ["x", "y", "x"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["y"]}`)
}

func TestExecute_RemoveAt(t *testing.T) {
	out, v := run(t, `REMOVE_AT tags -1`, `{"tags": ["a", "b", "c"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["a", "b"]}`)

	out, _ = run(t, `REMOVE_AT tags 9`, `{"tags": ["a"]}`)
	require.Error(t, out.Err)

	out, _ = run(t, `REMOVE_AT tags 0`, `{}`)
	require.Error(t, out.Err)
}

func TestExecute_Replace(t *testing.T) {
	out, v := run(t, `REPLACE tags "a" WITH "z"`, `{"tags": ["a", "b", "a"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["z", "b", "a"]}`)

	out, v = run(t, `REPLACE_ALL tags "a" WITH "z"`, `{"tags": ["a", "b", "a"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["z", "b", "z"]}`)

	out, _ = run(t, `REPLACE tags "nope" WITH "z"`, `{"tags": ["a"]}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
}

func TestExecute_DeduplicateStable(t *testing.T) {
	out, v := run(t, `DEDUPLICATE tags`, `{"tags": ["b", "a", "b", "c", "a"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["b", "a", "c"]}`)
}

func TestExecute_DeduplicateIdempotent(t *testing.T) {
	a, err := Parse(`DEDUPLICATE tags`)
	require.NoError(t, err)
	v := doc(t, `{"tags": [1, 1.0, 2, "2"]}`)

	first := Execute(a, v)
	require.NoError(t, first.Err)
	after := v.Clone()

	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
	assert.True(t, v.Equal(after))
	assertDoc(t, v, `{"tags": [1, 2, "2"]}`)
}

func TestExecute_SortStableAndIdempotent(t *testing.T) {
	out, v := run(t, `SORT tags`, `{"tags": ["c", "a", "b"]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tags": ["a", "b", "c"]}`)

	// Applying again changes nothing.
	a, err := Parse(`SORT tags`)
	require.NoError(t, err)
	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
}

func TestExecute_SortDesc(t *testing.T) {
	out, v := run(t, `SORT nums DESC`, `{"nums": [1, 3, 2]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"nums": [3, 2, 1]}`)
}

func TestExecute_SortMixedTypesByTag(t *testing.T) {
	out, v := run(t, `SORT mixed`, `{"mixed": ["b", 2, true, null, 1.5, "a"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"mixed": [null, true, 1.5, 2, "a", "b"]}`)
}

func TestExecute_SortMissingIsNoop(t *testing.T) {
	out, _ := run(t, `SORT tags`, `{}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.Empty(t, out.Warning)
}

func TestExecute_SortNonArrayIsError(t *testing.T) {
	out, _ := run(t, `SORT title`, `{"title": "x"}`)
	require.Error(t, out.Err)
	errutil.AssertExecError(t, out.Err)
}

func TestExecute_SortBy(t *testing.T) {
	out, v := run(t, `SORT_BY tasks BY priority`, `{"tasks": [{"n": "b", "priority": 2}, {"n": "a", "priority": 1}, {"n": "c"}]}`)
	require.NoError(t, out.Err)
	// The missing priority sorts as null, ahead of the numbers.
	assertDoc(t, v, `{"tasks": [{"n": "c"}, {"n": "a", "priority": 1}, {"n": "b", "priority": 2}]}`)
}

func TestExecute_SortByNonObjectElementIsError(t *testing.T) {
	out, _ := run(t, `SORT_BY tasks BY p`, `{"tasks": [{"p": 1}, "plain"]}`)
	require.Error(t, out.Err)
	errutil.AssertExecError(t, out.Err)
}

func TestExecute_Move(t *testing.T) {
	out, v := run(t, `MOVE tags FROM 0 TO 2`, `{"tags": ["a", "b", "c"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["b", "c", "a"]}`)

	out, v = run(t, `MOVE tags FROM 1 TO 0`, `{"tags": ["a", "b", "c"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["b", "a", "c"]}`)

	out, v = run(t, `MOVE tags FROM -1 TO 0`, `{"tags": ["a", "b", "c"]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tags": ["c", "a", "b"]}`)

	out, _ = run(t, `MOVE tags FROM 9 TO 0`, `{"tags": ["a"]}`)
	require.Error(t, out.Err)
}

// Scenario: MOVE_WHERE TO START preserves relative order of the block.
func TestExecute_MoveWhereToStartPreservesOrder(t *testing.T) {
	out, v := run(t, `MOVE_WHERE x WHERE w = false TO START`,
		`{"x": [{"w": true}, {"w": false}, {"w": true}, {"w": false}]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"x": [{"w": false}, {"w": false}, {"w": true}, {"w": true}]}`)
}

func TestExecute_MoveWhereToEnd(t *testing.T) {
	out, v := run(t, `MOVE_WHERE x WHERE w = true TO END`,
		`{"x": [{"w": true}, {"w": false}, {"w": true}]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"x": [{"w": false}, {"w": true}, {"w": true}]}`)
}

func TestExecute_MoveWhereAnchors(t *testing.T) {
	out, v := run(t, `MOVE_WHERE x WHERE kind = "task" AFTER kind = "divider"`,
		`{"x": [{"kind": "task", "n": 1}, {"kind": "divider"}, {"kind": "task", "n": 2}, {"kind": "note"}]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"x": [{"kind": "divider"}, {"kind": "task", "n": 1}, {"kind": "task", "n": 2}, {"kind": "note"}]}`)

	// Missing anchor: warning, untouched.
	out, v = run(t, `MOVE_WHERE x WHERE kind = "task" AFTER kind = "ghost"`,
		`{"x": [{"kind": "task"}, {"kind": "note"}]}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
	assertDoc(t, v, `{"x": [{"kind": "task"}, {"kind": "note"}]}`)
}

func TestExecute_MoveWhereNoMatchesWarns(t *testing.T) {
	out, _ := run(t, `MOVE_WHERE x WHERE w = true TO START`, `{"x": [{"w": false}]}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
}

// Scenario: UPDATE_WHERE applies multiple field updates in order.
func TestExecute_UpdateWhereMultiField(t *testing.T) {
	out, v := run(t, `UPDATE_WHERE tasks WHERE name="A" SET status "done", priority 5`,
		`{"tasks": [{"name": "A", "status": "pending", "priority": 0}]}`)
	require.NoError(t, out.Err)
	assert.True(t, out.Modified)
	assertDoc(t, v, `{"tasks": [{"name": "A", "status": "done", "priority": 5}]}`)
}

func TestExecute_UpdateWhereNoMatchesWarns(t *testing.T) {
	out, _ := run(t, `UPDATE_WHERE tasks WHERE name="Z" SET status "done"`,
		`{"tasks": [{"name": "A"}]}`)
	require.NoError(t, out.Err)
	assert.False(t, out.Modified)
	assert.NotEmpty(t, out.Warning)
}

func TestExecute_UpdateWhereOnlyMatching(t *testing.T) {
	out, v := run(t, `UPDATE_WHERE tasks WHERE done = false SET done true`,
		`{"tasks": [{"n": 1, "done": false}, {"n": 2, "done": true}, {"n": 3, "done": false}]}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"tasks": [{"n": 1, "done": true}, {"n": 2, "done": true}, {"n": 3, "done": true}]}`)
}

// Scenario: MERGE is deep, MERGE_OVERWRITE is shallow.
func TestExecute_MergeDeepVsOverwriteShallow(t *testing.T) {
	out, v := run(t, `MERGE c {"ui": {"fontSize": 16}}`,
		`{"c": {"ui": {"theme": "dark", "fontSize": 14}}}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"c": {"ui": {"theme": "dark", "fontSize": 16}}}`)

	out, v = run(t, `MERGE_OVERWRITE c {"ui": {"fontSize": 16}}`,
		`{"c": {"ui": {"theme": "dark", "fontSize": 14}}}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"c": {"ui": {"fontSize": 16}}}`)
}

func TestExecute_MergeReplacesArrays(t *testing.T) {
	out, v := run(t, `MERGE c {"tags": ["z"]}`, `{"c": {"tags": ["a", "b"]}}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"c": {"tags": ["z"]}}`)
}

func TestExecute_MergeMissingCreates(t *testing.T) {
	out, v := run(t, `MERGE c {"a": 1}`, `{}`)
	require.NoError(t, out.Err)
	assertDoc(t, v, `{"c": {"a": 1}}`)
}

func TestExecute_MergeNonObjectTargetIsError(t *testing.T) {
	out, _ := run(t, `MERGE c {"a": 1}`, `{"c": [1]}`)
	require.Error(t, out.Err)
	errutil.AssertExecError(t, out.Err)
}

func TestExecute_MergeIdempotent(t *testing.T) {
	a, err := Parse(`MERGE c {"ui": {"theme": "dark"}, "n": 1}`)
	require.NoError(t, err)
	v := doc(t, `{"c": {"ui": {"fontSize": 14}}}`)

	first := Execute(a, v)
	require.NoError(t, first.Err)
	assert.True(t, first.Modified)
	after := v.Clone()

	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
	assert.True(t, v.Equal(after))
}

func TestExecute_SortByIdempotent(t *testing.T) {
	a, err := Parse(`SORT_BY tasks BY priority DESC`)
	require.NoError(t, err)
	v := doc(t, `{"tasks": [{"priority": 1}, {"priority": 3}, {"priority": 2}]}`)

	first := Execute(a, v)
	require.NoError(t, first.Err)
	require.True(t, first.Modified)
	after := v.Clone()

	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
	assert.True(t, v.Equal(after))
}

func TestExecute_MergeOverwriteIdempotent(t *testing.T) {
	a, err := Parse(`MERGE_OVERWRITE c {"ui": {"fontSize": 16}}`)
	require.NoError(t, err)
	v := doc(t, `{"c": {"ui": {"theme": "dark"}}}`)

	first := Execute(a, v)
	require.NoError(t, first.Err)
	after := v.Clone()

	second := Execute(a, v)
	require.NoError(t, second.Err)
	assert.False(t, second.Modified)
	assert.True(t, v.Equal(after))
}

func TestExecute_LiteralValuesDoNotAlias(t *testing.T) {
	// The same parsed action applied to two documents must not share
	// inserted substructure.
	a, err := Parse(`MERGE c {"ui": {"theme": "dark"}}`)
	require.NoError(t, err)

	v1 := doc(t, `{}`)
	v2 := doc(t, `{}`)
	require.NoError(t, Execute(a, v1).Err)
	require.NoError(t, Execute(a, v2).Err)

	c1, _ := v1.Get("c")
	inner1, _ := c1.Get("ui")
	inner1.Set("theme", value.String("light"))

	c2, _ := v2.Get("c")
	inner2, _ := c2.Get("ui")
	got, _ := inner2.Get("theme")
	assert.True(t, got.Equal(value.String("dark")), "mutating one document leaked into the other")
}
