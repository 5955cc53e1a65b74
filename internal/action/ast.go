// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package action implements the mutation language applied to front-matter
// values: a JSON-aware lexer, a parser for the operation set, and an
// executor that produces a change log.
package action

import (
	"github.com/frontmark/frontmark/internal/condition"
	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// Path is a parsed target path with its source spelling.
type Path struct {
	Raw      string
	Segments []dotpath.Segment
}

func (p Path) String() string { return p.Raw }

// Action is a parsed operation. One concrete type exists per operation.
type Action interface {
	// Op returns the canonical operation keyword.
	Op() string
}

// Set writes a value unconditionally.
type Set struct {
	Path  Path
	Value *value.Value
}

func (*Set) Op() string { return "SET" }

// Add writes a value only when the target is missing.
type Add struct {
	Path  Path
	Value *value.Value
}

func (*Add) Op() string { return "ADD" }

// Delete removes the target entry.
type Delete struct {
	Path Path
}

func (*Delete) Op() string { return "DELETE" }

// Rename moves a value to a new key, keeping the old key's position when
// both share a parent mapping.
type Rename struct {
	OldPath Path
	NewPath Path
}

func (*Rename) Op() string { return "RENAME" }

// Append adds an element at the end of a sequence.
type Append struct {
	Path  Path
	Value *value.Value
}

func (*Append) Op() string { return "APPEND" }

// Prepend adds an element at the front of a sequence.
type Prepend struct {
	Path  Path
	Value *value.Value
}

func (*Prepend) Op() string { return "PREPEND" }

// InsertAt inserts an element at an index (negative counts from the end).
type InsertAt struct {
	Path  Path
	Value *value.Value
	Index int64
}

func (*InsertAt) Op() string { return "INSERT_AT" }

// InsertAfter inserts an element after the first element equal to Target.
type InsertAfter struct {
	Path   Path
	Value  *value.Value
	Target *value.Value
}

func (*InsertAfter) Op() string { return "INSERT_AFTER" }

// InsertBefore inserts an element before the first element equal to Target.
type InsertBefore struct {
	Path   Path
	Value  *value.Value
	Target *value.Value
}

func (*InsertBefore) Op() string { return "INSERT_BEFORE" }

// Remove removes the first element equal to Value.
type Remove struct {
	Path  Path
	Value *value.Value
}

func (*Remove) Op() string { return "REMOVE" }

// RemoveAll removes every element equal to Value.
type RemoveAll struct {
	Path  Path
	Value *value.Value
}

func (*RemoveAll) Op() string { return "REMOVE_ALL" }

// RemoveAt removes the element at an index (negative counts from the end).
type RemoveAt struct {
	Path  Path
	Index int64
}

func (*RemoveAt) Op() string { return "REMOVE_AT" }

// Replace replaces the first element equal to Old with New.
type Replace struct {
	Path Path
	Old  *value.Value
	New  *value.Value
}

func (*Replace) Op() string { return "REPLACE" }

// ReplaceAll replaces every element equal to Old with New.
type ReplaceAll struct {
	Path Path
	Old  *value.Value
	New  *value.Value
}

func (*ReplaceAll) Op() string { return "REPLACE_ALL" }

// Deduplicate removes duplicate elements, keeping first occurrences.
type Deduplicate struct {
	Path Path
}

func (*Deduplicate) Op() string { return "DEDUPLICATE" }

// Sort orders a sequence (stable).
type Sort struct {
	Path Path
	Desc bool
}

func (*Sort) Op() string { return "SORT" }

// SortBy orders a sequence of mappings by a field (stable; missing fields
// sort as null).
type SortBy struct {
	Path  Path
	Field Path
	Desc  bool
}

func (*SortBy) Op() string { return "SORT_BY" }

// Move relocates the element at From to index To (post-removal indexing).
type Move struct {
	Path Path
	From int64
	To   int64
}

func (*Move) Op() string { return "MOVE" }

// MoveTargetKind distinguishes the MOVE_WHERE destinations.
type MoveTargetKind int

// MOVE_WHERE destinations.
const (
	MoveToStart MoveTargetKind = iota
	MoveToEnd
	MoveAfter
	MoveBefore
)

// MoveTarget is the destination clause of MOVE_WHERE.
type MoveTarget struct {
	Kind MoveTargetKind
	Cond condition.Node
}

// MoveWhere extracts all elements matching Cond and reinserts them as a
// contiguous block at the target.
type MoveWhere struct {
	Path   Path
	Cond   condition.Node
	Target MoveTarget
}

func (*MoveWhere) Op() string { return "MOVE_WHERE" }

// FieldUpdate is one field/value pair of UPDATE_WHERE.
type FieldUpdate struct {
	Field Path
	Value *value.Value
}

// UpdateWhere applies field updates to every element matching Cond.
type UpdateWhere struct {
	Path    Path
	Cond    condition.Node
	Updates []FieldUpdate
}

func (*UpdateWhere) Op() string { return "UPDATE_WHERE" }

// Merge deep-merges an object into the target mapping.
type Merge struct {
	Path   Path
	Object *value.Value
}

func (*Merge) Op() string { return "MERGE" }

// MergeOverwrite shallow-merges an object into the target mapping.
type MergeOverwrite struct {
	Path   Path
	Object *value.Value
}

func (*MergeOverwrite) Op() string { return "MERGE_OVERWRITE" }
