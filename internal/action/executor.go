// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package action

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/condition"
	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// Outcome is the result of executing one action.
type Outcome struct {
	Success  bool
	Modified bool
	Changes  []string
	Err      error
	Warning  string
}

// Config bounds execution of embedded conditions.
type Config struct {
	Condition condition.Config
}

// Execute applies an action to a value in place with the default config.
func Execute(a Action, root *value.Value) Outcome {
	return ExecuteWith(Config{}, a, root)
}

// ExecuteWith applies an action to a value in place. The value is mutated
// directly; callers that need atomicity clone before executing.
func ExecuteWith(cfg Config, a Action, root *value.Value) Outcome {
	switch act := a.(type) {
	case *Set:
		return execSet(act, root)
	case *Add:
		return execAdd(act, root)
	case *Delete:
		return execDelete(act, root)
	case *Rename:
		return execRename(act, root)
	case *Append:
		return execAppend(act, root)
	case *Prepend:
		return execPrepend(act, root)
	case *InsertAt:
		return execInsertAt(act, root)
	case *InsertAfter:
		return execInsertAnchor(act.Path, act.Value, act.Target, false, root)
	case *InsertBefore:
		return execInsertAnchor(act.Path, act.Value, act.Target, true, root)
	case *Remove:
		return execRemove(act, root)
	case *RemoveAll:
		return execRemoveAll(act, root)
	case *RemoveAt:
		return execRemoveAt(act, root)
	case *Replace:
		return execReplace(act.Path, act.Old, act.New, false, root)
	case *ReplaceAll:
		return execReplace(act.Path, act.Old, act.New, true, root)
	case *Deduplicate:
		return execDeduplicate(act, root)
	case *Sort:
		return execSort(act, root)
	case *SortBy:
		return execSortBy(act, root)
	case *Move:
		return execMove(act, root)
	case *MoveWhere:
		return execMoveWhere(cfg, act, root)
	case *UpdateWhere:
		return execUpdateWhere(cfg, act, root)
	case *Merge:
		return execMerge(act, root)
	case *MergeOverwrite:
		return execMergeOverwrite(act, root)
	default:
		return failed(oops.Code("EXEC_ERROR").Errorf("unknown action %T", a))
	}
}

// --- outcome helpers ---

func failed(err error) Outcome { return Outcome{Err: err} }

func warned(msg string) Outcome { return Outcome{Success: true, Warning: msg} }

func unchanged() Outcome { return Outcome{Success: true} }

func changed(lines ...string) Outcome {
	return Outcome{Success: true, Modified: true, Changes: lines}
}

func withWarning(o Outcome, msg string) Outcome {
	o.Warning = msg
	return o
}

func notArrayErr(op string, path Path, v *value.Value) error {
	return oops.Code("EXEC_ERROR").
		With("path", path.Raw).
		With("kind", v.Kind().String()).
		Errorf("%s target %q is not an array", op, path.Raw)
}

// resolveSeq resolves path to a sequence. The second return is false when
// the path is missing; a present non-sequence is an error.
func resolveSeq(op string, path Path, root *value.Value) (*value.Value, bool, error) {
	v, ok := dotpath.Resolve(root, path.Segments)
	if !ok {
		return nil, false, nil
	}
	if v.Kind() != value.KindSeq {
		return nil, false, notArrayErr(op, path, v)
	}
	return v, true, nil
}

// --- scalar operations ---

func execSet(act *Set, root *value.Value) Outcome {
	old, existed := dotpath.Resolve(root, act.Path.Segments)
	if existed && old.Equal(act.Value) {
		return unchanged()
	}
	if err := dotpath.Set(root, act.Path.Segments, act.Value.Clone()); err != nil {
		return failed(err)
	}
	return changed(fmt.Sprintf("SET %s %s", act.Path.Raw, act.Value))
}

func execAdd(act *Add, root *value.Value) Outcome {
	if dotpath.Exists(root, act.Path.Segments) {
		return warned(fmt.Sprintf("field %q already exists; ADD does not overwrite", act.Path.Raw))
	}
	if err := dotpath.Set(root, act.Path.Segments, act.Value.Clone()); err != nil {
		return failed(err)
	}
	return changed(fmt.Sprintf("ADD %s %s", act.Path.Raw, act.Value))
}

func execDelete(act *Delete, root *value.Value) Outcome {
	if !dotpath.Delete(root, act.Path.Segments) {
		return unchanged()
	}
	return changed(fmt.Sprintf("DELETE %s", act.Path.Raw))
}

func execRename(act *Rename, root *value.Value) Outcome {
	if act.OldPath.Raw == act.NewPath.Raw {
		return unchanged()
	}
	old, ok := dotpath.Resolve(root, act.OldPath.Segments)
	if !ok {
		return warned(fmt.Sprintf("field %q does not exist; nothing to rename", act.OldPath.Raw))
	}
	overwrote := dotpath.Exists(root, act.NewPath.Segments)

	if parent, oldKey, newKey, sameParent := renameInPlace(act, root); sameParent {
		parent.Rename(oldKey, newKey)
	} else {
		if err := dotpath.Set(root, act.NewPath.Segments, old); err != nil {
			return failed(err)
		}
		dotpath.Delete(root, act.OldPath.Segments)
	}

	out := changed(fmt.Sprintf("RENAME %s %s", act.OldPath.Raw, act.NewPath.Raw))
	if overwrote {
		out = withWarning(out, fmt.Sprintf("overwrote existing value at %q", act.NewPath.Raw))
	}
	return out
}

// renameInPlace reports whether both paths name fields of the same parent
// mapping, in which case the key can keep its position.
func renameInPlace(act *Rename, root *value.Value) (*value.Value, string, string, bool) {
	oldSegs, newSegs := act.OldPath.Segments, act.NewPath.Segments
	if len(oldSegs) != len(newSegs) {
		return nil, "", "", false
	}
	last := len(oldSegs) - 1
	if oldSegs[last].IsIndex || newSegs[last].IsIndex {
		return nil, "", "", false
	}
	if dotpath.Format(oldSegs[:last]) != dotpath.Format(newSegs[:last]) {
		return nil, "", "", false
	}
	parent, ok := dotpath.Resolve(root, oldSegs[:last])
	if !ok || parent.Kind() != value.KindMap {
		return nil, "", "", false
	}
	return parent, oldSegs[last].Field, newSegs[last].Field, true
}

// --- array operations ---

func execAppend(act *Append, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("APPEND", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		if err := dotpath.Set(root, act.Path.Segments, value.Seq(act.Value.Clone())); err != nil {
			return failed(err)
		}
		return changed(fmt.Sprintf("APPEND %s %s → [%s]", act.Path.Raw, act.Value, act.Value))
	}
	seq.Append(act.Value.Clone())
	return changed(fmt.Sprintf("APPEND %s %s → %s", act.Path.Raw, act.Value, seq))
}

func execPrepend(act *Prepend, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("PREPEND", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		if err := dotpath.Set(root, act.Path.Segments, value.Seq(act.Value.Clone())); err != nil {
			return failed(err)
		}
		return changed(fmt.Sprintf("PREPEND %s %s → [%s]", act.Path.Raw, act.Value, act.Value))
	}
	seq.Prepend(act.Value.Clone())
	return changed(fmt.Sprintf("PREPEND %s %s → %s", act.Path.Raw, act.Value, seq))
}

func execInsertAt(act *InsertAt, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("INSERT_AT", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		if act.Index != 0 {
			return failed(oops.Code("EXEC_ERROR").
				With("path", act.Path.Raw).
				Errorf("cannot insert at index %d: array %q does not exist", act.Index, act.Path.Raw))
		}
		if err := dotpath.Set(root, act.Path.Segments, value.Seq(act.Value.Clone())); err != nil {
			return failed(err)
		}
		return changed(fmt.Sprintf("INSERT_AT %s %s AT 0", act.Path.Raw, act.Value))
	}
	n := int64(seq.Len())
	idx := act.Index
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx > n {
		return failed(oops.Code("EXEC_ERROR").
			With("index", act.Index).
			Errorf("index %d out of range for array %q of length %d", act.Index, act.Path.Raw, n))
	}
	seq.InsertAt(int(idx), act.Value.Clone())
	return changed(fmt.Sprintf("INSERT_AT %s %s AT %d → %s", act.Path.Raw, act.Value, act.Index, seq))
}

func execInsertAnchor(path Path, val, target *value.Value, before bool, root *value.Value) Outcome {
	op := "INSERT_AFTER"
	if before {
		op = "INSERT_BEFORE"
	}
	seq, ok, err := resolveSeq(op, path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", path.Raw))
	}
	idx := seq.IndexOf(target)
	if idx < 0 {
		return warned(fmt.Sprintf("anchor %s not found in %q", target, path.Raw))
	}
	if !before {
		idx++
	}
	seq.InsertAt(idx, val.Clone())
	return changed(fmt.Sprintf("%s %s %s → %s", op, path.Raw, val, seq))
}

func execRemove(act *Remove, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("REMOVE", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", act.Path.Raw))
	}
	idx := seq.IndexOf(act.Value)
	if idx < 0 {
		return warned(fmt.Sprintf("value %s not found in %q", act.Value, act.Path.Raw))
	}
	seq.RemoveAt(idx)
	return changed(fmt.Sprintf("REMOVE %s %s → %s", act.Path.Raw, act.Value, seq))
}

func execRemoveAll(act *RemoveAll, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("REMOVE_ALL", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", act.Path.Raw))
	}
	kept := lo.Filter(seq.Elems(), func(e *value.Value, _ int) bool {
		return !e.Equal(act.Value)
	})
	removed := seq.Len() - len(kept)
	if removed == 0 {
		return warned(fmt.Sprintf("value %s not found in %q", act.Value, act.Path.Raw))
	}
	seq.SetElems(kept)
	return changed(fmt.Sprintf("REMOVE_ALL %s %s removed %d → %s", act.Path.Raw, act.Value, removed, seq))
}

func execRemoveAt(act *RemoveAt, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("REMOVE_AT", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return failed(oops.Code("EXEC_ERROR").
			With("path", act.Path.Raw).
			Errorf("array %q does not exist", act.Path.Raw))
	}
	n := int64(seq.Len())
	idx := act.Index
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return failed(oops.Code("EXEC_ERROR").
			With("index", act.Index).
			Errorf("index %d out of range for array %q of length %d", act.Index, act.Path.Raw, n))
	}
	removed := seq.RemoveAt(int(idx))
	return changed(fmt.Sprintf("REMOVE_AT %s %d removed %s → %s", act.Path.Raw, act.Index, removed, seq))
}

func execReplace(path Path, oldVal, newVal *value.Value, all bool, root *value.Value) Outcome {
	op := "REPLACE"
	if all {
		op = "REPLACE_ALL"
	}
	seq, ok, err := resolveSeq(op, path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", path.Raw))
	}
	count := 0
	for i, e := range seq.Elems() {
		if !e.Equal(oldVal) {
			continue
		}
		seq.Elems()[i] = newVal.Clone()
		count++
		if !all {
			break
		}
	}
	if count == 0 {
		return warned(fmt.Sprintf("value %s not found in %q", oldVal, path.Raw))
	}
	if oldVal.Equal(newVal) {
		return unchanged()
	}
	return changed(fmt.Sprintf("%s %s %s WITH %s → %s", op, path.Raw, oldVal, newVal, seq))
}

func execDeduplicate(act *Deduplicate, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("DEDUPLICATE", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return unchanged()
	}
	var kept []*value.Value
	for _, e := range seq.Elems() {
		dup := false
		for _, k := range kept {
			if k.Equal(e) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, e)
		}
	}
	if len(kept) == seq.Len() {
		return unchanged()
	}
	seq.SetElems(kept)
	return changed(fmt.Sprintf("DEDUPLICATE %s → %s", act.Path.Raw, seq))
}

func execSort(act *Sort, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("SORT", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return unchanged()
	}
	return sortSeq(act.Op(), act.Path, seq, act.Desc, func(e *value.Value) *value.Value { return e })
}

func execSortBy(act *SortBy, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("SORT_BY", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return unchanged()
	}
	for _, e := range seq.Elems() {
		if e.Kind() != value.KindMap {
			return failed(oops.Code("EXEC_ERROR").
				With("path", act.Path.Raw).
				Errorf("SORT_BY requires object elements, found %s", e.Kind()))
		}
	}
	return sortSeq(act.Op(), act.Path, seq, act.Desc, func(e *value.Value) *value.Value {
		key, ok := dotpath.Resolve(e, act.Field.Segments)
		if !ok {
			return value.Null()
		}
		return key
	})
}

// sortSeq stably sorts in place and reports modification only when the
// order actually changed.
func sortSeq(op string, path Path, seq *value.Value, desc bool, key func(*value.Value) *value.Value) Outcome {
	elems := seq.Elems()
	sorted := make([]*value.Value, len(elems))
	copy(sorted, elems)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := key(sorted[i]).Compare(key(sorted[j]))
		if desc {
			return c > 0
		}
		return c < 0
	})
	same := true
	for i := range elems {
		if elems[i] != sorted[i] {
			same = false
			break
		}
	}
	if same {
		return unchanged()
	}
	seq.SetElems(sorted)
	return changed(fmt.Sprintf("%s %s → %s", op, path.Raw, seq))
}

func execMove(act *Move, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("MOVE", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return failed(oops.Code("EXEC_ERROR").
			With("path", act.Path.Raw).
			Errorf("array %q does not exist", act.Path.Raw))
	}
	n := int64(seq.Len())
	from := act.From
	if from < 0 {
		from += n
	}
	if from < 0 || from >= n {
		return failed(oops.Code("EXEC_ERROR").
			With("index", act.From).
			Errorf("source index %d out of range for array %q of length %d", act.From, act.Path.Raw, n))
	}
	elem := seq.RemoveAt(int(from))
	postLen := int64(seq.Len())
	to := act.To
	if to < 0 {
		to += postLen
	}
	if to < 0 || to > postLen {
		seq.InsertAt(int(from), elem)
		return failed(oops.Code("EXEC_ERROR").
			With("index", act.To).
			Errorf("target index %d out of range for array %q", act.To, act.Path.Raw))
	}
	seq.InsertAt(int(to), elem)
	if to == from {
		return unchanged()
	}
	return changed(fmt.Sprintf("MOVE %s FROM %d TO %d → %s", act.Path.Raw, act.From, act.To, seq))
}

func execMoveWhere(cfg Config, act *MoveWhere, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("MOVE_WHERE", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", act.Path.Raw))
	}

	var block, remaining []*value.Value
	for _, e := range seq.Elems() {
		matched, evalErr := condition.EvaluateWith(cfg.Condition, act.Cond, e)
		if evalErr != nil {
			return failed(evalErr)
		}
		if matched {
			block = append(block, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(block) == 0 {
		return warned(fmt.Sprintf("no elements of %q matched", act.Path.Raw))
	}

	pos := 0
	switch act.Target.Kind {
	case MoveToStart:
		pos = 0
	case MoveToEnd:
		pos = len(remaining)
	case MoveAfter, MoveBefore:
		anchor := -1
		for i, e := range remaining {
			matched, evalErr := condition.EvaluateWith(cfg.Condition, act.Target.Cond, e)
			if evalErr != nil {
				return failed(evalErr)
			}
			if matched {
				anchor = i
				break
			}
		}
		if anchor < 0 {
			return warned(fmt.Sprintf("no anchor element of %q matched", act.Path.Raw))
		}
		pos = anchor
		if act.Target.Kind == MoveAfter {
			pos++
		}
	}

	result := make([]*value.Value, 0, seq.Len())
	result = append(result, remaining[:pos]...)
	result = append(result, block...)
	result = append(result, remaining[pos:]...)

	same := true
	for i, e := range seq.Elems() {
		if result[i] != e {
			same = false
			break
		}
	}
	if same {
		return unchanged()
	}
	seq.SetElems(result)
	return changed(fmt.Sprintf("MOVE_WHERE %s moved %d element(s) → %s", act.Path.Raw, len(block), seq))
}

func execUpdateWhere(cfg Config, act *UpdateWhere, root *value.Value) Outcome {
	seq, ok, err := resolveSeq("UPDATE_WHERE", act.Path, root)
	if err != nil {
		return failed(err)
	}
	if !ok {
		return warned(fmt.Sprintf("array %q does not exist", act.Path.Raw))
	}

	matchedCount := 0
	changedCount := 0
	for _, e := range seq.Elems() {
		matched, evalErr := condition.EvaluateWith(cfg.Condition, act.Cond, e)
		if evalErr != nil {
			return failed(evalErr)
		}
		if !matched {
			continue
		}
		matchedCount++
		for _, upd := range act.Updates {
			old, existed := dotpath.Resolve(e, upd.Field.Segments)
			if existed && old.Equal(upd.Value) {
				continue
			}
			if err := dotpath.Set(e, upd.Field.Segments, upd.Value.Clone()); err != nil {
				return failed(err)
			}
			changedCount++
		}
	}
	if matchedCount == 0 {
		return warned(fmt.Sprintf("no elements of %q matched", act.Path.Raw))
	}
	if changedCount == 0 {
		return unchanged()
	}
	return changed(fmt.Sprintf("UPDATE_WHERE %s updated %d element(s) → %s", act.Path.Raw, matchedCount, seq))
}

// --- object operations ---

func execMerge(act *Merge, root *value.Value) Outcome {
	target, ok := dotpath.Resolve(root, act.Path.Segments)
	if !ok {
		if err := dotpath.Set(root, act.Path.Segments, act.Object.Clone()); err != nil {
			return failed(err)
		}
		return changed(fmt.Sprintf("MERGE %s %s", act.Path.Raw, act.Object))
	}
	if target.Kind() != value.KindMap {
		return failed(oops.Code("EXEC_ERROR").
			With("path", act.Path.Raw).
			With("kind", target.Kind().String()).
			Errorf("MERGE target %q is not an object", act.Path.Raw))
	}
	if !deepMerge(target, act.Object) {
		return unchanged()
	}
	return changed(fmt.Sprintf("MERGE %s %s → %s", act.Path.Raw, act.Object, target))
}

// deepMerge merges src into dst recursively: nested mappings merge, any
// other collision (arrays included) replaces. Returns whether dst changed.
func deepMerge(dst, src *value.Value) bool {
	modified := false
	for _, k := range src.Keys() {
		sv, _ := src.Get(k)
		dv, ok := dst.Get(k)
		if ok && dv.Kind() == value.KindMap && sv.Kind() == value.KindMap {
			if deepMerge(dv, sv) {
				modified = true
			}
			continue
		}
		if ok && dv.Equal(sv) {
			continue
		}
		dst.Set(k, sv.Clone())
		modified = true
	}
	return modified
}

func execMergeOverwrite(act *MergeOverwrite, root *value.Value) Outcome {
	target, ok := dotpath.Resolve(root, act.Path.Segments)
	if !ok {
		if err := dotpath.Set(root, act.Path.Segments, act.Object.Clone()); err != nil {
			return failed(err)
		}
		return changed(fmt.Sprintf("MERGE_OVERWRITE %s %s", act.Path.Raw, act.Object))
	}
	if target.Kind() != value.KindMap {
		return failed(oops.Code("EXEC_ERROR").
			With("path", act.Path.Raw).
			With("kind", target.Kind().String()).
			Errorf("MERGE_OVERWRITE target %q is not an object", act.Path.Raw))
	}
	modified := false
	for _, k := range act.Object.Keys() {
		sv, _ := act.Object.Get(k)
		if dv, ok := target.Get(k); ok && dv.Equal(sv) {
			continue
		}
		target.Set(k, sv.Clone())
		modified = true
	}
	if !modified {
		return unchanged()
	}
	return changed(fmt.Sprintf("MERGE_OVERWRITE %s %s → %s", act.Path.Raw, act.Object, target))
}
