// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package action

import (
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/condition"
	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/literal"
	"github.com/frontmark/frontmark/internal/value"
)

type parser struct {
	src  string
	toks []token
	pos  int
}

// Parse parses action source text into an Action. Keywords are
// case-insensitive; embedded `*_WHERE` conditions are reassembled from the
// source and handed to the condition parser.
func Parse(src string) (Action, error) {
	toks, err := lexAction(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}

	opTok, err := p.word("an operation")
	if err != nil {
		return nil, err
	}
	op := strings.ToUpper(opTok.Text)

	var act Action
	switch op {
	case "SET":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &Set{Path: path, Value: v} })
	case "ADD":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &Add{Path: path, Value: v} })
	case "DELETE", "CLEAR":
		var path Path
		path, err = p.path()
		act = &Delete{Path: path}
	case "RENAME":
		act, err = p.parseRename()
	case "APPEND":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &Append{Path: path, Value: v} })
	case "PREPEND":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &Prepend{Path: path, Value: v} })
	case "INSERT_AT":
		act, err = p.parseInsertAt()
	case "INSERT_AFTER":
		act, err = p.parseInsertAnchor(false)
	case "INSERT_BEFORE":
		act, err = p.parseInsertAnchor(true)
	case "REMOVE":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &Remove{Path: path, Value: v} })
	case "REMOVE_ALL":
		act, err = p.parsePathValue(func(path Path, v *value.Value) Action { return &RemoveAll{Path: path, Value: v} })
	case "REMOVE_AT":
		act, err = p.parseRemoveAt()
	case "REPLACE":
		act, err = p.parseReplace(false)
	case "REPLACE_ALL":
		act, err = p.parseReplace(true)
	case "DEDUPLICATE":
		var path Path
		path, err = p.path()
		act = &Deduplicate{Path: path}
	case "SORT":
		act, err = p.parseSort()
	case "SORT_BY":
		act, err = p.parseSortBy()
	case "MOVE":
		act, err = p.parseMove()
	case "MOVE_WHERE":
		act, err = p.parseMoveWhere()
	case "UPDATE_WHERE":
		act, err = p.parseUpdateWhere()
	case "MERGE":
		act, err = p.parseMerge(func(path Path, obj *value.Value) Action { return &Merge{Path: path, Object: obj} })
	case "MERGE_OVERWRITE":
		act, err = p.parseMerge(func(path Path, obj *value.Value) Action { return &MergeOverwrite{Path: path, Object: obj} })
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("operation", opTok.Text).
			Errorf("unknown operation %q", opTok.Text)
	}
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.Type != tokEOF {
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("unexpected trailing input at position %d", t.Start)
	}
	return act, nil
}

// --- token helpers ---

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.Type != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) word(what string) (token, error) {
	t := p.peek()
	if t.Type != tokWord {
		return token{}, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("expected %s at position %d", what, t.Start)
	}
	return p.advance(), nil
}

// keyword consumes a word that must match one of the given spellings
// (case-insensitive) and returns its canonical upper form.
func (p *parser) keyword(spellings ...string) (string, error) {
	t := p.peek()
	if t.Type == tokWord {
		up := strings.ToUpper(t.Text)
		for _, s := range spellings {
			if up == s {
				p.advance()
				return up, nil
			}
		}
	}
	return "", oops.Code("PARSE_ERROR").
		With("position", t.Start).
		Errorf("expected %s at position %d", strings.Join(spellings, " or "), t.Start)
}

func (p *parser) path() (Path, error) {
	t, err := p.word("a path")
	if err != nil {
		return Path{}, err
	}
	segs, err := dotpath.Parse(t.Text)
	if err != nil {
		return Path{}, err
	}
	if len(segs) == 0 {
		return Path{}, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("empty path at position %d", t.Start)
	}
	return Path{Raw: t.Text, Segments: segs}, nil
}

func (p *parser) valueToken() (*value.Value, error) {
	t := p.peek()
	switch t.Type {
	case tokString:
		p.advance()
		return value.String(t.Text), nil
	case tokJSON:
		p.advance()
		return literal.ParseJSON(t.Text)
	case tokWord:
		p.advance()
		return literal.Parse(t.Text)
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("expected a value at position %d", t.Start)
	}
}

func (p *parser) integer(what string) (int64, error) {
	t, err := p.word(what)
	if err != nil {
		return 0, err
	}
	i, convErr := strconv.ParseInt(t.Text, 10, 64)
	if convErr != nil {
		return 0, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("%s must be an integer, got %q", what, t.Text)
	}
	return i, nil
}

// --- operation parsers ---

func (p *parser) parsePathValue(build func(Path, *value.Value) Action) (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	v, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	return build(path, v), nil
}

func (p *parser) parseRename() (Action, error) {
	oldPath, err := p.path()
	if err != nil {
		return nil, err
	}
	newPath, err := p.path()
	if err != nil {
		return nil, err
	}
	return &Rename{OldPath: oldPath, NewPath: newPath}, nil
}

func (p *parser) parseInsertAt() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	v, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("AT"); err != nil {
		return nil, err
	}
	idx, err := p.integer("index")
	if err != nil {
		return nil, err
	}
	return &InsertAt{Path: path, Value: v, Index: idx}, nil
}

func (p *parser) parseInsertAnchor(before bool) (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	v, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	kw := "AFTER"
	if before {
		kw = "BEFORE"
	}
	if _, err := p.keyword(kw); err != nil {
		return nil, err
	}
	target, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	if before {
		return &InsertBefore{Path: path, Value: v, Target: target}, nil
	}
	return &InsertAfter{Path: path, Value: v, Target: target}, nil
}

func (p *parser) parseRemoveAt() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	idx, err := p.integer("index")
	if err != nil {
		return nil, err
	}
	return &RemoveAt{Path: path, Index: idx}, nil
}

func (p *parser) parseReplace(all bool) (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	oldVal, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("WITH"); err != nil {
		return nil, err
	}
	newVal, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	if all {
		return &ReplaceAll{Path: path, Old: oldVal, New: newVal}, nil
	}
	return &Replace{Path: path, Old: oldVal, New: newVal}, nil
}

func (p *parser) parseSort() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	desc, err := p.optionalDirection()
	if err != nil {
		return nil, err
	}
	return &Sort{Path: path, Desc: desc}, nil
}

func (p *parser) parseSortBy() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("BY"); err != nil {
		return nil, err
	}
	field, err := p.path()
	if err != nil {
		return nil, err
	}
	desc, err := p.optionalDirection()
	if err != nil {
		return nil, err
	}
	return &SortBy{Path: path, Field: field, Desc: desc}, nil
}

// optionalDirection consumes a trailing ASC or DESC. Default is ascending.
func (p *parser) optionalDirection() (bool, error) {
	t := p.peek()
	if t.Type != tokWord {
		return false, nil
	}
	switch strings.ToUpper(t.Text) {
	case "ASC":
		p.advance()
		return false, nil
	case "DESC":
		p.advance()
		return true, nil
	default:
		return false, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("expected ASC or DESC at position %d, got %q", t.Start, t.Text)
	}
}

func (p *parser) parseMove() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("FROM"); err != nil {
		return nil, err
	}
	from, err := p.integer("source index")
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("TO"); err != nil {
		return nil, err
	}
	to, err := p.integer("target index")
	if err != nil {
		return nil, err
	}
	return &Move{Path: path, From: from, To: to}, nil
}

func (p *parser) parseMoveWhere() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("WHERE"); err != nil {
		return nil, err
	}
	cond, term, err := p.embeddedCondition("TO", "AFTER", "BEFORE")
	if err != nil {
		return nil, err
	}

	var target MoveTarget
	switch term {
	case "TO":
		t, err := p.word("START, END, or an index")
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(t.Text) {
		case "START":
			target = MoveTarget{Kind: MoveToStart}
		case "END":
			target = MoveTarget{Kind: MoveToEnd}
		default:
			n, convErr := strconv.ParseInt(t.Text, 10, 64)
			if convErr != nil {
				return nil, oops.Code("PARSE_ERROR").
					With("position", t.Start).
					Errorf("expected START, END, or an index, got %q", t.Text)
			}
			// Inherited quirk: numeric targets collapse to START when
			// zero and END otherwise. Arbitrary indices are an open
			// question for a future grammar revision.
			if n == 0 {
				target = MoveTarget{Kind: MoveToStart}
			} else {
				target = MoveTarget{Kind: MoveToEnd}
			}
		}
	case "AFTER", "BEFORE":
		anchor, _, err := p.embeddedCondition()
		if err != nil {
			return nil, err
		}
		kind := MoveAfter
		if term == "BEFORE" {
			kind = MoveBefore
		}
		target = MoveTarget{Kind: kind, Cond: anchor}
	}
	return &MoveWhere{Path: path, Cond: cond, Target: target}, nil
}

func (p *parser) parseUpdateWhere() (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("WHERE"); err != nil {
		return nil, err
	}
	cond, _, err := p.embeddedCondition("SET")
	if err != nil {
		return nil, err
	}

	var updates []FieldUpdate
	for {
		field, err := p.path()
		if err != nil {
			return nil, err
		}
		v, err := p.valueToken()
		if err != nil {
			return nil, err
		}
		updates = append(updates, FieldUpdate{Field: field, Value: v})
		if p.peek().Type != tokComma {
			break
		}
		p.advance()
	}
	return &UpdateWhere{Path: path, Cond: cond, Updates: updates}, nil
}

func (p *parser) parseMerge(build func(Path, *value.Value) Action) (Action, error) {
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	obj, err := p.valueToken()
	if err != nil {
		return nil, err
	}
	if obj.Kind() != value.KindMap {
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Start).
			Errorf("merge requires an object literal")
	}
	return build(path, obj), nil
}

// embeddedCondition reassembles tokens up to one of the terminator
// keywords (or end of input when none are given) and parses them with the
// condition parser. Returns the condition and the terminator consumed.
func (p *parser) embeddedCondition(terminators ...string) (condition.Node, string, error) {
	start := -1
	end := -1
	for {
		t := p.peek()
		if t.Type == tokEOF {
			if len(terminators) > 0 {
				return nil, "", oops.Code("PARSE_ERROR").
					Errorf("expected %s after condition", strings.Join(terminators, " or "))
			}
			break
		}
		if t.Type == tokWord {
			up := strings.ToUpper(t.Text)
			matched := false
			for _, term := range terminators {
				if up == term {
					matched = true
					break
				}
			}
			if matched {
				p.advance()
				if start < 0 {
					return nil, "", oops.Code("PARSE_ERROR").
						With("position", t.Start).
						Errorf("empty condition at position %d", t.Start)
				}
				cond, err := condition.Parse(p.src[start:end])
				if err != nil {
					return nil, "", err
				}
				return cond, up, nil
			}
		}
		if start < 0 {
			start = t.Start
		}
		end = t.End
		p.advance()
	}
	if start < 0 {
		return nil, "", oops.Code("PARSE_ERROR").Errorf("empty condition")
	}
	cond, err := condition.Parse(p.src[start:end])
	if err != nil {
		return nil, "", err
	}
	return cond, "", nil
}
