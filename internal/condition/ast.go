// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

// Package condition implements the predicate language evaluated against
// front-matter values: a lexer, a precedence-climbing parser, and an
// evaluator with fail-safe truth tables.
package condition

import (
	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// Node is a parsed condition. Exactly one concrete type implements each
// predicate form.
type Node interface {
	String() string
	node()
}

// Path is a parsed operand path with its source spelling.
type Path struct {
	Raw      string
	Segments []dotpath.Segment
}

func (p Path) String() string { return p.Raw }

// CompareOp is a comparison operator.
type CompareOp int

// Comparison operators.
const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpMatch
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpMatch:
		return "~"
	default:
		return "?"
	}
}

// RegexLiteral is the right side of a `~` comparison.
type RegexLiteral struct {
	Pattern string
	Flags   string
}

func (r RegexLiteral) String() string { return "/" + r.Pattern + "/" + r.Flags }

// Comparison compares a path against a literal (or regex for OpMatch).
type Comparison struct {
	Left  Path
	Op    CompareOp
	Right *value.Value
	Regex *RegexLiteral
}

func (c *Comparison) node() {}
func (c *Comparison) String() string {
	if c.Op == OpMatch {
		return c.Left.Raw + " ~ " + c.Regex.String()
	}
	return c.Left.Raw + " " + c.Op.String() + " " + c.Right.String()
}

// Existence tests whether a path resolves to a present entry.
type Existence struct {
	Path    Path
	Negated bool
}

func (e *Existence) node() {}
func (e *Existence) String() string {
	if e.Negated {
		return e.Path.Raw + " !exists"
	}
	return e.Path.Raw + " exists"
}

// TypeCheck tests the kind of the value at a path.
type TypeCheck struct {
	Path    Path
	Kind    string
	Negated bool
}

func (t *TypeCheck) node() {}
func (t *TypeCheck) String() string {
	neg := ""
	if t.Negated {
		neg = "!"
	}
	return t.Path.Raw + " " + neg + ":" + t.Kind
}

// EmptyCheck tests whether the value at a path is an empty sequence,
// string, or mapping.
type EmptyCheck struct {
	Path    Path
	Negated bool
}

func (e *EmptyCheck) node() {}
func (e *EmptyCheck) String() string {
	if e.Negated {
		return e.Path.Raw + " !empty"
	}
	return e.Path.Raw + " empty"
}

// Has tests sequence membership by value equality.
type Has struct {
	Path    Path
	Value   *value.Value
	Negated bool
}

func (h *Has) node() {}
func (h *Has) String() string {
	kw := "has"
	if h.Negated {
		kw = "!has"
	}
	return h.Path.Raw + " " + kw + " " + h.Value.String()
}

// QuantifierKind distinguishes ANY from ALL.
type QuantifierKind int

// Quantifier kinds.
const (
	QuantAny QuantifierKind = iota
	QuantAll
)

// Quantifier binds each element of the array at Array as the evaluation
// scope of Body.
type Quantifier struct {
	Kind  QuantifierKind
	Array Path
	Body  Node
}

func (q *Quantifier) node() {}
func (q *Quantifier) String() string {
	kw := "ANY"
	if q.Kind == QuantAll {
		kw = "ALL"
	}
	return kw + " " + q.Array.Raw + " WHERE " + q.Body.String()
}

// Not negates a condition.
type Not struct {
	Inner Node
}

func (n *Not) node()          {}
func (n *Not) String() string { return "NOT (" + n.Inner.String() + ")" }

// And is a conjunction.
type And struct {
	Left, Right Node
}

func (a *And) node() {}
func (a *And) String() string {
	return "(" + a.Left.String() + " AND " + a.Right.String() + ")"
}

// Or is a disjunction.
type Or struct {
	Left, Right Node
}

func (o *Or) node() {}
func (o *Or) String() string {
	return "(" + o.Left.String() + " OR " + o.Right.String() + ")"
}
