// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package condition

import (
	"time"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// Config bounds evaluation. Zero fields fall back to the defaults.
type Config struct {
	MaxRegexLength int
	RegexTimeout   time.Duration
}

// Evaluate evaluates a condition against a value with the default config.
func Evaluate(n Node, scope *value.Value) (bool, error) {
	return EvaluateWith(Config{}, n, scope)
}

// EvaluateWith evaluates a condition against a value. Predicates over
// missing or mismatched operands are fail-safe booleans; only regex
// failures (guard violations, invalid patterns, timeouts) surface as errors.
func EvaluateWith(cfg Config, n Node, scope *value.Value) (bool, error) {
	switch c := n.(type) {
	case *Or:
		left, err := EvaluateWith(cfg, c.Left, scope)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return EvaluateWith(cfg, c.Right, scope)
	case *And:
		left, err := EvaluateWith(cfg, c.Left, scope)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return EvaluateWith(cfg, c.Right, scope)
	case *Not:
		inner, err := EvaluateWith(cfg, c.Inner, scope)
		if err != nil {
			return false, err
		}
		return !inner, nil
	case *Quantifier:
		return evalQuantifier(cfg, c, scope)
	case *Comparison:
		return evalComparison(cfg, c, scope)
	case *Existence:
		return dotpath.Exists(scope, c.Path.Segments) != c.Negated, nil
	case *TypeCheck:
		return evalTypeCheck(c, scope), nil
	case *EmptyCheck:
		return evalEmptyCheck(c, scope), nil
	case *Has:
		return evalHas(c, scope), nil
	default:
		return false, oops.Code("EVAL_ERROR").Errorf("unknown condition node %T", n)
	}
}

// resolveOperand resolves a comparison operand, honoring the virtual
// `length` terminal segment: when the literal path does not resolve and its
// final segment is the field "length", the prefix's size is produced for
// sequences, mappings, and strings. A real `length` key shadows the
// virtual segment.
func resolveOperand(scope *value.Value, p Path) (*value.Value, bool) {
	if v, ok := dotpath.Resolve(scope, p.Segments); ok {
		return v, true
	}
	n := len(p.Segments)
	if n == 0 {
		return nil, false
	}
	last := p.Segments[n-1]
	if last.IsIndex || last.Field != "length" {
		return nil, false
	}
	parent, ok := dotpath.Resolve(scope, p.Segments[:n-1])
	if !ok {
		return nil, false
	}
	switch parent.Kind() {
	case value.KindSeq, value.KindMap, value.KindString:
		return value.Int(int64(parent.Len())), true
	default:
		return nil, false
	}
}

func evalComparison(cfg Config, c *Comparison, scope *value.Value) (bool, error) {
	left, ok := resolveOperand(scope, c.Left)
	if !ok {
		// Absent operands satisfy only inequality.
		return c.Op == OpNeq, nil
	}
	switch c.Op {
	case OpEq:
		return left.Equal(c.Right), nil
	case OpNeq:
		return !left.Equal(c.Right), nil
	case OpLt, OpLte, OpGt, OpGte:
		ln, lok := left.Num()
		rn, rok := c.Right.Num()
		if !lok || !rok {
			return false, nil
		}
		switch c.Op {
		case OpLt:
			return ln < rn, nil
		case OpLte:
			return ln <= rn, nil
		case OpGt:
			return ln > rn, nil
		default:
			return ln >= rn, nil
		}
	case OpMatch:
		if left.Kind() != value.KindString {
			return false, nil
		}
		re, err := compileRegex(c.Regex, cfg.MaxRegexLength)
		if err != nil {
			return false, err
		}
		return matchTimed(re, left.StrVal(), cfg.RegexTimeout)
	default:
		return false, oops.Code("EVAL_ERROR").Errorf("unknown comparison operator %d", c.Op)
	}
}

func evalTypeCheck(c *TypeCheck, scope *value.Value) bool {
	v, ok := dotpath.Resolve(scope, c.Path.Segments)
	matched := ok && kindMatches(v, c.Kind)
	return matched != c.Negated
}

func kindMatches(v *value.Value, kind string) bool {
	switch kind {
	case "string":
		return v.Kind() == value.KindString
	case "number":
		return v.IsNumber()
	case "boolean":
		return v.Kind() == value.KindBool
	case "array":
		return v.Kind() == value.KindSeq
	case "object":
		return v.Kind() == value.KindMap
	case "null":
		return v.Kind() == value.KindNull
	default:
		return false
	}
}

// evalEmptyCheck implements the emptiness truth table: only present
// sequences, strings, and mappings of size zero are empty; missing entries
// and explicit nulls are not.
func evalEmptyCheck(c *EmptyCheck, scope *value.Value) bool {
	v, ok := dotpath.Resolve(scope, c.Path.Segments)
	isEmpty := false
	if ok {
		switch v.Kind() {
		case value.KindSeq, value.KindMap, value.KindString:
			isEmpty = v.Len() == 0
		}
	}
	return isEmpty != c.Negated
}

func evalHas(c *Has, scope *value.Value) bool {
	v, ok := dotpath.Resolve(scope, c.Path.Segments)
	contains := ok && v.Kind() == value.KindSeq && v.IndexOf(c.Value) >= 0
	return contains != c.Negated
}

// evalQuantifier implements ANY/ALL. A missing, non-sequence, or empty
// array is false for both kinds. The element becomes the body's scope.
func evalQuantifier(cfg Config, q *Quantifier, scope *value.Value) (bool, error) {
	arr, ok := dotpath.Resolve(scope, q.Array.Segments)
	if !ok || arr.Kind() != value.KindSeq || arr.Len() == 0 {
		return false, nil
	}
	for _, elem := range arr.Elems() {
		matched, err := EvaluateWith(cfg, q.Body, elem)
		if err != nil {
			return false, err
		}
		if q.Kind == QuantAny && matched {
			return true, nil
		}
		if q.Kind == QuantAll && !matched {
			return false, nil
		}
	}
	return q.Kind == QuantAll, nil
}
