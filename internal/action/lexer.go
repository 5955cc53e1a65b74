// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package action

import (
	"strings"

	"github.com/samber/oops"
)

// tokenType identifies a lexical token of the action language.
type tokenType int

const (
	tokEOF tokenType = iota
	tokWord
	tokString
	tokJSON
	tokComma
)

// token is one lexical unit. Text holds the word spelling, the unquoted
// string payload, or the raw JSON blob. Start and End are byte offsets into
// the source, used to reassemble embedded condition fragments verbatim.
type token struct {
	Type  tokenType
	Text  string
	Start int
	End   int
}

// lexAction tokenizes action source text. Strings keep their escapes
// resolved; a balanced {…} or […] blob is a single JSON token.
func lexAction(src string) ([]token, error) {
	var toks []token
	i := 0
	for {
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if i >= len(src) {
			toks = append(toks, token{Type: tokEOF, Start: i, End: i})
			return toks, nil
		}
		switch c := src[i]; {
		case c == ',':
			toks = append(toks, token{Type: tokComma, Text: ",", Start: i, End: i + 1})
			i++
		case c == '"' || c == '\'':
			tok, next, err := lexQuoted(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case c == '{' || c == '[':
			tok, next, err := lexBalanced(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		default:
			start := i
			for i < len(src) && !isSpace(src[i]) && src[i] != ',' && src[i] != '"' && src[i] != '\'' {
				i++
			}
			toks = append(toks, token{Type: tokWord, Text: src[start:i], Start: start, End: i})
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func lexQuoted(src string, start int) (token, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		if c == quote {
			return token{Type: tokString, Text: b.String(), Start: start, End: i + 1}, i + 1, nil
		}
		if c == '\\' && i+1 < len(src) {
			i++
			switch src[i] {
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte('\\')
				b.WriteByte(src[i])
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return token{}, 0, oops.Code("PARSE_ERROR").
		With("position", start).
		Errorf("unterminated string starting at position %d", start)
}

// lexBalanced consumes a balanced JSON array or object, honoring nested
// brackets and quoted strings.
func lexBalanced(src string, start int) (token, int, error) {
	depth := 0
	i := start
	for i < len(src) {
		switch src[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return token{Type: tokJSON, Text: src[start : i+1], Start: start, End: i + 1}, i + 1, nil
			}
		case '"', '\'':
			quote := src[i]
			i++
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(src) {
				return token{}, 0, oops.Code("PARSE_ERROR").
					With("position", start).
					Errorf("unterminated string inside literal starting at position %d", start)
			}
		}
		i++
	}
	return token{}, 0, oops.Code("PARSE_ERROR").
		With("position", start).
		Errorf("unbalanced literal starting at position %d", start)
}
