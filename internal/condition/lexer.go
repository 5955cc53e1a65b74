// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package condition

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
)

// lexer tokenizes condition source text.
type lexer struct {
	src string
	pos int
}

// tokenize produces the full token stream, ending with a TokenEOF.
func tokenize(src string) ([]Token, error) {
	l := &lexer{src: src}
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]

	switch c {
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Text: "(", Pos: start}, nil
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Text: ")", Pos: start}, nil
	case '[':
		l.pos++
		return Token{Type: TokenLBracket, Text: "[", Pos: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenRBracket, Text: "]", Pos: start}, nil
	case '.':
		l.pos++
		return Token{Type: TokenDot, Text: ".", Pos: start}, nil
	case '=':
		l.pos++
		return Token{Type: TokenEq, Text: "=", Pos: start}, nil
	case '~':
		l.pos++
		return Token{Type: TokenMatch, Text: "~", Pos: start}, nil
	case '!':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Type: TokenNeq, Text: "!=", Pos: start}, nil
		}
		l.pos++
		return Token{Type: TokenBang, Text: "!", Pos: start}, nil
	case '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Type: TokenLte, Text: "<=", Pos: start}, nil
		}
		l.pos++
		return Token{Type: TokenLt, Text: "<", Pos: start}, nil
	case '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return Token{Type: TokenGte, Text: ">=", Pos: start}, nil
		}
		l.pos++
		return Token{Type: TokenGt, Text: ">", Pos: start}, nil
	case ':':
		return l.lexTypeCheck()
	case '"', '\'':
		return l.lexString()
	case '/':
		return l.lexRegex()
	}

	if isDigit(c) || (c == '-' && isDigit(l.peekAt(1))) {
		return l.lexNumber(), nil
	}
	if isIdentByte(c) {
		return l.lexIdent(), nil
	}
	return Token{}, oops.Code("PARSE_ERROR").
		With("position", start).
		Errorf("unexpected character %q at position %d", c, start)
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		l.pos++
	}
}

func (l *lexer) lexTypeCheck() (Token, error) {
	start := l.pos
	l.pos++ // consume ':'
	kindStart := l.pos
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	kind := strings.ToLower(l.src[kindStart:l.pos])
	if !typeKinds[kind] {
		return Token{}, oops.Code("PARSE_ERROR").
			With("position", start).
			Errorf("unknown type check %q", ":"+l.src[kindStart:l.pos])
	}
	return Token{Type: TokenTypeCheck, Text: ":" + kind, Pos: start, TypeKind: kind}, nil
}

func (l *lexer) lexString() (Token, error) {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			return Token{Type: TokenString, Text: b.String(), Pos: start}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			switch l.src[l.pos] {
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
				b.WriteByte(l.src[l.pos])
			}
			l.pos++
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return Token{}, oops.Code("PARSE_ERROR").
		With("position", start).
		Errorf("unterminated string starting at position %d", start)
}

func (l *lexer) lexRegex() (Token, error) {
	start := l.pos
	l.pos++ // consume '/'
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '/' {
			l.pos++
			flagStart := l.pos
			for l.pos < len(l.src) && isASCIILetter(l.src[l.pos]) {
				l.pos++
			}
			return Token{
				Type:    TokenRegex,
				Text:    l.src[start:l.pos],
				Pos:     start,
				Pattern: b.String(),
				Flags:   l.src[flagStart:l.pos],
			}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			if l.src[l.pos+1] == '/' {
				b.WriteByte('/')
			} else {
				b.WriteByte('\\')
				b.WriteByte(l.src[l.pos+1])
			}
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return Token{}, oops.Code("PARSE_ERROR").
		With("position", start).
		Errorf("unterminated regex starting at position %d", start)
}

func (l *lexer) lexNumber() Token {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	return Token{Type: TokenNumber, Text: l.src[start:l.pos], Pos: start}
}

func (l *lexer) lexIdent() Token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentRune(r) {
			break
		}
		l.pos += size
	}
	text := l.src[start:l.pos]
	if tt, ok := keywords[strings.ToLower(text)]; ok {
		return Token{Type: tt, Text: text, Pos: start}
	}
	return Token{Type: TokenIdent, Text: text, Pos: start}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isASCIILetter(c) || isDigit(c) || c == '_' || c == '-' || c >= utf8.RuneSelf
}

func isIdentRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentByte(byte(r))
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
