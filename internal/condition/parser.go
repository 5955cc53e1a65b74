// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package condition

import (
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/internal/dotpath"
	"github.com/frontmark/frontmark/internal/value"
)

// parser consumes the token stream with precedence climbing:
// OR < AND < NOT < atom.
type parser struct {
	toks []Token
	pos  int
}

// Parse parses condition source text into an AST.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenEOF {
		t := p.peek()
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("unexpected token %q at position %d", t.Text, t.Pos)
	}
	return n, nil
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.toks[p.pos].Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	t := p.peek()
	if t.Type != tt {
		return Token{}, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("expected %s at position %d, got %q", what, t.Pos, t.Text)
	}
	return p.advance(), nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().Type == TokenNot {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{Inner: inner}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Node, error) {
	t := p.peek()
	switch t.Type {
	case TokenLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenAny, TokenAll:
		return p.parseQuantifier()
	default:
		return p.parsePredicate()
	}
}

// parseQuantifier parses ANY|ALL path WHERE condition. The body extends
// maximally to the right, so quantifiers nest without parentheses.
func (p *parser) parseQuantifier() (Node, error) {
	kw := p.advance()
	kind := QuantAny
	if kw.Type == TokenAll {
		kind = QuantAll
	}
	arr, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenWhere, "WHERE"); err != nil {
		return nil, err
	}
	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return &Quantifier{Kind: kind, Array: arr, Body: body}, nil
}

func (p *parser) parsePredicate() (Node, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	switch t.Type {
	case TokenBang:
		p.advance()
		return p.parseNegatedCheck(path)
	case TokenHas:
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Has{Path: path, Value: lit}, nil
	case TokenEmpty:
		p.advance()
		return &EmptyCheck{Path: path}, nil
	case TokenExists:
		p.advance()
		return &Existence{Path: path}, nil
	case TokenTypeCheck:
		p.advance()
		return &TypeCheck{Path: path, Kind: t.TypeKind}, nil
	case TokenEq, TokenNeq, TokenLt, TokenLte, TokenGt, TokenGte:
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Comparison{Left: path, Op: compareOpFor(t.Type), Right: lit}, nil
	case TokenMatch:
		p.advance()
		return p.parseMatch(path)
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("expected an operator after path %q at position %d", path.Raw, t.Pos)
	}
}

// parseNegatedCheck handles the `!` prefix forms: !has, !empty, !exists,
// and !:type.
func (p *parser) parseNegatedCheck(path Path) (Node, error) {
	t := p.peek()
	switch t.Type {
	case TokenHas:
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Has{Path: path, Value: lit, Negated: true}, nil
	case TokenEmpty:
		p.advance()
		return &EmptyCheck{Path: path, Negated: true}, nil
	case TokenExists:
		p.advance()
		return &Existence{Path: path, Negated: true}, nil
	case TokenTypeCheck:
		p.advance()
		return &TypeCheck{Path: path, Kind: t.TypeKind, Negated: true}, nil
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("expected has, empty, exists, or a type check after '!' at position %d", t.Pos)
	}
}

// parseMatch parses the right side of `~`: a regex literal, or a string
// literal spelled /pattern/flags.
func (p *parser) parseMatch(path Path) (Node, error) {
	t := p.peek()
	switch t.Type {
	case TokenRegex:
		p.advance()
		return &Comparison{Left: path, Op: OpMatch, Regex: &RegexLiteral{Pattern: t.Pattern, Flags: t.Flags}}, nil
	case TokenString:
		p.advance()
		lit, err := regexFromString(t.Text)
		if err != nil {
			return nil, oops.Code("PARSE_ERROR").
				With("position", t.Pos).
				Wrapf(err, "invalid regex literal at position %d", t.Pos)
		}
		return &Comparison{Left: path, Op: OpMatch, Regex: lit}, nil
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("expected a regex after '~' at position %d", t.Pos)
	}
}

// regexFromString converts "/pattern/flags" text into a regex literal.
// Bare text without slashes is treated as a whole pattern with no flags.
func regexFromString(text string) (*RegexLiteral, error) {
	if !strings.HasPrefix(text, "/") {
		return &RegexLiteral{Pattern: text}, nil
	}
	end := strings.LastIndexByte(text, '/')
	if end == 0 {
		return nil, oops.Code("PARSE_ERROR").Errorf("unterminated regex %q", text)
	}
	return &RegexLiteral{Pattern: text[1:end], Flags: text[end+1:]}, nil
}

func compareOpFor(tt TokenType) CompareOp {
	switch tt {
	case TokenNeq:
		return OpNeq
	case TokenLt:
		return OpLt
	case TokenLte:
		return OpLte
	case TokenGt:
		return OpGt
	case TokenGte:
		return OpGte
	default:
		return OpEq
	}
}

// parsePath assembles a dotted/bracketed path from the token stream.
// Keyword spellings are legal field names when they follow a dot.
func (p *parser) parsePath() (Path, error) {
	head := p.peek()
	if head.Type != TokenIdent && head.Type != TokenNumber {
		return Path{}, oops.Code("PARSE_ERROR").
			With("position", head.Pos).
			Errorf("expected a path at position %d, got %q", head.Pos, head.Text)
	}
	p.advance()
	var b strings.Builder
	b.WriteString(head.Text)

	for {
		switch p.peek().Type {
		case TokenDot:
			p.advance()
			seg := p.peek()
			if !isFieldToken(seg.Type) {
				return Path{}, oops.Code("PARSE_ERROR").
					With("position", seg.Pos).
					Errorf("expected a field name after '.' at position %d", seg.Pos)
			}
			p.advance()
			b.WriteByte('.')
			b.WriteString(seg.Text)
		case TokenLBracket:
			p.advance()
			idx, err := p.expect(TokenNumber, "an index")
			if err != nil {
				return Path{}, err
			}
			if _, convErr := strconv.ParseInt(idx.Text, 10, 64); convErr != nil {
				return Path{}, oops.Code("PARSE_ERROR").
					With("position", idx.Pos).
					Errorf("index %q is not an integer", idx.Text)
			}
			if _, err := p.expect(TokenRBracket, "']'"); err != nil {
				return Path{}, err
			}
			b.WriteString("[" + idx.Text + "]")
		default:
			raw := b.String()
			segs, err := dotpath.Parse(raw)
			if err != nil {
				return Path{}, err
			}
			return Path{Raw: raw, Segments: segs}, nil
		}
	}
}

// isFieldToken reports whether a token may serve as a field name inside a
// path. Keywords are allowed there; operators are not.
func isFieldToken(tt TokenType) bool {
	switch tt {
	case TokenIdent, TokenNumber, TokenAnd, TokenOr, TokenNot, TokenAny,
		TokenAll, TokenWhere, TokenHas, TokenEmpty, TokenExists,
		TokenTrue, TokenFalse, TokenNull:
		return true
	default:
		return false
	}
}

// parseLiteral converts the next token into a literal value. Bare
// identifiers read as strings, mirroring the action literal rules.
func (p *parser) parseLiteral() (*value.Value, error) {
	t := p.peek()
	switch t.Type {
	case TokenString:
		p.advance()
		return value.String(t.Text), nil
	case TokenNumber:
		p.advance()
		if strings.ContainsRune(t.Text, '.') {
			f, err := strconv.ParseFloat(t.Text, 64)
			if err != nil {
				return nil, oops.Code("PARSE_ERROR").Errorf("invalid number %q", t.Text)
			}
			return value.Float(f), nil
		}
		i, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, oops.Code("PARSE_ERROR").Errorf("invalid number %q", t.Text)
		}
		return value.Int(i), nil
	case TokenTrue:
		p.advance()
		return value.Bool(true), nil
	case TokenFalse:
		p.advance()
		return value.Bool(false), nil
	case TokenNull:
		p.advance()
		return value.Null(), nil
	case TokenIdent:
		p.advance()
		return value.String(t.Text), nil
	default:
		return nil, oops.Code("PARSE_ERROR").
			With("position", t.Pos).
			Errorf("expected a literal at position %d, got %q", t.Pos, t.Text)
	}
}
