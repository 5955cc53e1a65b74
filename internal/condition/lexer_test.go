// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontmark/frontmark/pkg/errutil"
)

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestTokenize_Basic(t *testing.T) {
	toks, err := tokenize(`status = "draft"`)
	require.NoError(t, err)
	assert.Equal(t, []TokenType{TokenIdent, TokenEq, TokenString, TokenEOF}, tokenTypes(toks))
	assert.Equal(t, "status", toks[0].Text)
	assert.Equal(t, "draft", toks[2].Text)
}

func TestTokenize_Operators(t *testing.T) {
	toks, err := tokenize(`= != < <= > >= ~ ! ( ) [ ] .`)
	require.NoError(t, err)
	assert.Equal(t, []TokenType{
		TokenEq, TokenNeq, TokenLt, TokenLte, TokenGt, TokenGte, TokenMatch,
		TokenBang, TokenLParen, TokenRParen, TokenLBracket, TokenRBracket,
		TokenDot, TokenEOF,
	}, tokenTypes(toks))
}

func TestTokenize_KeywordsCaseInsensitive(t *testing.T) {
	toks, err := tokenize("AND and And OR not ANY all WHERE has EMPTY exists TRUE false NULL")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{
		TokenAnd, TokenAnd, TokenAnd, TokenOr, TokenNot, TokenAny, TokenAll,
		TokenWhere, TokenHas, TokenEmpty, TokenExists, TokenTrue, TokenFalse,
		TokenNull, TokenEOF,
	}, tokenTypes(toks))
}

func TestTokenize_Numbers(t *testing.T) {
	toks, err := tokenize("5 -3 2.5 -0.25")
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenNumber, TokenNumber, TokenNumber, TokenNumber, TokenEOF}, tokenTypes(toks))
	assert.Equal(t, "5", toks[0].Text)
	assert.Equal(t, "-3", toks[1].Text)
	assert.Equal(t, "2.5", toks[2].Text)
	assert.Equal(t, "-0.25", toks[3].Text)
}

func TestTokenize_Strings(t *testing.T) {
	toks, err := tokenize(`"double" 'single' "esc\"aped" 'tab\there'`)
	require.NoError(t, err)
	require.Equal(t, []TokenType{TokenString, TokenString, TokenString, TokenString, TokenEOF}, tokenTypes(toks))
	assert.Equal(t, "double", toks[0].Text)
	assert.Equal(t, "single", toks[1].Text)
	assert.Equal(t, `esc"aped`, toks[2].Text)
	assert.Equal(t, "tab\there", toks[3].Text)
}

func TestTokenize_Regex(t *testing.T) {
	toks, err := tokenize(`/^draft-\d+$/i`)
	require.NoError(t, err)
	require.Equal(t, TokenRegex, toks[0].Type)
	assert.Equal(t, `^draft-\d+$`, toks[0].Pattern)
	assert.Equal(t, "i", toks[0].Flags)
}

func TestTokenize_RegexEscapedSlash(t *testing.T) {
	toks, err := tokenize(`/a\/b/`)
	require.NoError(t, err)
	require.Equal(t, TokenRegex, toks[0].Type)
	assert.Equal(t, "a/b", toks[0].Pattern)
	assert.Equal(t, "", toks[0].Flags)
}

func TestTokenize_TypeChecks(t *testing.T) {
	toks, err := tokenize(":string :number :boolean :array :object :null")
	require.NoError(t, err)
	kinds := []string{}
	for _, tok := range toks {
		if tok.Type == TokenTypeCheck {
			kinds = append(kinds, tok.TypeKind)
		}
	}
	assert.Equal(t, []string{"string", "number", "boolean", "array", "object", "null"}, kinds)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated double string", `"open`},
		{"unterminated single string", `'open`},
		{"unterminated regex", `/never`},
		{"unknown type check", ":integer"},
		{"stray character", "a = #"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokenize(tt.src)
			require.Error(t, err)
			errutil.AssertParseError(t, err)
		})
	}
}

func TestTokenize_TabsEqualSpaces(t *testing.T) {
	a, err := tokenize("a\t=\t1")
	require.NoError(t, err)
	b, err := tokenize("a = 1")
	require.NoError(t, err)
	assert.Equal(t, tokenTypes(a), tokenTypes(b))
}
