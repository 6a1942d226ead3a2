package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(source string) []Token {
	l := New(source)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == Eof {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("(){},.-+;/* ! != = == > >= < <=")
	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{
		LeftParen, RightParen, LeftBrace, RightBrace, Comma, Dot, Minus, Plus,
		Semicolon, Slash, Star, Bang, BangEqual, Equal, EqualEqual, Greater,
		GreaterEqual, Less, LessEqual, Eof,
	}, kinds)
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("var fun x2 return")
	require.Len(t, toks, 5)
	assert.Equal(t, Var, toks[0].Kind)
	assert.Equal(t, Fun, toks[1].Kind)
	assert.Equal(t, Identifier, toks[2].Kind)
	assert.Equal(t, "x2", toks[2].Lexeme)
	assert.Equal(t, Return, toks[3].Kind)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll("10 3.5")
	require.Len(t, toks, 3)
	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, "10", toks[0].Lexeme)
	assert.Equal(t, Number, toks[1].Kind)
	assert.Equal(t, "3.5", toks[1].Lexeme)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(`"hello world"`)
	require.Len(t, toks, 2)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestUnterminatedStringIsErrorToken(t *testing.T) {
	toks := scanAll(`"oops`)
	require.Len(t, toks, 2)
	assert.Equal(t, Error, toks[0].Kind)
	assert.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	toks := scanAll("1 // comment\n2")
	require.Len(t, toks, 3)
	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, Number, toks[1].Kind)
	assert.Equal(t, 2, toks[1].Line)
}

func TestNewlinesIncrementLine(t *testing.T) {
	toks := scanAll("1\n2\n3")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 3, toks[2].Line)
}

func TestUnexpectedCharacterIsErrorToken(t *testing.T) {
	toks := scanAll("@")
	require.Len(t, toks, 2)
	assert.Equal(t, Error, toks[0].Kind)
}
