package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wisplang/wisp/pkg/lexer"
)

func scanAll(src string) []lexer.Token {
	l := lexer.New(src)
	var toks []lexer.Token
	for {
		tok := l.ScanToken()
		toks = append(toks, tok)
		if tok.Type == lexer.TokenEOF {
			break
		}
	}
	return toks
}

func types(toks []lexer.Token) []lexer.TokenType {
	out := make([]lexer.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestOperatorsIncludingPowAndIntDivide(t *testing.T) {
	toks := scanAll("a ** b // c += 1 **= 2")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenIdentifier, lexer.TokenStarStar, lexer.TokenIdentifier,
		lexer.TokenSlashSlash, lexer.TokenIdentifier, lexer.TokenPlusEqual,
		lexer.TokenNumber, lexer.TokenStarStarEqual, lexer.TokenNumber, lexer.TokenEOF,
	}, types(toks))
}

func TestStringLiteralStripsQuotes(t *testing.T) {
	toks := scanAll(`"hello world"`)
	assert.Equal(t, "hello world", toks[0].Lexeme)
}

func TestHashLineComment(t *testing.T) {
	toks := scanAll("let x = 1; # trailing comment\nlet y = 2;")
	assert.Equal(t, lexer.TokenLet, toks[0].Type)
	// no TokenError should appear for the comment
	for _, tok := range toks {
		assert.NotEqual(t, lexer.TokenError, tok.Type)
	}
}

func TestKeywords(t *testing.T) {
	toks := scanAll("fn let class this super and or")
	assert.Equal(t, []lexer.TokenType{
		lexer.TokenFn, lexer.TokenLet, lexer.TokenClass, lexer.TokenThis,
		lexer.TokenSuper, lexer.TokenAnd, lexer.TokenOr, lexer.TokenEOF,
	}, types(toks))
}

func TestUnterminatedString(t *testing.T) {
	toks := scanAll(`"no closing quote`)
	assert.Equal(t, lexer.TokenError, toks[0].Type)
	assert.Equal(t, "Unterminated string.", toks[0].Message)
}

func TestNumberLiterals(t *testing.T) {
	toks := scanAll("42 3.14 0.5")
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	assert.Equal(t, "0.5", toks[2].Lexeme)
}
