package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanToken_Punctuation(t *testing.T) {
	src := "(){}[],.;:@"
	want := []TokenType{
		TokenLeftParen, TokenRightParen,
		TokenLeftBrace, TokenRightBrace,
		TokenLeftBracket, TokenRightBracket,
		TokenComma, TokenDot, TokenSemicolon, TokenColon, TokenAt,
		TokenEOF,
	}
	s := New(src)
	for i, tt := range want {
		tok := s.ScanToken()
		require.Equalf(t, tt, tok.Type, "token %d", i)
	}
}

func TestScanToken_TwoCharOperators(t *testing.T) {
	src := "== != <= >= << >>"
	want := []TokenType{
		TokenEqualEqual, TokenBangEqual, TokenLessEqual, TokenGreaterEqual,
		TokenLessLess, TokenGreaterGreater, TokenEOF,
	}
	s := New(src)
	for i, tt := range want {
		tok := s.ScanToken()
		require.Equalf(t, tt, tok.Type, "token %d", i)
	}
}

func TestScanToken_KeywordsVsIdentifiers(t *testing.T) {
	s := New("fn class var super this foobar")
	require.Equal(t, TokenFn, s.ScanToken().Type)
	require.Equal(t, TokenClass, s.ScanToken().Type)
	require.Equal(t, TokenVar, s.ScanToken().Type)
	require.Equal(t, TokenSuper, s.ScanToken().Type)
	require.Equal(t, TokenThis, s.ScanToken().Type)
	tok := s.ScanToken()
	require.Equal(t, TokenIdentifier, tok.Type)
	require.Equal(t, "foobar", tok.Lexeme)
}

func TestScanToken_Number(t *testing.T) {
	s := New("123 1.5 1.")
	tok := s.ScanToken()
	require.Equal(t, TokenNumber, tok.Type)
	require.Equal(t, "123", tok.Lexeme)

	tok = s.ScanToken()
	require.Equal(t, TokenNumber, tok.Type)
	require.Equal(t, "1.5", tok.Lexeme)

	// "1." has no digit after the dot, so the dot is not consumed as part
	// of the number (spec §4.1).
	tok = s.ScanToken()
	require.Equal(t, TokenNumber, tok.Type)
	require.Equal(t, "1", tok.Lexeme)
	tok = s.ScanToken()
	require.Equal(t, TokenDot, tok.Type)
}

func TestScanToken_StringNoEscapes(t *testing.T) {
	s := New(`"hello\nworld"`)
	tok := s.ScanToken()
	require.Equal(t, TokenString, tok.Type)
	require.Equal(t, `"hello\nworld"`, tok.Lexeme)
}

func TestScanToken_UnterminatedString(t *testing.T) {
	s := New(`"oops`)
	tok := s.ScanToken()
	require.Equal(t, TokenError, tok.Type)
}

func TestScanToken_LineCommentsAndWhitespaceSkipped(t *testing.T) {
	s := New("1 // a comment\n+ 2")
	require.Equal(t, TokenNumber, s.ScanToken().Type)
	plus := s.ScanToken()
	require.Equal(t, TokenPlus, plus.Type)
	require.Equal(t, 2, plus.Line)
}

func TestScanToken_SlashIsNotAComment(t *testing.T) {
	s := New("1 / 2")
	require.Equal(t, TokenNumber, s.ScanToken().Type)
	require.Equal(t, TokenSlash, s.ScanToken().Type)
	require.Equal(t, TokenNumber, s.ScanToken().Type)
}

func TestScanToken_UnexpectedCharacter(t *testing.T) {
	s := New("$")
	tok := s.ScanToken()
	require.Equal(t, TokenError, tok.Type)
}
