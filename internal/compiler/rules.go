package compiler

import "github.com/embr-lang/embr/internal/scanner"

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is the Pratt table (spec §4.3's precedence ladder), indexed by
// scanner.TokenType. Grounded on kristofer-smog's pkg/parser precedence
// table and funvibe-funxy's internal/vm rule array, both of which use the
// same prefix/infix/precedence-triple shape.
var rules [maxTokenType]parseRule

// maxTokenType bounds the rules array; bump this if scanner gains tokens.
const maxTokenType = 80

func init() {
	set := func(t scanner.TokenType, prefix, infix parseFn, prec Precedence) {
		rules[t] = parseRule{prefix: prefix, infix: infix, precedence: prec}
	}

	c := (*Compiler)(nil)
	_ = c

	set(scanner.TokenLeftParen, (*Compiler).grouping, (*Compiler).call, PrecCall)
	set(scanner.TokenLeftBracket, (*Compiler).arrayLiteral, (*Compiler).subscript, PrecCall)
	set(scanner.TokenLeftBrace, (*Compiler).dictLiteral, nil, PrecNone)
	set(scanner.TokenDot, nil, (*Compiler).dot, PrecCall)

	set(scanner.TokenMinus, (*Compiler).unary, (*Compiler).binary, PrecTerm)
	set(scanner.TokenPlus, nil, (*Compiler).binary, PrecTerm)
	set(scanner.TokenSlash, nil, (*Compiler).binary, PrecFactor)
	set(scanner.TokenStar, nil, (*Compiler).binary, PrecFactor)
	set(scanner.TokenPercent, nil, (*Compiler).binary, PrecFactor)

	set(scanner.TokenBang, (*Compiler).unary, nil, PrecNone)
	set(scanner.TokenNot, (*Compiler).unary, nil, PrecNone)
	set(scanner.TokenTilde, (*Compiler).unary, nil, PrecNone)

	set(scanner.TokenBangEqual, nil, (*Compiler).binary, PrecEquality)
	set(scanner.TokenEqualEqual, nil, (*Compiler).binary, PrecEquality)
	set(scanner.TokenGreater, nil, (*Compiler).binary, PrecComparison)
	set(scanner.TokenGreaterEqual, nil, (*Compiler).binary, PrecComparison)
	set(scanner.TokenLess, nil, (*Compiler).binary, PrecComparison)
	set(scanner.TokenLessEqual, nil, (*Compiler).binary, PrecComparison)

	set(scanner.TokenAmp, nil, (*Compiler).binary, PrecBitwise)
	set(scanner.TokenPipe, nil, (*Compiler).binary, PrecBitwise)
	set(scanner.TokenCaret, nil, (*Compiler).binary, PrecBitwise)
	set(scanner.TokenLessLess, nil, (*Compiler).binary, PrecBitwise)
	set(scanner.TokenGreaterGreater, nil, (*Compiler).binary, PrecBitwise)

	set(scanner.TokenIdentifier, (*Compiler).variable, nil, PrecNone)
	set(scanner.TokenString, (*Compiler).stringLit, nil, PrecNone)
	set(scanner.TokenNumber, (*Compiler).number, nil, PrecNone)

	set(scanner.TokenAnd, nil, (*Compiler).and_, PrecAnd)
	set(scanner.TokenOr, nil, (*Compiler).or_, PrecOr)
	set(scanner.TokenFalse, (*Compiler).literal, nil, PrecNone)
	set(scanner.TokenTrue, (*Compiler).literal, nil, PrecNone)
	set(scanner.TokenNil, (*Compiler).literal, nil, PrecNone)
	set(scanner.TokenThis, (*Compiler).this_, nil, PrecNone)
	set(scanner.TokenSuper, (*Compiler).super_, nil, PrecNone)
}
