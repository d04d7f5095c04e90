package lexer

import (
	"fmt"

	"github.com/charly-lang/charly/pkg/ast"
)

type Kind string

const (
	Comment      Kind = "COMMENT"
	Keyword      Kind = "KEYWORD"
	Null         Kind = "NULL"
	Numeric      Kind = "NUMERICAL"
	String       Kind = "STRING"
	Boolean      Kind = "BOOLEAN"
	Assignment   Kind = "ASSIGNMENT"
	Operator     Kind = "OPERATOR"
	Comparator   Kind = "COMPARATOR"
	Semicolon    Kind = "TERMINAL"
	Comma        Kind = "COMMA"
	Dot          Kind = "DOT"
	Identifier   Kind = "IDENTIFIER"
	LeftParen    Kind = "LEFT_PAREN"
	RightParen   Kind = "RIGHT_PAREN"
	LeftCurly    Kind = "LEFT_CURLY"
	RightCurly   Kind = "RIGHT_CURLY"
	LeftBracket  Kind = "LEFT_BRACKET"
	RightBracket Kind = "RIGHT_BRACKET"
	Whitespace   Kind = "WHITESPACE"
)

// Token is one classified slice of source text. Text is the raw source,
// including the quotes of string literals.
type Token struct {
	Kind     Kind
	Text     string
	Location ast.Location
}

// Skippable reports whether the parser steps over this token.
func (t Token) Skippable() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

func (t Token) String() string {
	return fmt.Sprintf("(%s) %-13s │%s│", t.Location, t.Kind, t.Text)
}

// endsOperand reports whether a '-' following a token of this kind is a
// binary minus.
func (k Kind) endsOperand() bool {
	switch k {
	case Identifier, Numeric, String, Boolean, Null, RightParen, RightBracket:
		return true
	}
	return false
}
