package ast

import "fmt"

type NodeKind string

const (
	// Structural
	KindProgram   NodeKind = "Program"
	KindBlock     NodeKind = "Block"
	KindStatement NodeKind = "Statement"
	KindTemporary NodeKind = "Temporary"

	// Grammar wrappers removed or regrouped by the optimizer.
	KindExpression     NodeKind = "Expression"
	KindExpressionList NodeKind = "ExpressionList"
	KindArgumentList   NodeKind = "ArgumentList"

	// Expressions
	KindBinaryExpression             NodeKind = "BinaryExpression"
	KindComparisonExpression         NodeKind = "ComparisonExpression"
	KindVariableAssignment           NodeKind = "VariableAssignment"
	KindCallExpression               NodeKind = "CallExpression"
	KindMemberExpression             NodeKind = "MemberExpression"
	KindArrayIndexExpression         NodeKind = "ArrayIndexExpression"
	KindFunctionDefinitionExpression NodeKind = "FunctionDefinitionExpression"
	KindClassDefinition              NodeKind = "ClassDefinition"
	KindArrayIndexWrite              NodeKind = "ArrayIndexWrite"

	// Statements
	KindVariableDeclaration    NodeKind = "VariableDeclaration"
	KindVariableInitialisation NodeKind = "VariableInitialisation"
	KindIfStatement            NodeKind = "IfStatement"
	KindWhileStatement         NodeKind = "WhileStatement"

	// Literals
	KindNumericLiteral    NodeKind = "NumericLiteral"
	KindStringLiteral     NodeKind = "StringLiteral"
	KindBooleanLiteral    NodeKind = "BooleanLiteral"
	KindIdentifierLiteral NodeKind = "IdentifierLiteral"
	KindNullLiteral       NodeKind = "NullLiteral"
	KindKeywordLiteral    NodeKind = "KeywordLiteral"
	KindArrayLiteral      NodeKind = "ArrayLiteral"
	KindFunctionLiteral   NodeKind = "FunctionLiteral"
	KindClassLiteral      NodeKind = "ClassLiteral"

	// Terminals
	KindOperator     NodeKind = "Operator"
	KindComparator   NodeKind = "Comparator"
	KindAssignment   NodeKind = "Assignment"
	KindLeftParen    NodeKind = "LeftParen"
	KindRightParen   NodeKind = "RightParen"
	KindLeftCurly    NodeKind = "LeftCurly"
	KindRightCurly   NodeKind = "RightCurly"
	KindLeftBracket  NodeKind = "LeftBracket"
	KindRightBracket NodeKind = "RightBracket"
	KindSemicolon    NodeKind = "Semicolon"
	KindComma        NodeKind = "Comma"
	KindDot          NodeKind = "Dot"
)

// IsTerminal reports whether nodes of this kind stand for a single
// punctuation, operator or keyword token.
func (k NodeKind) IsTerminal() bool {
	switch k {
	case KindKeywordLiteral, KindOperator, KindComparator, KindAssignment,
		KindLeftParen, KindRightParen, KindLeftCurly, KindRightCurly,
		KindLeftBracket, KindRightBracket, KindSemicolon, KindComma, KindDot:
		return true
	}
	return false
}

// IsLiteral reports whether nodes of this kind carry a value straight from
// the source text.
func (k NodeKind) IsLiteral() bool {
	switch k {
	case KindNumericLiteral, KindStringLiteral, KindBooleanLiteral,
		KindIdentifierLiteral, KindNullLiteral:
		return true
	}
	return false
}

type NodeID int32

const NoNode NodeID = -1

// Location identifies the line of a file a node or token came from.
type Location struct {
	Filename string `yaml:"file,omitempty"`
	Line     int    `yaml:"line"`
}

func (l Location) String() string {
	if l.Filename == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.Filename, l.Line)
}

// File is a unit of source text handed to the parser. Directory is used to
// resolve relative require/load targets; Path is the absolute path used as
// the module cache key.
type File struct {
	Content   string
	Filename  string
	Directory string
	Path      string
	Virtual   bool
}

// Node is one arena slot of a Program. Text holds the raw token text for
// terminals and literals (unquoted for strings); Number holds the coerced
// value of numeric literals once Coerced is set.
type Node struct {
	Kind     NodeKind
	Parent   NodeID
	Children []NodeID
	Text     string
	Number   float64
	Coerced  bool
	Location Location
}
