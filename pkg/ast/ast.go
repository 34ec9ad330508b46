package ast

import (
	"fmt"
	"strings"

	"github.com/oarkflow/lumen/pkg/token"
)

type ExprKind int

const (
	NumberLiteral ExprKind = iota
	IntegerLiteral
	BooleanLiteral
	NilLiteral
	WordLiteral
	VariableLiteral
	DeclarationLiteral
	UnaryExpression
	BinaryExpression
	AssignmentExpression
)

var exprKindNames = [...]string{
	NumberLiteral:        "number literal",
	IntegerLiteral:       "integer literal",
	BooleanLiteral:       "boolean literal",
	NilLiteral:           "nil literal",
	WordLiteral:          "word literal",
	VariableLiteral:      "variable literal",
	DeclarationLiteral:   "declaration",
	UnaryExpression:      "unary expression",
	BinaryExpression:     "binary expression",
	AssignmentExpression: "assignment",
}

func (k ExprKind) String() string {
	if k >= 0 && int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return fmt.Sprintf("ExprKind(%d)", int(k))
}

// IsLiteral reports whether nodes of kind k are leaves.
func (k ExprKind) IsLiteral() bool {
	return k <= DeclarationLiteral
}

// ReturnKind is the type the binder infers for a node.
type ReturnKind int

const (
	ReturnNone ReturnKind = iota
	ReturnBoolean
	ReturnInteger
	ReturnNumber
	ReturnWord
	ReturnNil
)

func (r ReturnKind) String() string {
	switch r {
	case ReturnNone:
		return "none"
	case ReturnBoolean:
		return "boolean"
	case ReturnInteger:
		return "integer"
	case ReturnNumber:
		return "number"
	case ReturnWord:
		return "word"
	case ReturnNil:
		return "nil"
	}
	return fmt.Sprintf("ReturnKind(%d)", int(r))
}

// Expr is the node shared by the parser, binder and evaluator. Op holds the
// operator token for expressions and the literal's token kind for leaves; for
// a declaration it is the type keyword. Literal holds the payload: digits for
// numbers, the identifier for words and named declarations.
type Expr struct {
	Kind    ExprKind
	Op      token.Kind
	Return  ReturnKind
	Bound   bool
	Literal string
	Left    *Expr
	Right   *Expr
	Line    int
	Column  int
}

func NewLiteral(kind ExprKind, tok token.Token) *Expr {
	return &Expr{Kind: kind, Op: tok.Kind, Literal: tok.Literal, Line: tok.Line, Column: tok.Column}
}

func NewOperator(kind ExprKind, tok token.Token) *Expr {
	return &Expr{Kind: kind, Op: tok.Kind, Line: tok.Line, Column: tok.Column}
}

// IsPlaceholder reports whether e is an operator not yet given operands.
func (e *Expr) IsPlaceholder() bool {
	return !e.Kind.IsLiteral() && !e.Bound
}

// IsScope reports whether e marks an open parenthesis on the operator stack.
func (e *Expr) IsScope() bool {
	return e.Kind == BinaryExpression && e.Op == token.LPAREN
}

// String renders e fully parenthesised, which is what tests compare against.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	switch e.Kind {
	case DeclarationLiteral:
		sb.WriteString(e.Op.String())
		if e.Literal != "" {
			sb.WriteByte(' ')
			sb.WriteString(e.Literal)
		}
	case NilLiteral:
		sb.WriteString("nil")
	case UnaryExpression:
		sb.WriteByte('(')
		sb.WriteString(e.Op.String())
		if e.Left != nil {
			e.Left.write(sb)
		}
		sb.WriteByte(')')
	case BinaryExpression, AssignmentExpression:
		sb.WriteByte('(')
		if e.Left != nil {
			e.Left.write(sb)
		}
		sb.WriteByte(' ')
		sb.WriteString(e.Op.String())
		sb.WriteByte(' ')
		if e.Right != nil {
			e.Right.write(sb)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(e.Literal)
	}
}
