package binder

import (
	"github.com/oarkflow/lumen/pkg/ast"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/token"
)

// Binder validates nodes and infers their return kinds in place. Type errors
// are reported to the sink and leave the node unbound in kind; only the cases
// no well-formed input can reach are returned as errors.
type Binder struct {
	sink  *diagnostics.Sink
	scope Scope
}

func New(sink *diagnostics.Sink, scope Scope) *Binder {
	if sink == nil {
		sink = diagnostics.NewSink()
	}
	return &Binder{sink: sink, scope: scope}
}

func (b *Binder) Sink() *diagnostics.Sink {
	return b.sink
}

func (b *Binder) Bind(e *ast.Expr) (*ast.Expr, error) {
	switch e.Kind {
	case ast.BinaryExpression:
		return b.BindBinary(e)
	case ast.UnaryExpression:
		return b.BindUnary(e)
	case ast.AssignmentExpression:
		return b.BindAssignment(e)
	case ast.BooleanLiteral:
		return b.BindBoolean(e)
	case ast.IntegerLiteral:
		return b.BindInteger(e)
	case ast.NumberLiteral:
		return b.BindNumber(e)
	case ast.NilLiteral:
		return b.BindNil(e)
	case ast.WordLiteral, ast.VariableLiteral:
		return b.BindWord(e)
	case ast.DeclarationLiteral:
		return b.BindDeclaration(e)
	}
	return e, diagnostics.Errorf(diagnostics.ErrCodeMalformedNode, "cannot bind %s", e.Kind).At(e.Line, e.Column)
}

func isOperand(kind ast.ReturnKind) bool {
	switch kind {
	case ast.ReturnBoolean, ast.ReturnInteger, ast.ReturnNumber, ast.ReturnWord:
		return true
	}
	return false
}

// failed reports whether e already produced a diagnostic, so that parents do
// not repeat it.
func failed(e *ast.Expr) bool {
	return !e.Kind.IsLiteral() && e.Return == ast.ReturnNone
}

func (b *Binder) BindBinary(e *ast.Expr) (*ast.Expr, error) {
	e.Bound = true
	ok := true
	for _, child := range []*ast.Expr{e.Left, e.Right} {
		switch {
		case child == nil:
			b.sink.AddAt(e.Line, e.Column, "cannot perform %s: missing operand", e.Op)
			ok = false
		case failed(child):
			ok = false
		case !isOperand(child.Return):
			b.sink.AddAt(child.Line, child.Column, "cannot perform %s on %s", e.Op, child.Return)
			ok = false
		}
	}
	if !ok {
		return e, nil
	}
	l, r := e.Left.Return, e.Right.Return
	switch {
	case l == ast.ReturnBoolean && r == ast.ReturnBoolean:
		e.Return = ast.ReturnBoolean
	case l == ast.ReturnInteger && r == ast.ReturnInteger:
		e.Return = ast.ReturnInteger
	case l == ast.ReturnInteger && r == ast.ReturnBoolean, l == ast.ReturnBoolean && r == ast.ReturnInteger:
		e.Return = ast.ReturnInteger
	default:
		return e, diagnostics.Errorf(diagnostics.ErrCodeUnknownReturnType,
			"could not determine return type of %s %s %s", l, e.Op, r).At(e.Line, e.Column)
	}
	return e, nil
}

func (b *Binder) BindUnary(e *ast.Expr) (*ast.Expr, error) {
	e.Bound = true
	if e.Right != nil {
		return e, diagnostics.Errorf(diagnostics.ErrCodeMalformedNode, "unary %s has a right operand", e.Op).At(e.Line, e.Column)
	}
	if e.Left == nil {
		b.sink.AddAt(e.Line, e.Column, "unary %s is missing its operand", e.Op)
		return e, nil
	}
	if failed(e.Left) {
		return e, nil
	}
	if e.Left.Return != ast.ReturnBoolean && e.Left.Return != ast.ReturnInteger {
		b.sink.AddAt(e.Left.Line, e.Left.Column, "cannot apply unary %s to %s", e.Op, e.Left.Return)
		return e, nil
	}
	switch e.Op {
	case token.DECREMENT, token.INCREMENT, token.SUBTRACTION, token.ADDITION, token.BITWISE_NOT:
		e.Return = ast.ReturnInteger
		return e, nil
	}
	return e, diagnostics.Errorf(diagnostics.ErrCodeUnknownReturnType,
		"could not determine return of unary expression %s", e.Op).At(e.Line, e.Column)
}

func assignable(kind ast.ExprKind) bool {
	switch kind {
	case ast.BooleanLiteral, ast.BinaryExpression, ast.NumberLiteral, ast.IntegerLiteral,
		ast.UnaryExpression, ast.WordLiteral, ast.VariableLiteral:
		return true
	}
	return false
}

func (b *Binder) BindAssignment(e *ast.Expr) (*ast.Expr, error) {
	e.Bound = true
	ok := true
	if e.Left == nil || e.Left.Kind != ast.DeclarationLiteral {
		what := "nothing"
		if e.Left != nil {
			what = e.Left.Kind.String()
		}
		b.sink.AddAt(e.Line, e.Column, "left side of assignment must be a declaration, got %s", what)
		ok = false
	}
	switch {
	case e.Right == nil:
		b.sink.AddAt(e.Line, e.Column, "assignment is missing a value")
		ok = false
	case !assignable(e.Right.Kind):
		b.sink.AddAt(e.Right.Line, e.Right.Column, "cannot assign %s", e.Right.Kind)
		ok = false
	case failed(e.Right):
		ok = false
	}
	if !ok {
		return e, nil
	}
	if e.Left.Return != e.Right.Return {
		b.sink.AddAt(e.Right.Line, e.Right.Column, "cannot assign %s to %s %s",
			e.Right.Return, e.Left.Op, e.Left.Literal)
		return e, nil
	}
	e.Return = e.Left.Return
	return e, nil
}

func (b *Binder) leaf(e *ast.Expr, kind ast.ReturnKind) (*ast.Expr, error) {
	if e.Left != nil || e.Right != nil {
		return e, diagnostics.Errorf(diagnostics.ErrCodeMalformedNode, "%s must not have operands", e.Kind).At(e.Line, e.Column)
	}
	e.Return = kind
	e.Bound = true
	return e, nil
}

func (b *Binder) BindBoolean(e *ast.Expr) (*ast.Expr, error) {
	return b.leaf(e, ast.ReturnBoolean)
}

func (b *Binder) BindInteger(e *ast.Expr) (*ast.Expr, error) {
	return b.leaf(e, ast.ReturnInteger)
}

func (b *Binder) BindNumber(e *ast.Expr) (*ast.Expr, error) {
	return b.leaf(e, ast.ReturnNumber)
}

func (b *Binder) BindNil(e *ast.Expr) (*ast.Expr, error) {
	return b.leaf(e, ast.ReturnNil)
}

// BindWord resolves an identifier. Declared names become variables of their
// declared kind; anything else is read as a 32-bit integer at evaluation.
func (b *Binder) BindWord(e *ast.Expr) (*ast.Expr, error) {
	kind := ast.ReturnInteger
	e.Kind = ast.WordLiteral
	if b.scope != nil {
		if declared, ok := b.scope.Declared(e.Literal); ok {
			kind = declared
			e.Kind = ast.VariableLiteral
		}
	}
	return b.leaf(e, kind)
}

// TypeReturn maps a type keyword to the kind its declarations hold.
func TypeReturn(k token.Kind) (ast.ReturnKind, bool) {
	switch k {
	case token.BOOLEAN:
		return ast.ReturnBoolean, true
	case token.BYTE, token.INT, token.LONG, token.SHORT:
		return ast.ReturnInteger, true
	case token.DOUBLE, token.FLOAT, token.NUMBER_TYPE:
		return ast.ReturnNumber, true
	case token.CHAR, token.STRING:
		return ast.ReturnWord, true
	}
	return ast.ReturnNone, false
}

func (b *Binder) BindDeclaration(e *ast.Expr) (*ast.Expr, error) {
	kind, ok := TypeReturn(e.Op)
	if !ok {
		return e, diagnostics.Errorf(diagnostics.ErrCodeUnknownReturnType, "unrecognized return type %s", e.Op).At(e.Line, e.Column)
	}
	return b.leaf(e, kind)
}
