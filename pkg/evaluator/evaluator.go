package evaluator

import (
	sterrors "errors"
	"strconv"

	"github.com/oarkflow/lumen/pkg/ast"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/symbols"
	"github.com/oarkflow/lumen/pkg/token"
	"github.com/oarkflow/lumen/pkg/value"
)

// Evaluate reduces a bound tree to a value. Assignments and bare declarations
// write to table and produce value.NoValue. Arithmetic is done on 32-bit
// integers and wraps on overflow.
func Evaluate(root *ast.Expr, table symbols.Table) (value.Value, error) {
	return eval(root, table)
}

func eval(e *ast.Expr, table symbols.Table) (value.Value, error) {
	if e == nil {
		return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedExpression, "cannot evaluate an undefined expression")
	}
	switch e.Kind {
	case ast.IntegerLiteral:
		i, err := strconv.ParseInt(e.Literal, 10, 32)
		if err != nil {
			return value.NoValue, diagnostics.Wrap(diagnostics.ErrCodeIntegerRange, err,
				"integer literal %s does not fit in 32 bits", e.Literal).At(e.Line, e.Column)
		}
		return value.FromInt(i), nil
	case ast.NumberLiteral:
		f, err := strconv.ParseFloat(e.Literal, 64)
		if err != nil {
			return value.NoValue, diagnostics.Wrap(diagnostics.ErrCodeIntegerRange, err,
				"invalid number literal %s", e.Literal).At(e.Line, e.Column)
		}
		return value.FromNumber(f), nil
	case ast.BooleanLiteral:
		return value.FromBool(e.Op == token.TRUE), nil
	case ast.NilLiteral:
		return value.NilValue, nil
	case ast.WordLiteral, ast.VariableLiteral:
		return resolve(e, table)
	case ast.DeclarationLiteral:
		if e.Literal == "" {
			break
		}
		table.Set(e.Literal, zero(e.Return))
		return value.NoValue, nil
	case ast.UnaryExpression:
		return unary(e, table)
	case ast.BinaryExpression:
		return binary(e, table)
	case ast.AssignmentExpression:
		return assign(e, table)
	}
	return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedExpression,
		"cannot evaluate an undefined expression (%s)", e.Kind).At(e.Line, e.Column)
}

func resolve(e *ast.Expr, table symbols.Table) (value.Value, error) {
	v, ok := table.Get(e.Literal)
	if !ok {
		return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedVariable,
			"undefined variable %s", e.Literal).At(e.Line, e.Column)
	}
	return v, nil
}

func zero(kind ast.ReturnKind) value.Value {
	switch kind {
	case ast.ReturnBoolean:
		return value.FromBool(false)
	case ast.ReturnNumber:
		return value.FromNumber(0)
	case ast.ReturnWord:
		return value.FromText("")
	}
	return value.FromInt(0)
}

func integer(e *ast.Expr, table symbols.Table) (int32, error) {
	v, err := eval(e, table)
	if err != nil {
		return 0, err
	}
	n, err := v.AsInt32()
	if err != nil {
		code := diagnostics.ErrCodeTypeMismatch
		if sterrors.Is(err, value.ErrIntegerRange) {
			code = diagnostics.ErrCodeIntegerRange
		}
		return 0, diagnostics.Wrap(code, err, "%s is %s %s", e, v.Kind, v).At(e.Line, e.Column)
	}
	return n, nil
}

func unary(e *ast.Expr, table symbols.Table) (value.Value, error) {
	n, err := integer(e.Left, table)
	if err != nil {
		return value.NoValue, err
	}
	switch e.Op {
	case token.INCREMENT:
		n++
	case token.DECREMENT:
		n--
	case token.ADDITION:
	case token.SUBTRACTION:
		n = -n
	case token.BITWISE_NOT:
		n = ^n
	default:
		return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedExpression,
			"cannot evaluate unary %s", e.Op).At(e.Line, e.Column)
	}
	return value.FromInt(int64(n)), nil
}

func binary(e *ast.Expr, table symbols.Table) (value.Value, error) {
	a, err := integer(e.Left, table)
	if err != nil {
		return value.NoValue, err
	}
	b, err := integer(e.Right, table)
	if err != nil {
		return value.NoValue, err
	}
	var n int32
	switch e.Op {
	case token.ADDITION:
		n = a + b
	case token.SUBTRACTION:
		n = a - b
	case token.STAR:
		n = a * b
	case token.DIVISION, token.MODULUS, token.REM:
		if b == 0 {
			return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeDivisionByZero,
				"division by zero in %s", e).At(e.Line, e.Column)
		}
		switch e.Op {
		case token.DIVISION:
			n = a / b
		case token.REM:
			n = a % b
		default:
			n = floorMod(a, b)
		}
	case token.BITWISE_AND:
		n = a & b
	case token.BITWISE_OR:
		n = a | b
	case token.BITWISE_XOR:
		n = a ^ b
	case token.SHIFT_LEFT, token.SHIFT_RIGHT:
		if b < 0 {
			return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeTypeMismatch,
				"negative shift count %d", b).At(e.Line, e.Column)
		}
		if e.Op == token.SHIFT_LEFT {
			n = a << uint32(b)
		} else {
			n = a >> uint32(b)
		}
	case token.EXPONENTIAL:
		n, err = power(a, b)
		if err != nil {
			return value.NoValue, diagnostics.Wrap(diagnostics.ErrCodeDivisionByZero, err,
				"cannot raise 0 to a negative power").At(e.Line, e.Column)
		}
	default:
		return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedExpression,
			"cannot evaluate binary %s", e.Op).At(e.Line, e.Column)
	}
	if e.Return == ast.ReturnBoolean {
		return value.FromBool(n != 0), nil
	}
	return value.FromInt(int64(n)), nil
}

// floorMod takes the sign of the divisor, unlike Go's %.
func floorMod(a, b int32) int32 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func power(base, exp int32) (int32, error) {
	if exp < 0 {
		switch base {
		case 0:
			return 0, errNegativePower
		case 1:
			return 1, nil
		case -1:
			if exp%2 == 0 {
				return 1, nil
			}
			return -1, nil
		}
		return 0, nil
	}
	result := int32(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result, nil
}

func assign(e *ast.Expr, table symbols.Table) (value.Value, error) {
	if e.Left == nil || e.Left.Literal == "" {
		return value.NoValue, diagnostics.Errorf(diagnostics.ErrCodeUndefinedExpression,
			"assignment has no target").At(e.Line, e.Column)
	}
	v, err := eval(e.Right, table)
	if err != nil {
		return value.NoValue, err
	}
	table.Set(e.Left.Literal, coerce(v, e.Left.Return))
	return value.NoValue, nil
}

// coerce stores v in the representation of the declared kind.
func coerce(v value.Value, kind ast.ReturnKind) value.Value {
	switch kind {
	case ast.ReturnBoolean:
		if n, err := v.AsInt32(); err == nil && v.Kind != value.Bool {
			return value.FromBool(n != 0)
		}
	case ast.ReturnInteger:
		if v.Kind == value.Bool {
			n, _ := v.AsInt32()
			return value.FromInt(int64(n))
		}
	case ast.ReturnNumber:
		if v.Kind == value.Int {
			return value.FromNumber(float64(v.Int))
		}
	}
	return v
}
