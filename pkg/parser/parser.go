package parser

import (
	sterrors "errors"

	"github.com/oarkflow/lumen/pkg/ast"
	"github.com/oarkflow/lumen/pkg/binder"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/token"
)

// DefaultStackCapacity bounds each of the parser's working stacks.
const DefaultStackCapacity = 256

// prefix operators outrank every binary operator
const unaryPrecedence = 10

type Option func(*Parser)

// WithStackCapacity bounds the operator, operand and declaration stacks;
// capacity <= 0 leaves them unbounded.
func WithStackCapacity(capacity int) Option {
	return func(p *Parser) {
		p.capacity = capacity
	}
}

// WithScope supplies identifiers declared before this input.
func WithScope(scope binder.Scope) Option {
	return func(p *Parser) {
		p.scope = scope
	}
}

func WithSink(sink *diagnostics.Sink) Option {
	return func(p *Parser) {
		p.sink = sink
	}
}

// Parser turns a token stream into bound expression trees with three stacks:
// pending operators, bound operands and declarations waiting for a name.
type Parser struct {
	stream       *token.Stream
	sink         *diagnostics.Sink
	scope        binder.Scope
	declared     *binder.Declarations
	binder       *binder.Binder
	capacity     int
	symbols      *ast.Stack[*ast.Expr]
	nodes        *ast.Stack[*ast.Expr]
	declarations *ast.Stack[*ast.Expr]

	afterOperator bool
	pending       bool
	// first token of the pending statement and the sink size when it began
	first token.Token
	mark  int
}

func New(stream *token.Stream, opts ...Option) *Parser {
	p := &Parser{
		stream:   stream,
		capacity: DefaultStackCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = diagnostics.NewSink()
	}
	p.declared = binder.NewDeclarations(p.scope)
	p.binder = binder.New(p.sink, p.declared)
	p.symbols = ast.NewStack[*ast.Expr](p.capacity)
	p.nodes = ast.NewStack[*ast.Expr](p.capacity)
	p.declarations = ast.NewStack[*ast.Expr](p.capacity)
	return p
}

func (p *Parser) Diagnostics() *diagnostics.Sink {
	return p.sink
}

// Declarations holds the identifiers this input declared.
func (p *Parser) Declarations() *binder.Declarations {
	return p.declared
}

// Parse consumes the whole stream. The roots are returned only when no
// diagnostic was reported; otherwise the error carries every diagnostic.
func (p *Parser) Parse() ([]*ast.Expr, error) {
	var roots []*ast.Expr
	for {
		root, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if root == nil {
			break
		}
		roots = append(roots, root)
	}
	if err := p.sink.Err(); err != nil {
		return nil, err
	}
	return roots, nil
}

// ParseStatement returns the root of the next statement, or nil once the
// stream is exhausted. End of input terminates a final statement that lacks
// its ';'.
func (p *Parser) ParseStatement() (*ast.Expr, error) {
	for {
		tok, ok := p.stream.Next()
		if !ok {
			tok = token.Token{Kind: token.EOF}
		}
		switch {
		case tok.Kind == token.EOF:
			if !p.pending {
				return nil, nil
			}
			return p.finishStatement()
		case tok.Kind == token.EOE:
			root, err := p.finishStatement()
			if err != nil || root != nil {
				return root, err
			}
			continue
		case tok.Kind.IsWhitespace():
			continue
		}
		if !p.pending {
			p.first = tok
			p.mark = p.sink.Len()
		}
		p.pending = true
		if err := p.dispatch(tok); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) dispatch(tok token.Token) error {
	switch {
	case tok.Kind == token.LPAREN:
		p.afterOperator = true
		return p.pushSymbol(ast.NewOperator(ast.BinaryExpression, tok))
	case tok.Kind == token.RPAREN:
		p.afterOperator = false
		return p.closeScope(tok)
	case tok.Kind == token.EQUAL:
		p.afterOperator = true
		return p.pushSymbol(ast.NewOperator(ast.AssignmentExpression, tok))
	case tok.Kind.IsTypeKeyword():
		decl := ast.NewOperator(ast.DeclarationLiteral, tok)
		if _, err := p.binder.BindDeclaration(decl); err != nil {
			return err
		}
		return p.push(p.declarations, "declaration", decl)
	case tok.Kind == token.WORD:
		return p.word(tok)
	case tok.Kind == token.NIL:
		return p.literal(ast.NilLiteral, tok)
	case tok.Kind == token.TRUE, tok.Kind == token.FALSE:
		return p.literal(ast.BooleanLiteral, tok)
	case tok.Kind == token.NUMBER:
		return p.literal(ast.IntegerLiteral, tok)
	case tok.Kind == token.DECIMAL:
		return p.literal(ast.NumberLiteral, tok)
	case tok.Kind.IsOperator():
		return p.operator(tok)
	}
	return diagnostics.Errorf(diagnostics.ErrCodeUnsupportedToken,
		"unsupported token %s %q", tok.Kind, tok.Literal).At(tok.Line, tok.Column)
}

func (p *Parser) word(tok token.Token) error {
	if decl, ok := p.declarations.Pop(); ok {
		decl.Literal = tok.Literal
		p.declared.Declare(decl.Literal, decl.Return)
		p.afterOperator = false
		return p.pushNode(decl)
	}
	return p.literal(ast.WordLiteral, tok)
}

func (p *Parser) literal(kind ast.ExprKind, tok token.Token) error {
	node := ast.NewLiteral(kind, tok)
	if _, err := p.binder.Bind(node); err != nil {
		return err
	}
	p.afterOperator = false
	return p.pushOperand(node)
}

// pushOperand hands operand to any prefix operators waiting on top of the
// operator stack before pushing the result.
func (p *Parser) pushOperand(operand *ast.Expr) error {
	for {
		top, ok := p.symbols.Peek()
		if !ok || top.Kind != ast.UnaryExpression || !top.IsPlaceholder() {
			break
		}
		p.symbols.Pop()
		top.Left = operand
		if _, err := p.binder.BindUnary(top); err != nil {
			return err
		}
		operand = top
	}
	return p.pushNode(operand)
}

func (p *Parser) operator(tok token.Token) error {
	_, hasSymbol := p.symbols.Peek()
	_, hasNode := p.nodes.Peek()

	// Without an operand the operator must be prefix. With only an operand it
	// is infix. With both, it is prefix only when it directly follows another
	// operator.
	unary := !hasNode || (hasSymbol && p.afterOperator)
	if unary {
		p.afterOperator = true
		return p.pushSymbol(ast.NewOperator(ast.UnaryExpression, tok))
	}

	switch tok.Kind {
	case token.INCREMENT, token.DECREMENT, token.BITWISE_NOT:
		p.sink.AddAt(tok.Line, tok.Column, "%s cannot follow an operand", tok.Kind)
		return nil
	}

	incoming := token.Precedence(tok.Kind)
	for {
		top, ok := p.symbols.Peek()
		if !ok || top.IsScope() || top.Kind == ast.AssignmentExpression {
			break
		}
		current := p.precedence(top)
		if current < incoming || (current == incoming && token.RightAssociative(tok.Kind)) {
			break
		}
		p.symbols.Pop()
		if err := p.reduce(top); err != nil {
			return err
		}
	}
	p.afterOperator = true
	return p.pushSymbol(ast.NewOperator(ast.BinaryExpression, tok))
}

func (p *Parser) precedence(e *ast.Expr) int {
	if e.Kind == ast.UnaryExpression {
		return unaryPrecedence
	}
	return token.Precedence(e.Op)
}

// reduce gives op its operands from the node stack, binds it and pushes the result.
func (p *Parser) reduce(op *ast.Expr) error {
	if op.Kind == ast.UnaryExpression {
		op.Left, _ = p.nodes.Pop()
	} else {
		op.Right, _ = p.nodes.Pop()
		op.Left, _ = p.nodes.Pop()
	}
	bound, err := p.binder.Bind(op)
	if err != nil {
		return err
	}
	return p.pushNode(bound)
}

func (p *Parser) closeScope(tok token.Token) error {
	for {
		top, ok := p.symbols.Pop()
		if !ok {
			p.sink.AddAt(tok.Line, tok.Column, "unbalanced %s", tok.Kind)
			return nil
		}
		if top.IsScope() {
			return nil
		}
		if err := p.reduce(top); err != nil {
			return err
		}
	}
}

// finishStatement reduces everything pending and pops the statement root.
func (p *Parser) finishStatement() (*ast.Expr, error) {
	pending := p.pending
	p.pending = false
	p.afterOperator = false
	for {
		top, ok := p.symbols.Pop()
		if !ok {
			break
		}
		if top.IsScope() {
			p.sink.AddAt(top.Line, top.Column, "unclosed %s", token.LPAREN)
			continue
		}
		if err := p.reduce(top); err != nil {
			return nil, err
		}
	}
	for {
		decl, ok := p.declarations.Pop()
		if !ok {
			break
		}
		p.sink.AddAt(decl.Line, decl.Column, "%s declaration is missing an identifier", decl.Op)
	}
	root, ok := p.nodes.Pop()
	if !ok {
		if pending && p.sink.Len() == p.mark {
			p.sink.AddAt(p.first.Line, p.first.Column, "empty expression")
		}
		return nil, nil
	}
	if !p.nodes.Empty() {
		extra, _ := p.nodes.Peek()
		p.sink.AddAt(extra.Line, extra.Column, "unexpected %s before %s", extra.Kind, root.Kind)
		p.nodes.Clear()
	}
	return root, nil
}

func (p *Parser) pushSymbol(e *ast.Expr) error {
	return p.push(p.symbols, "operator", e)
}

func (p *Parser) pushNode(e *ast.Expr) error {
	return p.push(p.nodes, "operand", e)
}

func (p *Parser) push(stack *ast.Stack[*ast.Expr], name string, e *ast.Expr) error {
	if err := stack.Push(e); err != nil {
		if sterrors.Is(err, ast.ErrStackOverflow) {
			return diagnostics.Wrap(diagnostics.ErrCodeStackOverflow, err,
				"%s stack exceeded %d entries", name, p.capacity).At(e.Line, e.Column)
		}
		return err
	}
	return nil
}
