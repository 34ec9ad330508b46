package lexer

import (
	"github.com/oarkflow/lumen/pkg/token"
)

type class uint8

const (
	classNone class = iota
	classSpace
	classDigit
	classAlpha
	classSymbol
)

// handler lexes a symbol that needs lookahead. emit is false for input that
// produces no token, such as comments.
type handler func(l *Lexer) (tok token.Token, emit bool, err error)

var (
	classes    [128]class
	whitespace [128]token.Kind
	singles    [128]token.Kind
	handlers   [128]handler
)

func init() {
	for ch := 0; ch < 128; ch++ {
		c := byte(ch)
		switch {
		case isDigit(c):
			classes[ch] = classDigit
		case isLetter(c):
			classes[ch] = classAlpha
		case c > ' ' && c < 127:
			classes[ch] = classSymbol
		}
	}
	for _, c := range []byte{' ', '\t', '\n', '\r', '\v', '\f'} {
		classes[c] = classSpace
		whitespace[c] = token.SPACE
	}
	whitespace['\t'] = token.TAB
	whitespace['\n'] = token.EOL

	singles[';'] = token.EOE
	singles['<'] = token.LESS
	singles['>'] = token.GREATER
	singles['{'] = token.LBRACE
	singles['}'] = token.RBRACE
	singles['('] = token.LPAREN
	singles[')'] = token.RPAREN
	singles['['] = token.LBRACKET
	singles[']'] = token.RBRACKET
	singles['@'] = token.AT
	singles[','] = token.COMMA
	singles[':'] = token.COLON
	singles['%'] = token.MODULUS
	singles['#'] = token.REM
	singles['='] = token.EQUAL
	singles['*'] = token.STAR
	singles['/'] = token.DIVISION
	singles['+'] = token.ADDITION
	singles['-'] = token.SUBTRACTION
	singles['&'] = token.BITWISE_AND
	singles['|'] = token.BITWISE_OR
	singles['^'] = token.BITWISE_XOR
	singles['~'] = token.BITWISE_NOT

	handlers['"'] = lexText
	handlers['\''] = lexText
	handlers['='] = lexEqual
	handlers['/'] = lexSlash
	handlers['+'] = doubled('+', token.INCREMENT, token.ADDITION)
	handlers['-'] = doubled('-', token.DECREMENT, token.SUBTRACTION)
	handlers['*'] = doubled('*', token.EXPONENTIAL, token.STAR)
	handlers['|'] = doubled('|', token.COND_OR, token.BITWISE_OR)
	handlers['&'] = doubled('&', token.COND_AND, token.BITWISE_AND)
	handlers['<'] = doubled('<', token.SHIFT_LEFT, token.LESS)
	handlers['>'] = doubled('>', token.SHIFT_RIGHT, token.GREATER)
}

// doubled builds a handler for operators whose digraph repeats the first character.
func doubled(second byte, pair, one token.Kind) handler {
	return func(l *Lexer) (token.Token, bool, error) {
		if l.peekChar() == second {
			return l.span(pair, 2), true, nil
		}
		return l.single(one), true, nil
	}
}

func lexEqual(l *Lexer) (token.Token, bool, error) {
	switch l.peekChar() {
	case '>':
		return l.span(token.LAMBDA, 2), true, nil
	case '=':
		return l.span(token.COND_EQUALS, 2), true, nil
	}
	return l.single(token.EQUAL), true, nil
}

func lexSlash(l *Lexer) (token.Token, bool, error) {
	switch l.peekChar() {
	case '/':
		for !l.atEnd() && l.ch != '\n' {
			l.readChar()
		}
		return token.Token{}, false, nil
	case '*':
		l.readChar()
		l.readChar()
		for !l.atEnd() {
			if l.ch == '*' && l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				break
			}
			l.readChar()
		}
		return token.Token{}, false, nil
	}
	return l.single(token.DIVISION), true, nil
}

// lexText reads a quoted literal. The payload excludes the quotes; an
// unterminated literal runs to the end of the input.
func lexText(l *Lexer) (token.Token, bool, error) {
	quote := l.ch
	tok := token.Token{Kind: token.TEXT, Start: l.position, Line: l.line, Column: l.column}
	l.readChar()
	contentStart := l.position
	for !l.atEnd() && l.ch != quote {
		l.readChar()
	}
	tok.Literal = l.input[contentStart:min(l.position, len(l.input))]
	if !l.atEnd() {
		l.readChar()
	}
	tok.End = min(l.position, len(l.input))
	return tok, true, nil
}
