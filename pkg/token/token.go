package token

import (
	"fmt"
)

type Kind int

const (
	BAD Kind = iota
	EOE
	EOF
	EOL

	SPACE
	TAB

	NUMBER
	DECIMAL
	TEXT
	WORD

	ADDITION
	SUBTRACTION
	STAR
	DIVISION
	MODULUS
	REM
	EXPONENTIAL
	INCREMENT
	DECREMENT

	BITWISE_AND
	BITWISE_OR
	BITWISE_XOR
	BITWISE_NOT
	SHIFT_LEFT
	SHIFT_RIGHT

	COND_AND
	COND_OR
	COND_EQUALS

	EQUAL
	LAMBDA
	LESS
	GREATER

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET

	COMMA
	COLON
	AT
	SYMBOL

	keywordStart
	ABSTRACT
	BOOLEAN
	BREAK
	BYTE
	CASE
	CATCH
	CHAR
	CLASS
	CONST
	CONTINUE
	DEFAULT
	DO
	DOUBLE
	ELSE
	ENUM
	EXTENDS
	FALSE
	FINAL
	FLOAT
	FOR
	IF
	IMPORT
	INT
	INTERFACE
	LONG
	NEW
	NIL
	NUMBER_TYPE
	PACKAGE
	PRIVATE
	PUBLIC
	RETURN
	SHORT
	STATIC
	STRING
	SWITCH
	THIS
	THROW
	TRUE
	TRY
	VOID
	WHILE
	YIELD
	keywordEnd
)

var names = map[Kind]string{
	BAD:         "BAD",
	EOE:         "EOE",
	EOF:         "EOF",
	EOL:         "EOL",
	SPACE:       "SPACE",
	TAB:         "TAB",
	NUMBER:      "NUMBER",
	DECIMAL:     "DECIMAL",
	TEXT:        "TEXT",
	WORD:        "WORD",
	ADDITION:    "+",
	SUBTRACTION: "-",
	STAR:        "*",
	DIVISION:    "/",
	MODULUS:     "%",
	REM:         "#",
	EXPONENTIAL: "**",
	INCREMENT:   "++",
	DECREMENT:   "--",
	BITWISE_AND: "&",
	BITWISE_OR:  "|",
	BITWISE_XOR: "^",
	BITWISE_NOT: "~",
	SHIFT_LEFT:  "<<",
	SHIFT_RIGHT: ">>",
	COND_AND:    "&&",
	COND_OR:     "||",
	COND_EQUALS: "==",
	EQUAL:       "=",
	LAMBDA:      "=>",
	LESS:        "<",
	GREATER:     ">",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACE:      "{",
	RBRACE:      "}",
	LBRACKET:    "[",
	RBRACKET:    "]",
	COMMA:       ",",
	COLON:       ":",
	AT:          "@",
	SYMBOL:      "SYMBOL",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	if word, ok := keywordNames[k]; ok {
		return word
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool {
	return k > keywordStart && k < keywordEnd
}

// IsWhitespace covers the tokens the parser skips.
func (k Kind) IsWhitespace() bool {
	return k == SPACE || k == TAB || k == EOL
}

// IsTypeKeyword reports whether k introduces a declaration.
func (k Kind) IsTypeKeyword() bool {
	switch k {
	case BOOLEAN, BYTE, CHAR, DOUBLE, FLOAT, INT, LONG, NUMBER_TYPE, SHORT, STRING:
		return true
	}
	return false
}

// IsOperator reports whether k is an arithmetic or bitwise operator the
// parser can apply as a unary or binary expression.
func (k Kind) IsOperator() bool {
	switch k {
	case ADDITION, SUBTRACTION, STAR, DIVISION, MODULUS, REM, EXPONENTIAL,
		INCREMENT, DECREMENT, BITWISE_AND, BITWISE_OR, BITWISE_XOR, BITWISE_NOT,
		SHIFT_LEFT, SHIFT_RIGHT:
		return true
	}
	return false
}

var precedences = map[Kind]int{
	BITWISE_XOR: 9,
	EXPONENTIAL: 9,
	STAR:        8,
	DIVISION:    8,
	MODULUS:     8,
	REM:         8,
	ADDITION:    5,
	SUBTRACTION: 5,
	SHIFT_LEFT:  4,
	SHIFT_RIGHT: 4,
	BITWISE_AND: 3,
	BITWISE_OR:  2,
	LPAREN:      0,
	RPAREN:      0,
}

// Precedence returns the binding strength of k; -1 means k never binds.
func Precedence(k Kind) int {
	if p, ok := precedences[k]; ok {
		return p
	}
	return -1
}

// RightAssociative reports whether equal-precedence chains of k group to the right.
func RightAssociative(k Kind) bool {
	return k == EXPONENTIAL
}

type Token struct {
	Kind    Kind
	Literal string
	Start   int
	End     int
	Line    int
	Column  int
}

func (t Token) Precedence() int {
	return Precedence(t.Kind)
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, Line: %d, Column: %d)", t.Kind, t.Literal, t.Line, t.Column)
}
