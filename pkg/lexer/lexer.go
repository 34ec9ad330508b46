package lexer

import (
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/token"
)

type KeywordMode string

const (
	KeywordsTrie KeywordMode = "trie"
	KeywordsHash KeywordMode = "hash"
)

type Option func(*Lexer)

// WithCapacity sets the token stream bound; 0 makes the stream growable.
func WithCapacity(capacity int) Option {
	return func(l *Lexer) {
		l.capacity = capacity
	}
}

func WithKeywordMode(mode KeywordMode) Option {
	return func(l *Lexer) {
		if mode == KeywordsHash {
			l.lookup = token.LookupKeywordHash
		} else {
			l.lookup = token.LookupKeyword
		}
	}
}

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	capacity     int
	lookup       func(string) token.Kind
}

func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:    input,
		line:     1,
		lookup:   token.LookupKeyword,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// Tokenize lexes the whole input into a stream terminated by one EOF token.
func Tokenize(input string, opts ...Option) (*token.Stream, error) {
	return New(input, opts...).Tokenize()
}

func (l *Lexer) Tokenize() (*token.Stream, error) {
	stream := token.NewStream(l.capacity)
	for {
		tok, emit, err := l.next()
		if err != nil {
			return stream, err
		}
		if !emit {
			continue
		}
		if err := stream.Push(tok); err != nil {
			return stream, diagnostics.Wrap(diagnostics.ErrCodeBufferFull, err,
				"cannot buffer %s, capacity %d reached", tok.Kind, stream.Cap()).At(tok.Line, tok.Column)
		}
		if tok.Kind == token.EOF {
			return stream, nil
		}
	}
}

func (l *Lexer) next() (token.Token, bool, error) {
	if l.atEnd() {
		return token.Token{Kind: token.EOF, Start: len(l.input), End: len(l.input), Line: l.line, Column: l.column}, true, nil
	}
	ch := l.ch
	if ch >= 128 {
		return token.Token{}, false, l.unsupported()
	}
	switch classes[ch] {
	case classSpace:
		return l.single(whitespace[ch]), true, nil
	case classDigit:
		return l.readNumber(), true, nil
	case classAlpha:
		return l.readWord(), true, nil
	case classSymbol:
		if h := handlers[ch]; h != nil {
			return h(l)
		}
		kind := singles[ch]
		if kind == token.BAD {
			kind = token.SYMBOL
		}
		return l.single(kind), true, nil
	}
	return token.Token{}, false, l.unsupported()
}

func (l *Lexer) unsupported() error {
	return diagnostics.Errorf(diagnostics.ErrCodeUnsupportedChar,
		"unsupported character %q (0x%02x)", l.ch, l.ch).At(l.line, l.column)
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// span emits a token of kind covering the next n characters.
func (l *Lexer) span(kind token.Kind, n int) token.Token {
	tok := token.Token{Kind: kind, Start: l.position, Line: l.line, Column: l.column}
	for i := 0; i < n && !l.atEnd(); i++ {
		l.readChar()
	}
	tok.End = l.position
	tok.Literal = l.input[tok.Start:tok.End]
	return tok
}

func (l *Lexer) single(kind token.Kind) token.Token {
	return l.span(kind, 1)
}

func (l *Lexer) readNumber() token.Token {
	tok := token.Token{Kind: token.NUMBER, Start: l.position, Line: l.line, Column: l.column}
	for !l.atEnd() {
		if isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.ch == '.' && tok.Kind == token.NUMBER {
			tok.Kind = token.DECIMAL
			l.readChar()
			continue
		}
		break
	}
	tok.End = l.position
	tok.Literal = l.input[tok.Start:tok.End]
	return tok
}

func (l *Lexer) readWord() token.Token {
	tok := token.Token{Start: l.position, Line: l.line, Column: l.column}
	for !l.atEnd() && isWordChar(l.ch) {
		l.readChar()
	}
	tok.End = l.position
	tok.Literal = l.input[tok.Start:tok.End]
	tok.Kind = l.lookup(tok.Literal)
	return tok
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
