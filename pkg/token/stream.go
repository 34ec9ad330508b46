package token

import (
	"github.com/emirpasic/gods/queues"
	"github.com/emirpasic/gods/queues/arrayqueue"
	"github.com/emirpasic/gods/queues/circularbuffer"
	"github.com/oarkflow/errors"
)

var ErrStreamFull = errors.New("token stream is full")

// Stream is the FIFO buffer between the lexer and the parser. A stream created
// with a positive capacity refuses pushes once full; capacity <= 0 grows as needed.
type Stream struct {
	queue    queues.Queue
	capacity int
	bounded  *circularbuffer.Queue
}

func NewStream(capacity int) *Stream {
	if capacity <= 0 {
		return &Stream{queue: arrayqueue.New()}
	}
	buf := circularbuffer.New(capacity)
	return &Stream{queue: buf, capacity: capacity, bounded: buf}
}

// NewStreamFrom builds a growable stream holding tokens in order.
func NewStreamFrom(tokens []Token) *Stream {
	s := NewStream(0)
	for _, tok := range tokens {
		_ = s.Push(tok)
	}
	return s
}

func (s *Stream) Push(tok Token) error {
	// circularbuffer overwrites the oldest entry when full, so refuse instead.
	if s.bounded != nil && s.bounded.Full() {
		return ErrStreamFull
	}
	s.queue.Enqueue(tok)
	return nil
}

// Next removes and returns the oldest token.
func (s *Stream) Next() (Token, bool) {
	v, ok := s.queue.Dequeue()
	if !ok {
		return Token{Kind: EOF}, false
	}
	return v.(Token), true
}

func (s *Stream) Peek() (Token, bool) {
	v, ok := s.queue.Peek()
	if !ok {
		return Token{Kind: EOF}, false
	}
	return v.(Token), true
}

func (s *Stream) Len() int {
	return s.queue.Size()
}

// Cap returns the configured bound, 0 for growable streams.
func (s *Stream) Cap() int {
	return s.capacity
}

func (s *Stream) Empty() bool {
	return s.queue.Empty()
}

// Tokens returns the buffered tokens without consuming them.
func (s *Stream) Tokens() []Token {
	values := s.queue.Values()
	tokens := make([]Token, len(values))
	for i, v := range values {
		tokens[i] = v.(Token)
	}
	return tokens
}

// Kinds is a convenience for tests and token dumps.
func (s *Stream) Kinds() []Kind {
	tokens := s.Tokens()
	kinds := make([]Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func (s *Stream) Reset() {
	s.queue.Clear()
}
