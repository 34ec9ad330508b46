package ast

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/oarkflow/errors"
)

var ErrStackOverflow = errors.New("stack capacity exceeded")

// Stack is a LIFO of owned values. Push takes ownership and Pop hands it back;
// nothing is copied on the way through. Capacity <= 0 means unbounded.
type Stack[T any] struct {
	items    *arraystack.Stack
	capacity int
}

func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{items: arraystack.New(), capacity: capacity}
}

func (s *Stack[T]) Push(v T) error {
	if s.capacity > 0 && s.items.Size() >= s.capacity {
		return ErrStackOverflow
	}
	s.items.Push(v)
	return nil
}

func (s *Stack[T]) Pop() (T, bool) {
	v, ok := s.items.Pop()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

func (s *Stack[T]) Peek() (T, bool) {
	v, ok := s.items.Peek()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

func (s *Stack[T]) Len() int {
	return s.items.Size()
}

func (s *Stack[T]) Empty() bool {
	return s.items.Empty()
}

func (s *Stack[T]) Clear() {
	s.items.Clear()
}
