package hsm

import "slices"

// Stack is a LIFO sequence. A bounded stack discards its oldest element
// when a push would exceed capacity, so it always holds the most recent
// values. The engine uses bounded stacks for state history and an
// unbounded one for the client data stack.
type Stack[T any] struct {
	items  []T
	maxLen int
}

// NewStack creates a stack holding at most maxLen elements. A maxLen of
// zero or less means unbounded.
func NewStack[T any](maxLen int) *Stack[T] {
	return &Stack[T]{maxLen: maxLen}
}

// Push adds value on top of the stack, evicting the bottom element first
// if the stack is bounded and full.
func (s *Stack[T]) Push(value T) {
	if s.maxLen > 0 && len(s.items) == s.maxLen {
		copy(s.items, s.items[1:])
		s.items[len(s.items)-1] = value
		return
	}
	s.items = append(s.items, value)
}

// Pop removes and returns the top value. The second return is false on an
// empty stack.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	value := s.items[last]
	s.items = s.items[:last]
	return value, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Len reports the current stack depth.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Items returns a copy of the stack contents in push order.
func (s *Stack[T]) Items() []T {
	return slices.Clone(s.items)
}
