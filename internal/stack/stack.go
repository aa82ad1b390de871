package stack

// Stack is a LIFO of T backed by a slice.  Its storage is kept while it is
// emptied by Pop, so a stack used for many documents stops allocating once it
// has grown to the deepest nesting seen.
type Stack[T any] struct {
	items []T
}

func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// NewWithCapacity reduces allocations when the maximum stack size is known.
func NewWithCapacity[T any](capacity int) *Stack[T] {
	return &Stack[T]{
		items: make([]T, 0, capacity),
	}
}

// Push adds elements in order with the last element at the top.
func (s *Stack[T]) Push(items ...T) {
	s.items = append(s.items, items...)
}

func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	index := len(s.items) - 1
	item := s.items[index]
	// Clear the slot so popped items do not pin memory.
	s.items[index] = zero
	s.items = s.items[:index]
	return item, true
}

// PeekRef allows modifying the top element in place.  The pointer is only
// valid until the next Push.
func (s *Stack[T]) PeekRef() *T {
	if len(s.items) == 0 {
		return nil
	}

	return &s.items[len(s.items)-1]
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Stack[T]) Size() int {
	return len(s.items)
}

// Release empties the stack and drops its storage.
func (s *Stack[T]) Release() {
	s.items = nil
}
