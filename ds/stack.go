package ds

// Stack is a LIFO used for explicit depth-first walks where recursion depth
// would otherwise follow untrusted input.
type Stack[T any] struct {
	slice []T
}

func NewStack[T any]() *Stack[T] {
	return &Stack[T]{
		slice: make([]T, 0),
	}
}

func (r *Stack[T]) Len() int {
	return len(r.slice)
}

func (r *Stack[T]) Push(t T) T {
	r.slice = append(r.slice, t)
	return t
}

func (r *Stack[T]) Pop() (T, bool) {
	var zero T
	if r.Len() == 0 {
		return zero, false
	}
	last := r.slice[r.Len()-1]
	r.slice[r.Len()-1] = zero
	r.slice = r.slice[:r.Len()-1]
	return last, true
}

func (r *Stack[T]) Peek() (T, bool) {
	if r.Len() == 0 {
		var zero T
		return zero, false
	}
	return r.slice[r.Len()-1], true
}
