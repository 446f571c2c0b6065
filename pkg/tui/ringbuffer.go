package tui

// RingBuffer keeps the most recent Capacity values pushed into it.
type RingBuffer[T any] struct {
	values []T
	start  int
	count  int
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	return &RingBuffer[T]{values: make([]T, capacity)}
}

func (rb *RingBuffer[T]) Push(v T) {
	if len(rb.values) == 0 {
		return
	}
	idx := (rb.start + rb.count) % len(rb.values)
	rb.values[idx] = v
	if rb.count < len(rb.values) {
		rb.count++
	} else {
		rb.start = (rb.start + 1) % len(rb.values)
	}
}

func (rb *RingBuffer[T]) Len() int {
	return rb.count
}

// ForEach visits the buffered values oldest first.
func (rb *RingBuffer[T]) ForEach(f func(i int, v T)) {
	for i := 0; i < rb.count; i++ {
		f(i, rb.values[(rb.start+i)%len(rb.values)])
	}
}
