// Package cow provides an append-only sequence whose branches share a common prefix buffer until they diverge.
package cow

// buffer is the backing storage shared by every branch cloned from the same root. A branch only ever reads the first
// length elements of it, so the buffer can keep growing for one branch without disturbing the others.
type buffer[T any] struct {
	data []T
}

// Sequence is a cheaply-branchable append-only sequence.
//
// Cloning copies only the handle (buffer pointer plus length). When a branch commits an element and another branch has
// already appended past its length, the branch copies the prefix it actually uses into a fresh buffer before appending,
// leaving the other branches untouched. Buffers are released by the garbage collector once no branch references them.
//
// A Sequence is not safe for concurrent mutation; concurrent reads through AsSlice are fine as long as no branch sharing
// the buffer commits at the same time.
type Sequence[T any] struct {
	buf     *buffer[T]
	length  int
	queued  T
	pending bool
}

func New[T any]() Sequence[T] {
	return Sequence[T]{buf: &buffer[T]{data: make([]T, 0, 1)}}
}

// Clone returns a branch sharing this sequence's buffer and pending element
func (s Sequence[T]) Clone() Sequence[T] {
	return s
}

// Queue stages value to be appended by the next Commit, replacing any previously staged value
func (s *Sequence[T]) Queue(value T) {
	s.queued = value
	s.pending = true
}

// Commit appends the staged value, if any
func (s *Sequence[T]) Commit() {
	if !s.pending {
		return
	}

	if s.buf == nil {
		s.buf = &buffer[T]{data: make([]T, 0, 1)}
	} else if s.length < len(s.buf.data) {
		// Another branch already wrote past our prefix; copy only what we use
		data := make([]T, s.length, max(2*s.length, 1))
		copy(data, s.buf.data[:s.length])
		s.buf = &buffer[T]{data: data}
	}

	s.buf.data = append(s.buf.data, s.queued)
	s.length++

	var zero T
	s.queued = zero
	s.pending = false
}

// Number of committed elements
func (s Sequence[T]) Len() int {
	return s.length
}

func (s Sequence[T]) Pending() bool {
	return s.pending
}

// AsSlice returns a read-only view of the committed elements. The view's capacity is capped to its length so appending
// to it can never write into the shared buffer.
func (s Sequence[T]) AsSlice() []T {
	if s.buf == nil {
		return nil
	}
	return s.buf.data[:s.length:s.length]
}

// Shares reports whether both sequences currently read from the same backing buffer
func (s Sequence[T]) Shares(other Sequence[T]) bool {
	return s.buf != nil && s.buf == other.buf
}
