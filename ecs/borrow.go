package ecs

// borrowState tracks the live borrows of one cell. All access happens on the
// frame goroutine, so plain counters are enough.
type borrowState struct {
	readers int
	writer  bool
}

func (b *borrowState) acquireRead() bool {
	if b.writer {
		return false
	}
	b.readers++
	return true
}

func (b *borrowState) acquireWrite() bool {
	if b.writer || b.readers > 0 {
		return false
	}
	b.writer = true
	return true
}

func (b *borrowState) releaseRead() {
	if b.readers > 0 {
		b.readers--
	}
}

func (b *borrowState) releaseWrite() {
	b.writer = false
}

// borrowed reports whether any borrow is live.
func (b *borrowState) borrowed() bool {
	return b.writer || b.readers > 0
}

// ValueRef is a shared view of a value. It must be released once the caller
// is done reading; further borrows of the same value stay shared until then.
type ValueRef[T any] struct {
	value    *T
	state    *borrowState
	released bool
}

// Get returns the borrowed value. Callers must not mutate through it.
func (r *ValueRef[T]) Get() *T {
	if r.released {
		panic("ecs: use of released ValueRef")
	}
	return r.value
}

// Release ends the borrow. Calling it more than once is a no-op.
func (r *ValueRef[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.state.releaseRead()
}

// ValueMutRef is an exclusive view of a value.
type ValueMutRef[T any] struct {
	value    *T
	state    *borrowState
	released bool
}

// Get returns the borrowed value for reading and writing.
func (r *ValueMutRef[T]) Get() *T {
	if r.released {
		panic("ecs: use of released ValueMutRef")
	}
	return r.value
}

// Release ends the borrow. Calling it more than once is a no-op.
func (r *ValueMutRef[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.state.releaseWrite()
}

// Cell holds a value shared between several holders with the same
// single-writer, multi-reader discipline used for component slots.
type Cell[T any] struct {
	value T
	state borrowState
	name  string
}

// NewCell wraps value in a borrow-checked cell.
func NewCell[T any](name string, value T) *Cell[T] {
	return &Cell[T]{value: value, name: name}
}

// TryBorrow returns a shared view or a *BorrowError if the cell is exclusively borrowed.
func (c *Cell[T]) TryBorrow() (*ValueRef[T], error) {
	if !c.state.acquireRead() {
		return nil, &BorrowError{Kind: BorrowShared, Target: c.name}
	}
	return &ValueRef[T]{value: &c.value, state: &c.state}, nil
}

// TryBorrowMut returns an exclusive view or a *BorrowError if any borrow is live.
func (c *Cell[T]) TryBorrowMut() (*ValueMutRef[T], error) {
	if !c.state.acquireWrite() {
		return nil, &BorrowError{Kind: BorrowExclusive, Target: c.name}
	}
	return &ValueMutRef[T]{value: &c.value, state: &c.state}, nil
}

// Borrow is TryBorrow that panics on conflict.
func (c *Cell[T]) Borrow() *ValueRef[T] {
	ref, err := c.TryBorrow()
	if err != nil {
		panic(err)
	}
	return ref
}

// BorrowMut is TryBorrowMut that panics on conflict.
func (c *Cell[T]) BorrowMut() *ValueMutRef[T] {
	ref, err := c.TryBorrowMut()
	if err != nil {
		panic(err)
	}
	return ref
}
