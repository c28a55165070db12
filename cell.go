package gc

import (
	"errors"
	"fmt"
)

// ErrBorrowConflict is returned by Borrow and BorrowMut when the requested
// access would violate the single-writer/multiple-reader discipline. It is
// recoverable: release the conflicting guard and retry. The package never
// retries on the caller's behalf.
var ErrBorrowConflict = errors.New("gc: borrow conflict")

// borrow-state encoding: 0 unborrowed, n > 0 shared borrows, exclusive
// while mutably borrowed.
const exclusive = -1

// RefCell is an arena-branded interior-mutability cell. The value inside
// is reached through Borrow (shared) and BorrowMut (exclusive) guards; the
// cell enforces at run time that an exclusive borrow never overlaps any
// other borrow.
//
// Like everything in this package, a RefCell is single-goroutine.
type RefCell[B any, T any] struct {
	scope  *scope
	borrow int
	value  T
}

// NewCell wraps value in a cell branded by a's scope, initially
// unborrowed. T must satisfy the trace capability; NewCell panics
// otherwise.
func NewCell[B, T any](a *Arena[B], value T) *RefCell[B, T] {
	a.scope.panicIfReleased()
	mustBeTraceable[T]()
	a.scope.liveCells++
	return &RefCell[B, T]{scope: a.scope, value: value}
}

// Borrow takes a shared borrow. It fails with ErrBorrowConflict while the
// cell is exclusively borrowed; any number of shared borrows may overlap.
// Release the guard on every exit path, normally with defer.
func (c *RefCell[B, T]) Borrow() (*Ref[B, T], error) {
	c.scope.panicIfReleased()
	if c.borrow == exclusive {
		return nil, fmt.Errorf("cell is mutably borrowed: %w", ErrBorrowConflict)
	}
	c.borrow++
	return &Ref[B, T]{cell: c}, nil
}

// BorrowMut takes the exclusive borrow. It fails with ErrBorrowConflict
// while any borrow, shared or exclusive, is outstanding.
func (c *RefCell[B, T]) BorrowMut() (*RefMut[B, T], error) {
	c.scope.panicIfReleased()
	if c.borrow != 0 {
		return nil, fmt.Errorf("cell already borrowed: %w", ErrBorrowConflict)
	}
	c.borrow = exclusive
	return &RefMut[B, T]{cell: c}, nil
}

// String renders the cell for diagnostics. While exclusively borrowed it
// reports a placeholder instead of attempting the conflicting read, so
// rendering never panics.
func (c *RefCell[B, T]) String() string {
	if c.borrow == exclusive {
		return "RefCell(<borrowed>)"
	}
	return fmt.Sprintf("RefCell(%v)", c.value)
}

// Traceable marks cells as traceable: a cell holds mutable state a
// collector must look through.
func (*RefCell[B, T]) Traceable() {}

// Ref is a shared borrow guard. It holds one shared borrow of its cell
// until Release.
type Ref[B any, T any] struct {
	cell *RefCell[B, T]
	done bool
}

// Value returns the borrowed value. Using a released guard panics.
func (r *Ref[B, T]) Value() T {
	if r.done {
		panic("gc: use of released borrow guard")
	}
	return r.cell.value
}

// Release returns the shared borrow. Idempotent: releasing twice is a
// no-op, so it is safe to defer and also release early.
func (r *Ref[B, T]) Release() {
	if r.done {
		return
	}
	r.done = true
	r.cell.borrow--
}

// RefMut is the exclusive borrow guard. It holds the cell's exclusive
// borrow until Release.
type RefMut[B any, T any] struct {
	cell *RefCell[B, T]
	done bool
}

// Get returns mutable access to the borrowed value. Using a released
// guard panics.
func (m *RefMut[B, T]) Get() *T {
	if m.done {
		panic("gc: use of released borrow guard")
	}
	return &m.cell.value
}

// Set replaces the borrowed value.
func (m *RefMut[B, T]) Set(value T) {
	*m.Get() = value
}

// Release returns the exclusive borrow. Idempotent.
func (m *RefMut[B, T]) Release() {
	if m.done {
		return
	}
	m.done = true
	m.cell.borrow = 0
}
