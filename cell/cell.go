// Package cell provides interior mutability with borrow rules checked at
// runtime.
//
// A Cell hands out any number of shared Ref guards or exactly one
// exclusive RefMut guard, never both. Borrow and BorrowMut panic with a
// *BorrowError when the rule would be broken: the violation is a logic
// bug, and the violating operation is aborted rather than retried.
//
// Cell is not safe for concurrent use.
package cell

import (
	"fmt"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/internal/assert"
)

var (
	ErrAlreadyBorrowed        = share.ErrAlreadyBorrowed
	ErrAlreadyMutablyBorrowed = share.ErrAlreadyMutablyBorrowed
	ErrReleased               = share.ErrReleased
)

const exclusive = -1

// BorrowError is the panic value of a rejected borrow.
type BorrowError struct {
	Op  string
	Err error
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BorrowError) Unwrap() error {
	return e.Err
}

// Cell holds a value whose borrows are tracked at runtime.
// The zero value holds the zero T, unborrowed.
type Cell[T any] struct {
	value T
	// 0: unborrowed, n > 0: n shared borrows, -1: exclusive.
	borrow int
}

// New returns an unborrowed cell holding value.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Borrow returns a shared guard.
// Panics with a *BorrowError if the cell is exclusively borrowed.
func (c *Cell[T]) Borrow() *Ref[T] {
	ref, err := c.TryBorrow()
	if err != nil {
		panic(&BorrowError{Op: "cell.Borrow", Err: err})
	}
	return ref
}

// TryBorrow is like Borrow but returns ErrAlreadyMutablyBorrowed instead
// of panicking.
func (c *Cell[T]) TryBorrow() (*Ref[T], error) {
	if c.borrow == exclusive {
		return nil, ErrAlreadyMutablyBorrowed
	}
	c.borrow++
	return &Ref[T]{cell: c}, nil
}

// BorrowMut returns an exclusive guard.
// Panics with a *BorrowError if any borrow is outstanding.
func (c *Cell[T]) BorrowMut() *RefMut[T] {
	ref, err := c.TryBorrowMut()
	if err != nil {
		panic(&BorrowError{Op: "cell.BorrowMut", Err: err})
	}
	return ref
}

// TryBorrowMut is like BorrowMut but returns ErrAlreadyBorrowed instead of
// panicking.
func (c *Cell[T]) TryBorrowMut() (*RefMut[T], error) {
	if c.borrow != 0 {
		return nil, ErrAlreadyBorrowed
	}
	c.borrow = exclusive
	return &RefMut[T]{cell: c}, nil
}

// Borrowed reports the number of shared borrows, or -1 when exclusively
// borrowed.
func (c *Cell[T]) Borrowed() int {
	return c.borrow
}

// Get returns a copy of the value under a shared borrow.
func (c *Cell[T]) Get() T {
	ref := c.Borrow()
	defer ref.Release()
	return *ref.Deref()
}

// Set stores value under an exclusive borrow.
func (c *Cell[T]) Set(value T) {
	c.Replace(value)
}

// Replace stores value and returns the previous one.
func (c *Cell[T]) Replace(value T) (old T) {
	ref := c.BorrowMut()
	defer ref.Release()
	old, ref.cell.value = ref.cell.value, value
	return
}

// Take replaces the value with the zero T and returns the previous one.
func (c *Cell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Update calls fn with exclusive access to the value.
// The borrow is released when fn returns, including by panic.
func (c *Cell[T]) Update(fn func(value *T)) {
	ref := c.BorrowMut()
	defer ref.Release()
	fn(ref.Deref())
}

// Ref is a shared borrow guard.
type Ref[T any] struct {
	cell *Cell[T]
}

// Deref returns the borrowed value. It must not be mutated.
// Panics with ErrReleased after Release.
func (r *Ref[T]) Deref() *T {
	if r.cell == nil {
		panic(ErrReleased)
	}
	return &r.cell.value
}

// Release ends the borrow. Idempotent.
func (r *Ref[T]) Release() {
	if r.cell == nil {
		return
	}
	r.cell.borrow--
	assert.Borrow("cell.Ref.Release", r.cell.borrow)
	r.cell = nil
}

// RefMut is an exclusive borrow guard.
type RefMut[T any] struct {
	cell *Cell[T]
}

// Deref returns the borrowed value for reading and writing.
// Panics with ErrReleased after Release.
func (r *RefMut[T]) Deref() *T {
	if r.cell == nil {
		panic(ErrReleased)
	}
	return &r.cell.value
}

// Set overwrites the borrowed value.
func (r *RefMut[T]) Set(value T) {
	*r.Deref() = value
}

// Release ends the borrow. Idempotent.
func (r *RefMut[T]) Release() {
	if r.cell == nil {
		return
	}
	r.cell.borrow = 0
	r.cell = nil
}
