// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package arc provides atomically reference-counted shared ownership.
//
// Arc mirrors package rc with counters that are safe under concurrent
// Clone and Drop from any goroutine. The value itself is not guarded:
// wrap it in a lock.Mutex (or use atomics) when it is mutated.
package arc

import (
	"math"
	"sync/atomic"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/internal/assert"
)

var (
	ErrReleased      = share.ErrReleased
	ErrCountOverflow = share.ErrCountOverflow
)

// box is the control block. All strong handles together hold one
// implicit weak reference, released after the value is finalized, so the
// block is freed exactly once by whichever count reaches zero last.
type box[T any] struct {
	value  T
	drop   func(T)
	strong atomic.Int32
	weak   atomic.Int32
	freed  atomic.Bool
}

// acquire increments the strong count of a live box. The count is left
// untouched when it would overflow.
func (b *box[T]) acquire() {
	for {
		n := b.strong.Load()
		if n >= math.MaxInt32-1 {
			panic(ErrCountOverflow)
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return
		}
	}
}

func (b *box[T]) release() {
	n := b.strong.Add(-1)
	assert.Count("arc.Drop", int64(n))
	if n > 0 {
		return
	}

	if b.drop != nil {
		b.drop(b.value)
		b.drop = nil
	} else {
		share.Drop(&b.value)
	}
	var zero T
	b.value = zero

	b.releaseWeak()
}

func (b *box[T]) releaseWeak() {
	n := b.weak.Add(-1)
	assert.Count("arc.Weak.Drop", int64(n))
	if n == 0 {
		b.freed.Store(true)
	}
}

// tryAcquire increments the strong count unless it already reached zero.
func (b *box[T]) tryAcquire() bool {
	for {
		n := b.strong.Load()
		if n == 0 {
			return false
		}
		if n >= math.MaxInt32-1 {
			panic(ErrCountOverflow)
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func newBox[T any](value T, drop func(T)) *box[T] {
	b := &box[T]{value: value, drop: drop}
	b.strong.Store(1)
	b.weak.Store(1)
	return b
}

// Arc is an owning handle onto a value shared across goroutines.
//
// A single handle must not be dropped concurrently with other use of the
// same handle; clone it for each goroutine instead.
type Arc[T any] struct {
	box *box[T]
}

// New returns the first strong handle onto value.
func New[T any](value T) *Arc[T] {
	return &Arc[T]{box: newBox(value, nil)}
}

// NewWithDrop is like New but calls drop when the last strong handle goes
// away.
func NewWithDrop[T any](value T, drop func(T)) *Arc[T] {
	return &Arc[T]{box: newBox(value, drop)}
}

func (a *Arc[T]) live() *box[T] {
	if a == nil || a.box == nil {
		panic(ErrReleased)
	}
	return a.box
}

// Clone returns a new strong handle onto the same value.
func (a *Arc[T]) Clone() *Arc[T] {
	b := a.live()
	b.acquire()
	return &Arc[T]{box: b}
}

// Drop releases this handle. Idempotent.
func (a *Arc[T]) Drop() {
	if a == nil || a.box == nil {
		return
	}
	b := a.box
	a.box = nil
	b.release()
}

// Deref returns a pointer to the shared value.
func (a *Arc[T]) Deref() *T {
	return &a.live().value
}

// Downgrade returns a weak handle onto the same value.
func (a *Arc[T]) Downgrade() *Weak[T] {
	b := a.live()
	b.weak.Add(1)
	return &Weak[T]{box: b}
}

// Valid reports whether the handle has not been dropped.
func (a *Arc[T]) Valid() bool {
	return a != nil && a.box != nil
}

// StrongCount returns the number of strong handles.
// The result may be stale as soon as it is returned.
func (a *Arc[T]) StrongCount() int {
	return int(a.live().strong.Load())
}

// WeakCount returns the number of weak handles, excluding the implicit
// one held by the strong handles.
func (a *Arc[T]) WeakCount() int {
	return int(a.live().weak.Load()) - 1
}

// PtrEq reports whether a and b refer to the same value.
func PtrEq[T any](a, b *Arc[T]) bool {
	return a.live() == b.live()
}

// Weak is a non-owning handle onto a value owned by Arc handles.
type Weak[T any] struct {
	box *box[T]
}

// NewWeak returns a weak handle that refers to nothing.
func NewWeak[T any]() *Weak[T] {
	return &Weak[T]{}
}

// Upgrade returns a new strong handle if the value is still alive.
// It never revives a value whose strong count reached zero.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	if w == nil || w.box == nil || !w.box.tryAcquire() {
		return nil, false
	}
	return &Arc[T]{box: w.box}, true
}

// Clone returns another weak handle onto the same value.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.box == nil {
		return &Weak[T]{}
	}
	w.box.weak.Add(1)
	return &Weak[T]{box: w.box}
}

// Drop releases this weak handle. Idempotent.
func (w *Weak[T]) Drop() {
	if w == nil || w.box == nil {
		return
	}
	b := w.box
	w.box = nil
	b.releaseWeak()
}

// StrongCount returns the number of strong handles onto the target.
func (w *Weak[T]) StrongCount() int {
	if w == nil || w.box == nil {
		return 0
	}
	return int(w.box.strong.Load())
}

// WeakCount returns the number of weak handles onto the target.
func (w *Weak[T]) WeakCount() int {
	if w == nil || w.box == nil {
		return 0
	}
	n := int(w.box.weak.Load())
	if w.box.strong.Load() > 0 {
		n--
	}
	return n
}
