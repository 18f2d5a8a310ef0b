// Package rc provides single-goroutine reference counting with weak
// handles.
//
// An Rc is an owning handle: the value stays alive while any Rc to it
// exists. A Weak observes the value without keeping it alive and must be
// upgraded before use. Parent/child graphs keep strong links in one
// direction and weak links in the other, so dropping the owner finalizes
// the whole graph exactly once.
//
// Rc and Weak are not safe for concurrent use. Use package arc when a
// value is shared between goroutines.
package rc

import (
	"github.com/dacapoday/share"
	"github.com/dacapoday/share/internal/assert"
)

var ErrReleased = share.ErrReleased

// box is the control block shared by every handle onto one value.
type box[T any] struct {
	value  T
	drop   func(T)
	strong int
	weak   int
	freed  bool
}

func (b *box[T]) release() {
	b.strong--
	assert.Count("rc.Drop", int64(b.strong))
	if b.strong > 0 {
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

	if b.weak == 0 {
		b.freed = true
	}
}

func (b *box[T]) releaseWeak() {
	b.weak--
	assert.Count("rc.Weak.Drop", int64(b.weak))
	if b.weak == 0 && b.strong == 0 {
		b.freed = true
	}
}

// Rc is an owning handle onto a shared value.
//
// Each handle must be dropped exactly once; Drop on an already dropped
// handle is a no-op, so `defer h.Drop()` is safe alongside an early Drop.
type Rc[T any] struct {
	box *box[T]
}

// New returns the first strong handle onto value.
// When the last handle is dropped, value is finalized with share.Drop.
func New[T any](value T) *Rc[T] {
	return &Rc[T]{box: &box[T]{value: value, strong: 1}}
}

// NewWithDrop is like New, but calls drop instead of share.Drop when the
// last strong handle goes away.
func NewWithDrop[T any](value T, drop func(T)) *Rc[T] {
	return &Rc[T]{box: &box[T]{value: value, drop: drop, strong: 1}}
}

func (rc *Rc[T]) live() *box[T] {
	if rc == nil || rc.box == nil {
		panic(ErrReleased)
	}
	return rc.box
}

// Clone returns a new strong handle onto the same value.
func (rc *Rc[T]) Clone() *Rc[T] {
	b := rc.live()
	b.strong++
	return &Rc[T]{box: b}
}

// Drop releases this handle. The value is finalized when the strong count
// reaches zero.
func (rc *Rc[T]) Drop() {
	if rc == nil || rc.box == nil {
		return
	}
	b := rc.box
	rc.box = nil
	b.release()
}

// Deref returns a pointer to the shared value.
// The value must be treated as read-only; embed a cell.Cell for mutation.
// Panics with ErrReleased if the handle was dropped.
func (rc *Rc[T]) Deref() *T {
	return &rc.live().value
}

// Downgrade returns a weak handle onto the same value.
func (rc *Rc[T]) Downgrade() *Weak[T] {
	b := rc.live()
	b.weak++
	return &Weak[T]{box: b}
}

// Valid reports whether the handle has not been dropped.
func (rc *Rc[T]) Valid() bool {
	return rc != nil && rc.box != nil
}

// StrongCount returns the number of strong handles onto the value.
func (rc *Rc[T]) StrongCount() int {
	return rc.live().strong
}

// WeakCount returns the number of weak handles onto the value.
func (rc *Rc[T]) WeakCount() int {
	return rc.live().weak
}

// TryUnwrap moves the value out if rc is the only strong handle.
// On success the handle is consumed and the value is not finalized;
// outstanding weak handles can no longer upgrade.
func (rc *Rc[T]) TryUnwrap() (value T, ok bool) {
	b := rc.live()
	if b.strong != 1 {
		return
	}

	value = b.value
	var zero T
	b.value = zero
	b.drop = nil
	b.strong = 0
	if b.weak == 0 {
		b.freed = true
	}
	rc.box = nil
	return value, true
}

// PtrEq reports whether a and b refer to the same value.
func PtrEq[T any](a, b *Rc[T]) bool {
	return a.live() == b.live()
}

// Weak is a non-owning handle onto a value owned by Rc handles.
type Weak[T any] struct {
	box *box[T]
}

// NewWeak returns a weak handle that refers to nothing. Upgrade always fails.
func NewWeak[T any]() *Weak[T] {
	return &Weak[T]{}
}

// Upgrade returns a new strong handle if the value is still alive.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	if w == nil || w.box == nil || w.box.strong == 0 {
		return nil, false
	}
	w.box.strong++
	return &Rc[T]{box: w.box}, true
}

// Clone returns another weak handle onto the same value.
// Cloning an empty or dropped weak handle yields an empty one.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.box == nil {
		return &Weak[T]{}
	}
	w.box.weak++
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

// StrongCount returns the number of strong handles onto the target,
// or 0 if the weak handle is empty.
func (w *Weak[T]) StrongCount() int {
	if w == nil || w.box == nil {
		return 0
	}
	return w.box.strong
}

// WeakCount returns the number of weak handles onto the target,
// or 0 once the value is gone.
func (w *Weak[T]) WeakCount() int {
	if w == nil || w.box == nil || w.box.strong == 0 {
		return 0
	}
	return w.box.weak
}
