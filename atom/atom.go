// Package atom provides an atomically swappable shared snapshot.
//
// An Atom owns one arc-counted snapshot at a time. Readers Acquire their
// own strong handle and keep using it after a writer Swaps in a new
// snapshot; the old value is finalized when its last reader drops.
//
// Supports concurrent reads (Acquire) and serialized writes (Swap).
//
// Naming: Inspired by Clojure's atom.
package atom

import (
	"sync"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/arc"
)

var ErrClosed = share.ErrClosed

// Atom holds the current snapshot of a value of type T.
//
// Zero value is closed. Call Load to initialize.
type Atom[T any] struct {
	snap  *arc.Arc[T]
	view  sync.RWMutex
	mutex sync.Mutex
}

// New returns an Atom holding value.
func New[T any](value T) *Atom[T] {
	a := new(Atom[T])
	a.Load(arc.New(value))
	return a
}

// Load installs snap as the current snapshot, taking over the caller's
// handle. The previous snapshot, if any, is dropped.
func (a *Atom[T]) Load(snap *arc.Arc[T]) {
	a.mutex.Lock()
	a.view.Lock()
	old := a.snap
	a.snap = snap
	a.view.Unlock()
	a.mutex.Unlock()
	old.Drop()
}

// Close drops the current snapshot.
// No-op if already closed.
func (a *Atom[T]) Close() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.view.Lock()
	old := a.snap
	a.snap = nil
	a.view.Unlock()
	old.Drop()
}

// Acquire returns a strong handle onto the current snapshot, or
// ErrClosed.
//
// Important: Caller must Drop the handle when done.
func (a *Atom[T]) Acquire() (snap *arc.Arc[T], err error) {
	a.view.RLock()
	defer a.view.RUnlock()
	if a.snap == nil {
		return nil, ErrClosed
	}
	return a.snap.Clone(), nil
}

// Get returns a copy of the current value, or ErrClosed.
func (a *Atom[T]) Get() (val T, err error) {
	snap, err := a.Acquire()
	if err != nil {
		return
	}
	val = *snap.Deref()
	snap.Drop()
	return
}

// Swap derives a new snapshot from the current value.
//
// The swap function receives the current value and returns:
//   - newVal: the value of the next snapshot
//   - err: non-nil aborts the swap
//
// val is shared with readers and must not be modified in place.
// Writers are serialized. On success the old snapshot is dropped;
// readers still holding it keep it alive. On error, state unchanged.
func (a *Atom[T]) Swap(swap func(val T) (newVal T, err error)) (err error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	old := a.snap
	if old == nil {
		return ErrClosed
	}

	newVal, err := swap(*old.Deref())
	if err != nil {
		return
	}

	a.view.Lock()
	a.snap = arc.New(newVal)
	a.view.Unlock()

	old.Drop()
	return
}
