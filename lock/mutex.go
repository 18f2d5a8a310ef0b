// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package lock provides a mutex that owns the value it guards.
//
// Waiters are parked on their own channel and served in arrival order;
// unlocking hands the lock directly to the oldest waiter. A holder that
// panics poisons the mutex, and later Lock calls report it.
package lock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/internal/queue"
)

var (
	ErrPoisoned   = share.ErrPoisoned
	ErrWouldBlock = share.ErrWouldBlock
	ErrReleased   = share.ErrReleased
)

// PoisonError reports a mutex poisoned by a holder that panicked.
//
// From Lock and TryLock, Guard is the live guard returned alongside the
// error; the caller owns it and must unlock it. From With, which has
// already unlocked, Guard is nil.
type PoisonError[T any] struct {
	Guard *Guard[T]
}

func (e *PoisonError[T]) Error() string {
	return "poisoned lock: another goroutine panicked while holding it"
}

func (e *PoisonError[T]) Unwrap() error {
	return ErrPoisoned
}

// Mutex guards a value of type T.
// The zero value is an unlocked mutex holding the zero T.
// A Mutex must not be copied after first use.
type Mutex[T any] struct {
	mu       sync.Mutex
	locked   bool
	waiters  queue.Queue[chan struct{}]
	poisoned atomic.Bool
	value    T
}

// New returns an unlocked mutex holding value.
func New[T any](value T) *Mutex[T] {
	return &Mutex[T]{value: value}
}

func (m *Mutex[T]) acquire() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}
	wake := make(chan struct{})
	m.waiters.Push(wake)
	m.mu.Unlock()
	<-wake
}

func (m *Mutex[T]) tryAcquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

func (m *Mutex[T]) release() {
	m.mu.Lock()
	wake, ok := m.waiters.Shift()
	if !ok {
		m.locked = false
	}
	m.mu.Unlock()
	if ok {
		close(wake)
	}
}

func (m *Mutex[T]) guard() (*Guard[T], error) {
	g := &Guard[T]{m: m}
	if m.poisoned.Load() {
		return g, &PoisonError[T]{Guard: g}
	}
	return g, nil
}

// Lock blocks until the calling goroutine holds the mutex.
//
// The guard is always returned and must be unlocked. If the mutex is
// poisoned the error is a *PoisonError carrying the same guard.
func (m *Mutex[T]) Lock() (*Guard[T], error) {
	m.acquire()
	return m.guard()
}

// TryLock is like Lock but returns ErrWouldBlock with a nil guard instead
// of waiting.
func (m *Mutex[T]) TryLock() (*Guard[T], error) {
	if !m.tryAcquire() {
		return nil, ErrWouldBlock
	}
	return m.guard()
}

// With calls fn while holding the mutex. If fn panics the mutex is
// poisoned, unlocked, and the panic continues. If the mutex is already
// poisoned fn is not called and a *PoisonError with a nil Guard is
// returned.
func (m *Mutex[T]) With(fn func(value *T) error) (err error) {
	g, err := m.Lock()
	if err != nil {
		g.Unlock()
		return &PoisonError[T]{}
	}
	defer g.Release()
	return fn(&m.value)
}

// IsPoisoned reports whether a holder panicked.
func (m *Mutex[T]) IsPoisoned() bool {
	return m.poisoned.Load()
}

// ClearPoison marks the value as consistent again.
func (m *Mutex[T]) ClearPoison() {
	m.poisoned.Store(false)
}

// IntoInner waits for the mutex, moves the value out, and leaves the zero
// T behind. The value is returned even when the mutex is poisoned, along
// with an error wrapping ErrPoisoned.
func (m *Mutex[T]) IntoInner() (value T, err error) {
	m.acquire()
	var zero T
	value, m.value = m.value, zero
	if m.poisoned.Load() {
		err = fmt.Errorf("lock.IntoInner: %w", ErrPoisoned)
	}
	m.release()
	return
}

// Guard grants exclusive access to the value of a locked Mutex.
type Guard[T any] struct {
	m *Mutex[T]
}

// Deref returns the guarded value.
// Panics with ErrReleased after Unlock.
func (g *Guard[T]) Deref() *T {
	if g.m == nil {
		panic(ErrReleased)
	}
	return &g.m.value
}

// Set overwrites the guarded value.
func (g *Guard[T]) Set(value T) {
	*g.Deref() = value
}

// Poison marks the mutex poisoned, for holders that detect they left the
// value inconsistent.
func (g *Guard[T]) Poison() {
	if g.m == nil {
		panic(ErrReleased)
	}
	g.m.poisoned.Store(true)
}

// Unlock releases the mutex and wakes the oldest waiter. Idempotent.
func (g *Guard[T]) Unlock() {
	if g.m == nil {
		return
	}
	m := g.m
	g.m = nil
	m.release()
}

// Release is Unlock for use with defer: when the holder is panicking it
// poisons the mutex before unlocking and then continues the panic.
// It must be deferred directly, as in `defer g.Release()`.
func (g *Guard[T]) Release() {
	if v := recover(); v != nil {
		if g.m != nil {
			g.m.poisoned.Store(true)
		}
		g.Unlock()
		panic(v)
	}
	g.Unlock()
}
