// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package mpsc provides an unbounded multi-producer, single-consumer FIFO
// channel.
//
// Unlike a Go channel, closing is driven by handle counts: the receiver
// sees ErrClosed once every Sender has been dropped and the queue is
// drained, and senders see ErrClosed once the Receiver is dropped.
package mpsc

import (
	"iter"
	"sync"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/internal/queue"
)

var (
	ErrClosed = share.ErrClosed
	ErrEmpty  = share.ErrEmpty
)

type channel[T any] struct {
	mu      sync.Mutex
	ready   sync.Cond
	queue   queue.Queue[T]
	senders int
	closed  bool // receiver dropped
}

// Channel returns the two halves of a new channel with one sender.
func Channel[T any]() (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{senders: 1}
	ch.ready.L = &ch.mu
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Sender is a producer handle. Clone it for each producer.
// A single Sender must not be used from several goroutines at once.
type Sender[T any] struct {
	ch *channel[T]
}

// Clone returns an independent Sender on the same channel.
// Panics with share.ErrReleased if s was dropped.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.ch == nil {
		panic(share.ErrReleased)
	}
	s.ch.mu.Lock()
	s.ch.senders++
	s.ch.mu.Unlock()
	return &Sender[T]{ch: s.ch}
}

// Send enqueues value. It returns ErrClosed if the receiver was dropped
// or this Sender was dropped; value is then not delivered.
func (s *Sender[T]) Send(value T) error {
	ch := s.ch
	if ch == nil {
		return ErrClosed
	}

	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return ErrClosed
	}
	ch.queue.Push(value)
	ch.mu.Unlock()
	ch.ready.Signal()
	return nil
}

// Drop releases the Sender. When the last Sender is dropped the receiver
// is woken and sees ErrClosed once the queue is drained. Idempotent.
func (s *Sender[T]) Drop() {
	ch := s.ch
	if ch == nil {
		return
	}
	s.ch = nil

	ch.mu.Lock()
	ch.senders--
	last := ch.senders == 0
	ch.mu.Unlock()
	if last {
		ch.ready.Broadcast()
	}
}

// Receiver is the single consumer handle.
type Receiver[T any] struct {
	ch *channel[T]
}

// Recv blocks until a value arrives. It returns ErrClosed when every
// Sender is dropped and the queue is empty.
func (r *Receiver[T]) Recv() (value T, err error) {
	ch := r.ch
	if ch == nil {
		return value, ErrClosed
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	for {
		if v, ok := ch.queue.Shift(); ok {
			return v, nil
		}
		if ch.senders == 0 {
			return value, ErrClosed
		}
		ch.ready.Wait()
	}
}

// TryRecv returns a queued value without blocking. It returns ErrEmpty
// when senders remain but nothing is queued, and ErrClosed when no
// senders remain and nothing is queued.
func (r *Receiver[T]) TryRecv() (value T, err error) {
	ch := r.ch
	if ch == nil {
		return value, ErrClosed
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if v, ok := ch.queue.Shift(); ok {
		return v, nil
	}
	if ch.senders == 0 {
		return value, ErrClosed
	}
	return value, ErrEmpty
}

// All yields received values until the channel is closed.
//
//	for msg := range rx.All() {
//		...
//	}
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := r.Recv()
			if err != nil || !yield(v) {
				return
			}
		}
	}
}

// Len returns the number of queued values.
func (r *Receiver[T]) Len() int {
	ch := r.ch
	if ch == nil {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.queue.Len()
}

// Drop releases the Receiver. Later sends fail with ErrClosed and values
// still queued are finalized with share.Drop. Idempotent.
func (r *Receiver[T]) Drop() {
	ch := r.ch
	if ch == nil {
		return
	}
	r.ch = nil

	var pending queue.Queue[T]
	ch.mu.Lock()
	ch.closed = true
	pending, ch.queue = ch.queue, queue.Queue[T]{}
	ch.mu.Unlock()

	for v := range pending.Drain {
		share.Drop(&v)
	}
}
