// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package queue provides an unbounded FIFO built from a linked list of
// fixed-size chunks. Not thread-safe.
package queue

const chunkSize = 32

// chunk is filled once front to back and read once front to back;
// r <= w always holds.
type chunk[T any] struct {
	items [chunkSize]T
	r, w  int
	next  *chunk[T]
}

// Queue is a FIFO of T. The zero value is an empty queue.
//
// One drained chunk is kept for reuse, so a queue that oscillates around
// a chunk boundary does not allocate.
type Queue[T any] struct {
	front, back *chunk[T]
	spare       *chunk[T]
	length      int
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return q.length
}

// Empty reports whether the queue holds no values.
func (q *Queue[T]) Empty() bool {
	return q.length == 0
}

func (q *Queue[T]) grow() {
	c := q.spare
	if c != nil {
		q.spare = nil
		c.r, c.w = 0, 0
	} else {
		c = new(chunk[T])
	}
	if q.back == nil {
		q.front = c
	} else {
		q.back.next = c
	}
	q.back = c
}

// Push appends val at the back.
func (q *Queue[T]) Push(val T) {
	if q.back == nil || q.back.w == chunkSize {
		q.grow()
	}
	q.back.items[q.back.w] = val
	q.back.w++
	q.length++
}

// Peek returns the front value without removing it.
func (q *Queue[T]) Peek() (val T, ok bool) {
	if q.length == 0 {
		return
	}
	return q.front.items[q.front.r], true
}

// Shift removes and returns the front value.
// ok is false when the queue is empty.
func (q *Queue[T]) Shift() (val T, ok bool) {
	if q.length == 0 {
		return
	}

	c := q.front
	var zero T
	val, c.items[c.r] = c.items[c.r], zero
	c.r++
	q.length--

	if c.r == c.w && (c.w == chunkSize || q.length == 0) {
		q.front = c.next
		if q.front == nil {
			q.back = nil
		}
		c.next = nil
		q.spare = c
	}
	return val, true
}

// Drain removes values front to back, handing each to yield.
// Values after the one for which yield returns false stay queued.
func (q *Queue[T]) Drain(yield func(T) bool) {
	for {
		val, ok := q.Shift()
		if !ok || !yield(val) {
			return
		}
	}
}
