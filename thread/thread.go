// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package thread runs functions on their own goroutines and joins them,
// turning a panic into an error the joiner can inspect.
package thread

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// PanicError is returned by Join and Wait when the function panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("thread panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// call runs f and converts a panic into a *PanicError.
func call(f func() error) (err error) {
	end := false
	defer func() {
		if end {
			return
		}
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	err = f()
	end = true
	return
}

// JoinHandle waits for a spawned function.
type JoinHandle struct {
	done chan struct{}
	err  error
}

// Spawn runs f on a new goroutine.
func Spawn(f func()) *JoinHandle {
	return SpawnErr(func() error {
		f()
		return nil
	})
}

// SpawnErr is like Spawn for functions that return an error.
func SpawnErr(f func() error) *JoinHandle {
	h := &JoinHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = call(f)
	}()
	return h
}

// Join blocks until the function returns. It returns the function's
// error, or a *PanicError if it panicked.
func (h *JoinHandle) Join() error {
	<-h.done
	return h.err
}

// Finished reports whether the function has returned.
func (h *JoinHandle) Finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Group runs functions concurrently and collects their errors.
// Unlike errgroup, a failing function does not cancel the others, and a
// panic is recovered into a *PanicError.
// The zero value is ready to use.
type Group struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	merr *multierror.Error
}

// Go runs f on a new goroutine.
func (g *Group) Go(f func() error) {
	g.wg.Go(func() {
		if err := call(f); err != nil {
			g.mu.Lock()
			g.merr = multierror.Append(g.merr, err)
			g.mu.Unlock()
		}
	})
}

// Wait blocks until every function started with Go returns, then reports
// their errors as one *multierror.Error in the order they were recorded.
// Wait resets the collected errors, so the Group can be reused.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	merr := g.merr
	g.merr = nil
	g.mu.Unlock()
	return merr.ErrorOrNil()
}
