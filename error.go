package share

import "errors"

var (
	ErrClosed                 = errors.New("closed")
	ErrEmpty                  = errors.New("empty")
	ErrPoisoned               = errors.New("poisoned")
	ErrWouldBlock             = errors.New("would block")
	ErrReleased               = errors.New("released")
	ErrAlreadyBorrowed        = errors.New("already borrowed")
	ErrAlreadyMutablyBorrowed = errors.New("already exclusively borrowed")
	ErrCountOverflow          = errors.New("reference count overflow")
)
