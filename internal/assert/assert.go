//go:build debug

package assert

import "fmt"

// Count panics if a reference count went negative.
// Only enabled with -tags debug.
func Count(method string, count int64) {
	if count < 0 {
		panic(fmt.Sprintf("%s: count %d < 0", method, count))
	}
}

// Borrow panics if a borrow state is outside [-1, +inf).
// Only enabled with -tags debug.
func Borrow(method string, state int) {
	if state < -1 {
		panic(fmt.Sprintf("%s: borrow state %d < -1", method, state))
	}
}
