//go:build !debug

package assert

// Count is a no-op in production.
// Enable with -tags debug for runtime checks.
func Count(string, int64) {}

// Borrow is a no-op in production.
// Enable with -tags debug for runtime checks.
func Borrow(string, int) {}
