// Package share defines the common contracts of the shared-ownership and
// concurrency primitives in its subpackages.
//
// Two families, never mixed:
//   - rc, cell, tree: single goroutine, never block
//   - arc, lock, mpsc, atom, thread: safe from any goroutine
//
// Memory is reclaimed by the garbage collector. What the counted
// primitives guarantee is finalization: a value is dropped exactly once,
// when its last strong owner goes away.
package share

// Dropper is implemented by values that own other counted handles or
// external resources. Drop is called exactly once, when the last strong
// owner of the value is dropped.
type Dropper interface {
	Drop()
}

// Drop finalizes the value at v if *T or T implements Dropper.
// It is a no-op otherwise.
func Drop[T any](v *T) {
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
		return
	}
	if d, ok := any(*v).(Dropper); ok {
		d.Drop()
	}
}
