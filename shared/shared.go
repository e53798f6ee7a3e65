package shared

import (
	"sync"
)

// Owner holds one value and is the only capability that can change it.
// Owners are safe for concurrent use and must not be copied.
type Owner[T any] struct {
	mu  sync.RWMutex
	val T
}

// NewOwner creates an owner holding initial.
func NewOwner[T any](initial T) *Owner[T] {
	return &Owner[T]{val: initial}
}

// Mutate applies fn to the held value under the write lock. The change is
// visible to every view as soon as Mutate returns.
func (o *Owner[T]) Mutate(fn func(*T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.val)
}

// Store replaces the held value.
func (o *Owner[T]) Store(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.val = v
}

// Load returns a copy of the current value.
func (o *Owner[T]) Load() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.val
}

// View issues a read-only live view of the owner's value. Any number of
// views can exist at once.
func (o *Owner[T]) View() View[T] {
	return View[T]{owner: o}
}

// View is a read-only capability over an Owner's value: it can load, and
// nothing else. Views are plain values; copies are independent and all read
// through to the same owner. The zero View is unbound.
type View[T any] struct {
	owner *Owner[T]
}

// Load returns a copy of the owner's current value, or the zero value of T
// for an unbound view.
func (v View[T]) Load() T {
	if v.owner == nil {
		var zero T
		return zero
	}
	return v.owner.Load()
}

// Valid reports whether the view is bound to an owner.
func (v View[T]) Valid() bool {
	return v.owner != nil
}
