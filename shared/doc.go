// Package shared provides single-owner mutable values with read-only views.
//
// An Owner holds one value and is the only capability that can change it.
// Views issued by the owner read through to the current value but expose no
// mutating operation, so "who can change this" is answered by the type
// system rather than by convention.
//
// # Owner and View
//
//	owner := shared.NewOwner(Config{Port: 80})
//	view := owner.View()
//
//	owner.Mutate(func(c *Config) { c.Port++ })
//	view.Load().Port // 81: views are live, not snapshots
//
// # Copies
//
// Load returns a copy. Mutating a loaded copy never affects the shared
// value; changes go through Owner.Mutate or Owner.Store. Views themselves
// are small values, cheap to copy and to pass around.
//
// # Value Types Only
//
// The read-only guarantee is exactly as deep as T's type. If T contains
// slices, maps or pointers, every loaded copy shares those references with
// the owner, and a write through them bypasses the owner entirely. Keep T a
// plain value type; the package tests demonstrate how a reference field
// defeats the discipline.
//
// # Lifetime
//
// A view holds its owner in memory, so loading through a view is always
// safe. What the type cannot express is staleness: a view used after its
// owner's part of the program has shut down still reads the last value
// written. Treat a view's useful life as bounded by its owner's.
package shared
