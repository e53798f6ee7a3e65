// Package track audits the lifecycle of exclusive resource handles.
//
// A Registry records every live resource as one slot in a handle table and
// emits an event for each lifecycle step, so ownership discipline becomes
// observable: a descriptor tracked twice, a release that never happens, or a
// release that happens twice all show up in events and logs.
//
// # Lifecycle
//
// A tracked resource moves through a fixed set of steps:
//
//	opened         - a handle acquired the resource
//	transferred    - ownership moved to another handle (resource stays live)
//	detached       - the resource left the handle discipline deliberately
//	released       - the resource was returned to the OS
//	release_failed - the release was attempted and reported an error
//
// Exactly one of released/detached/release_failed ends a slot's life; the
// slot is then reused for later resources.
//
// # Registry
//
// The Registry maps integer handles to live resources:
//
//	reg := track.NewRegistry()
//
//	// Register a live resource, get a tracking handle
//	h := reg.Add("server.log", fd, owner)
//
//	// Ownership moved
//	reg.Transfer(h, newOwner)
//
//	// Resource returned to the OS
//	reg.Release(h, closeErr)
//
// # Observers
//
// Register observers to follow lifecycle events:
//
//	reg.Subscribe(obs) // obs.OnHandleEvent(e) per event
//
// Observers run synchronously on the goroutine performing the operation;
// they must not call back into the registry.
//
// # Shutdown
//
// Resources are not garbage collected. Clear drops every live owner that
// implements the root Dropper interface and releases the rest. Close does
// the same, then shuts the registry down and returns an aggregated error
// naming each handle that was still alive: anything live at Close is a leak.
package track
