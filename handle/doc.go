// Package handle provides exclusive ownership of open files.
//
// A File owns at most one OS file. Ownership is explicit: it is acquired by
// Open, moved by Transfer and TransferFrom, and ends with exactly one
// release in Close. Handles cannot be duplicated, only moved, so a
// descriptor is never closed twice and never left to two owners.
//
// # Ownership
//
// Every File is in one of two states: owning, or empty. Open returns an
// owning handle or an error, never an empty handle. The zero value of File
// is empty. Empty handles are inert but safe: they read nothing, Close on
// them is a no-op, and they can serve as transfer targets.
//
//	f, err := handle.Open("server.log")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
// # Transfers
//
// Transfer builds a new handle around the resource and empties the source
// before the new handle becomes visible:
//
//	g := handle.Transfer(f)
//	f.Alive() // false
//	g.Alive() // true
//
// TransferFrom moves into an existing handle. A resource the destination
// already owned is released as part of the move, so assignment can never
// leak a descriptor:
//
//	var sink handle.File
//	sink.TransferFrom(g) // g is empty; sink owns the file
//
// # Reads
//
// ReadChunk performs one bounded read of at most MaxChunk bytes and returns
// whatever that single read produced. An empty result means the handle is
// empty, the file is exhausted, or the read failed; the distinction is
// deliberately not surfaced, callers that care about partial content keep
// calling until the result is empty.
//
// # Release
//
// Close releases the descriptor exactly once. A close failure is logged via
// the package logger and returned from the first Close; the handle counts
// as released regardless, and all later closes return nil. Nothing retries
// a failed close: the descriptor state after a failed close(2) is
// undefined, so retrying risks closing a stranger's descriptor.
//
// # Tracking
//
// Wire a track.Registry into the package to audit handle lifecycles:
//
//	reg := track.NewRegistry()
//	handle.SetRegistry(reg)
//
// Every Open, Transfer, Detach and Close is then visible to registry
// observers, and reg.Owned reports live descriptors.
package handle
