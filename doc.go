// Package resourceguard provides ownership-safe wrappers for operating
// system resources.
//
// The library pairs an exclusive, transfer-only file handle with a
// single-owner shared value mechanism, so resource lifetimes stay explicit
// and every release happens exactly once even as ownership moves across a
// program.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	resourceguard/       Root package with the Dropper lifecycle interface
//	├── handle/          Exclusive file handles: open, transfer, bounded read, close once
//	├── shared/          Single-owner mutable values with read-only live views
//	├── track/           Lifecycle registry that audits every live handle
//	├── watcher/         Config loading and change-driven updates through views
//	└── errors/          Structured error types for open/release/watch failures
//
// # Quick Start
//
// Open a file and read it in bounded chunks:
//
//	f, err := handle.Open("/var/log/syslog")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	for chunk := f.ReadChunk(1024); len(chunk) > 0; chunk = f.ReadChunk(1024) {
//	    process(chunk)
//	}
//
// Move ownership without duplicating the descriptor:
//
//	g := handle.Transfer(f) // f is now empty; g owns the descriptor
//	defer g.Close()         // closing f as well is a harmless no-op
//
// Share a value while keeping mutation with a single owner:
//
//	owner := shared.NewOwner(watcher.Config{Hostname: "localhost", Port: 80})
//	view := owner.View()
//	owner.Mutate(func(c *watcher.Config) { c.Port++ })
//	fmt.Println(view.Load().Port) // 81
//
// # Ownership Discipline
//
// At most one handle owns a descriptor at any time. Transfers empty the
// source before the destination becomes usable, so no interleaving can
// observe two owners. An emptied handle stays valid as an object: it can be
// queried, closed (no-op) and reused as a transfer target, but it reads
// nothing and releases nothing.
//
// Close releases the descriptor exactly once. Failures are logged through
// the package logger and reported on the first call only; the handle is
// considered released regardless of the outcome, matching the usual
// semantics of close(2).
//
// Views issued by a shared.Owner carry no mutating operations. They read
// through to the owner's current value, so an update made through
// Owner.Mutate is visible to every view issued earlier. Mutating a value a
// view returned affects only that copy.
//
// # Thread Safety
//
// Handles, owners and registries are internally synchronized and safe for
// concurrent use. Views are plain values; copies of a view are independent
// and each is safe to use from any goroutine. The ownership rules above are
// about lifetime, not locking: a transferred-from handle remains safe to
// call, it simply no longer owns anything.
package resourceguard
