// Package mpi provides type-safe bindings over a native MPI engine.
//
// The package wraps the engine's opaque handles behind typed objects and
// enforces two disciplines the raw C ABI cannot: memory handed to a
// non-blocking operation stays valid and unaliased until the operation
// completes, and values crossing process boundaries carry a datatype
// descriptor matching their in-memory layout.
//
// A program initializes the library once via Init, communicates through the
// returned Universe's communicators, and tears down via Finalize:
//
//	u := mpi.Init()
//	if u == nil {
//		// engine already initialized elsewhere
//	}
//	defer u.Finalize()
//	world := u.World()
//
// Blocking operations return when the transfer is complete. Non-blocking
// operations return a Request that borrows its buffer and must be driven to
// a terminal state through Wait, a successful Test, or Cancel; discarding an
// unresolved Request is a programming error the library turns into a crash
// rather than a silent data race.
package mpi
