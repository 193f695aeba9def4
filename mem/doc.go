// Package mem provides the manual memory-management core of memkit: a
// pluggable allocator contract, lifecycle primitives built on top of it, and
// ownership wrappers that compose the two.
//
// # Overview
//
// Everything in memkit that needs raw memory goes through the Allocator
// interface. Two implementations ship with the library:
//
//   - SystemAllocator: a thin wrapper over the process's general-purpose
//     allocator (the Go runtime heap), used as the default backing store
//   - pool.Pool: an mmap-backed region/block allocator for deterministic,
//     collector-free allocation (see the mem/pool package)
//
// The lifecycle primitives (Emplace, Make, Dispose, Move, MoveEmplace, Swap,
// Resize) are generic over arbitrary value types and are written purely in
// terms of the Allocator contract, so they work identically against either
// backing allocator.
//
// # Allocator Contract
//
// All failure at the allocator layer is communicated through error values,
// never panics:
//
//	buf, err := a.Allocate(128)     // at least 128 bytes, Alignment()-aligned
//	err = a.Reallocate(&buf, 256)   // in place if possible, else move+copy
//	err = a.ReallocateInPlace(&buf, 64) // never moves; fails without side effects
//	err = a.Deallocate(buf)         // only blocks this allocator produced
//
// A zero-size Allocate returns a valid empty slice, not an error. An
// allocator instance must be used consistently for every operation on a
// given block; mixing allocators for the same block is undefined.
//
// # Lifecycle Primitives
//
// Make allocates and constructs in one step:
//
//	p := mem.Make[Point](a)          // zeroed Point owned by a
//	q := mem.MakeValue(a, Point{1, 2})
//	defer mem.Dispose(a, &q)         // finalize, deallocate, nil out
//
// Make is the single place in the design where failure escalates instead of
// propagating as a value: a failed construction has no well-defined fallback,
// so Make panics with *AllocError. Callers that need graceful degradation
// under memory pressure should pre-flight with Allocate directly.
//
// Types that need teardown implement Finalizer; Dispose runs Finalize through
// Go's dynamic dispatch before releasing the memory, which replaces
// destructor-chain walking for embedded and interface-held types.
//
// # Ownership Wrappers
//
// RefCounted[T] couples a value with a strong count allocated adjacent to it;
// the value is finalized and deallocated exactly when the count reaches zero.
// Unique[T] holds a value with move-only semantics: Transfer and MoveTo empty
// the source, and copying the handle is flagged by go vet.
//
// # Default Allocator
//
// Default() returns a process-lifetime SystemAllocator singleton, lazily
// initialized on first use. It is a convenience fallback only; every API in
// the package accepts an explicit allocator, and passing one is preferred.
//
// # Thread Safety
//
// The lifecycle primitives and wrappers add no synchronization of their own.
// SystemAllocator is stateless and safe to share; pool.Pool is documented
// single-threaded. Callers sharing an allocator or a RefCounted value across
// goroutines must synchronize externally.
package mem
