package mem

import "unsafe"

// Allocator is the capability contract every concrete allocation strategy
// satisfies. Containers and the lifecycle primitives consume only this
// surface.
//
// Implementations:
//   - SystemAllocator: runtime-heap backed, the process default
//   - pool.Pool: mmap-backed region/block allocator (mem/pool)
//
// All methods report failure through error values; none panic. An allocator
// must be used consistently for every operation on a given block: passing a
// block to a different allocator's Deallocate or Reallocate is undefined.
type Allocator interface {
	// Allocate returns a block of at least size bytes whose base address is
	// aligned to Alignment(). A zero size yields a valid empty slice, never
	// an error. Negative sizes fail with ErrBadSize; exhaustion fails with
	// ErrNoSpace; requests whose internal arithmetic would wrap fail with
	// ErrSizeOverflow.
	Allocate(size int) ([]byte, error)

	// Deallocate releases a block previously returned by Allocate,
	// Reallocate or ReallocateInPlace on this same allocator. An empty
	// block is a no-op success. Blocks this allocator did not produce fail
	// with ErrBadPointer.
	Deallocate(buf []byte) error

	// Reallocate resizes *buf to newSize bytes, in place when the adjacent
	// memory allows it and otherwise by allocating a new block, copying
	// min(old, new) bytes and releasing the old block. On failure *buf is
	// left unmodified. A newSize of zero deallocates and leaves an empty
	// slice.
	Reallocate(buf *[]byte, newSize int) error

	// ReallocateInPlace resizes *buf without moving its base address. It
	// fails with ErrCannotGrow, mutating nothing, when the adjacent memory
	// cannot accommodate the new size.
	ReallocateInPlace(buf *[]byte, newSize int) error

	// Alignment is the minimum guaranteed base alignment, in bytes, of
	// every block this allocator returns.
	Alignment() int
}

// zerobase backs every zero-size allocation, mirroring the runtime
// convention that a zero-size allocation yields a valid non-nil pointer
// distinguishable from failure.
var zerobase byte

// emptyBlock returns the canonical zero-length block.
func emptyBlock() []byte {
	return unsafe.Slice(&zerobase, 0)
}
