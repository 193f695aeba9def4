package mem

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates the allocator could not satisfy the request.
	ErrNoSpace = errors.New("mem: no space for allocation")

	// ErrBadPointer indicates a block that this allocator did not produce,
	// or one that has already been deallocated.
	ErrBadPointer = errors.New("mem: pointer not owned by this allocator")

	// ErrBadSize indicates a negative or otherwise invalid size request.
	ErrBadSize = errors.New("mem: invalid allocation size")

	// ErrSizeOverflow indicates size arithmetic that would wrap.
	ErrSizeOverflow = errors.New("mem: size arithmetic overflow")

	// ErrCannotGrow indicates an in-place resize that the adjacent memory
	// cannot accommodate. The block is left unmodified.
	ErrCannotGrow = errors.New("mem: cannot grow block in place")

	// ErrClosed indicates an operation on a closed allocator.
	ErrClosed = errors.New("mem: allocator closed")

	// ErrShortBuffer indicates caller-supplied memory smaller than the type
	// being emplaced.
	ErrShortBuffer = errors.New("mem: buffer too small for type")

	// ErrBadAlignment indicates caller-supplied memory whose base address is
	// not aligned for the type being emplaced.
	ErrBadAlignment = errors.New("mem: buffer misaligned for type")
)

// AllocError is the fatal construction-failure condition raised (via panic)
// by Make, MakeValue and MakeSlice when the backing allocator cannot provide
// memory. It is meant to terminate the process, not to be caught and
// retried: retrying without freeing something else first is rarely
// well-defined in a collector-free design.
type AllocError struct {
	Size int   // requested size in bytes
	Err  error // underlying allocator failure
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("mem: allocation of %d bytes failed: %v", e.Size, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }
