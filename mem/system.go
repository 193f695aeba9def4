package mem

import (
	"unsafe"

	"github.com/memkit/memkit/internal/align"
)

// SystemAllocator is a thin wrapper over the process's general-purpose
// allocator, which in Go is the runtime heap. It is stateless and safe to
// share; Deallocate simply drops the block so the runtime can reclaim it.
//
// Blocks are carved from word-sized backing arrays so the base address is
// always align.Word aligned regardless of the requested size (a bare
// make([]byte, n) gives no alignment guarantee for small n).
type SystemAllocator struct{}

// NewSystem returns a SystemAllocator. All instances are equivalent.
func NewSystem() *SystemAllocator {
	return &SystemAllocator{}
}

// Allocate returns a zeroed block of at least size bytes. The block's
// capacity is rounded up to a whole number of words; ReallocateInPlace can
// grow into that slack.
func (s *SystemAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrBadSize
	}
	if size == 0 {
		return emptyBlock(), nil
	}
	words, ok := align.CheckedAdd(size, align.Word-1)
	if !ok {
		return nil, ErrSizeOverflow
	}
	words /= align.Word

	backing := make([]uint64, words)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&backing[0])), words*align.Word)
	return buf[:size], nil
}

// Deallocate drops the block. The runtime heap has no explicit free; the
// memory is reclaimed once unreferenced. Any slice is accepted because the
// runtime, not this wrapper, owns the bookkeeping.
func (s *SystemAllocator) Deallocate(buf []byte) error {
	return nil
}

// Reallocate resizes *buf, reusing the existing backing capacity when it
// suffices and copying into a fresh block otherwise.
func (s *SystemAllocator) Reallocate(buf *[]byte, newSize int) error {
	if buf == nil {
		return ErrBadPointer
	}
	if newSize < 0 {
		return ErrBadSize
	}
	if newSize == 0 {
		old := *buf
		if err := s.Deallocate(old); err != nil {
			return err
		}
		*buf = emptyBlock()
		return nil
	}
	if err := s.ReallocateInPlace(buf, newSize); err == nil {
		return nil
	}

	old := *buf
	fresh, err := s.Allocate(newSize)
	if err != nil {
		return err
	}
	copy(fresh, old)
	if err := s.Deallocate(old); err != nil {
		return err
	}
	*buf = fresh
	return nil
}

// ReallocateInPlace resizes *buf within the backing array's capacity. It
// fails with ErrCannotGrow, mutating nothing, when newSize exceeds that
// capacity.
func (s *SystemAllocator) ReallocateInPlace(buf *[]byte, newSize int) error {
	if buf == nil {
		return ErrBadPointer
	}
	if newSize < 0 {
		return ErrBadSize
	}
	old := *buf
	if newSize <= len(old) {
		*buf = old[:newSize]
		return nil
	}
	if newSize <= cap(old) {
		*buf = old[:newSize]
		return nil
	}
	return ErrCannotGrow
}

// Alignment reports the guaranteed base alignment of returned blocks.
func (s *SystemAllocator) Alignment() int {
	return align.Word
}
