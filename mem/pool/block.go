package pool

import (
	"unsafe"

	"github.com/memkit/memkit/internal/align"
)

const (
	// headerSize is the metadata header placed directly before every
	// payload. Must stay a multiple of align.Word so payloads inherit the
	// header's alignment.
	headerSize = int(unsafe.Sizeof(blockHeader{}))

	// minPayload is the smallest payload worth carving a block for.
	minPayload = 8

	// minBlockSize is the smallest legal whole block. Splits that would
	// leave a remainder below this absorb it into the allocation instead.
	minBlockSize = headerSize + minPayload
)

// blockHeader precedes every payload inside a region. Blocks within a
// region are contiguous: header, payload, next header, and so on, with the
// sum of whole-block sizes equal to the region's capacity.
//
// size is the whole-block size including the header, negated while the
// block is allocated (the sign bit doubles as the in-use flag). prevSize is
// the whole-block size of the physically preceding block in the same
// region, zero for the region's first block; it makes backward coalescing a
// single pointer subtraction. guard holds a check word over the header when
// guards are enabled, zero otherwise.
type blockHeader struct {
	size     int64
	prevSize int64
	guard    uint64
}

// total returns the whole-block size regardless of allocation state.
func (h *blockHeader) total() int {
	if h.size < 0 {
		return int(-h.size)
	}
	return int(h.size)
}

// isFree reports whether the block is on a free list.
func (h *blockHeader) isFree() bool { return h.size > 0 }

// markAllocated flips the block to the allocated state at the given
// whole-block size.
func (h *blockHeader) markAllocated(total int) { h.size = -int64(total) }

// markFree flips the block to the free state at the given whole-block size.
func (h *blockHeader) markFree(total int) { h.size = int64(total) }

// payload returns the address of the first payload byte.
func (h *blockHeader) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), headerSize)
}

// addr returns the block header's address.
func (h *blockHeader) addr() uintptr { return uintptr(unsafe.Pointer(h)) }

// headerOf recovers the block header sitting directly before a payload
// address. The caller must have validated that p points into a region at a
// payload boundary.
func headerOf(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(p, -headerSize))
}

// headerAt casts a raw address to a block header.
func headerAt(addr uintptr) *blockHeader {
	return (*blockHeader)(unsafe.Pointer(addr))
}

// usable returns the payload capacity of a whole-block size.
func usable(total int) int { return total - headerSize }

// blockTotal returns the whole-block size needed for a payload of size
// bytes, or false when the arithmetic would wrap.
func blockTotal(size int) (int, bool) {
	aligned, ok := align.CheckedAdd(size, align.Word-1)
	if !ok {
		return 0, false
	}
	aligned &^= align.Word - 1
	need, ok := align.CheckedAdd(aligned, headerSize)
	if !ok {
		return 0, false
	}
	if need < minBlockSize {
		need = minBlockSize
	}
	return need, true
}
