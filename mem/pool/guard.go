package pool

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// guardWord computes the check word stored in an allocated block's header:
// an xxhash64 over the header address and whole-block size. A payload
// overrun that clobbers the next header changes one of the inputs or the
// stored word itself, so the mismatch is caught on the next Deallocate or
// Reallocate of either block.
func guardWord(addr uintptr, total int) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(addr))
	binary.LittleEndian.PutUint64(b[8:16], uint64(total))
	return xxhash.Sum64(b[:])
}

// seal writes the guard word for an allocated block, or clears it when
// guards are off.
func (p *Pool) seal(h *blockHeader) {
	if p.guards {
		h.guard = guardWord(h.addr(), h.total())
	} else {
		h.guard = 0
	}
}

// check verifies an allocated block's guard word.
func (p *Pool) check(h *blockHeader) error {
	if !p.guards {
		return nil
	}
	if h.guard != guardWord(h.addr(), h.total()) {
		return ErrCorrupted
	}
	return nil
}
