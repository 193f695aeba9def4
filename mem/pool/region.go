package pool

import "unsafe"

// region is one OS-level anonymous mapping, subdivided into contiguous
// blocks. Regions are created on demand when no existing free block fits a
// request and are released back to the mapper once every block in them is
// free again.
type region struct {
	data []byte
	base uintptr
	end  uintptr // exclusive
}

func newRegion(data []byte) *region {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	return &region{
		data: data,
		base: base,
		end:  base + uintptr(len(data)),
	}
}

// size returns the region's total capacity in bytes.
func (r *region) size() int { return len(r.data) }

// first returns the region's first block header.
func (r *region) first() *blockHeader {
	return headerAt(r.base)
}

// reset reinitializes the region as one spanning free block, as on first
// map. Used when a region comes back out of the reuse cache.
func (r *region) reset() {
	h := r.first()
	h.markFree(r.size())
	h.prevSize = 0
	h.guard = 0
}

// findRegion locates the region containing addr via binary search over the
// base-sorted region table. Returns nil when addr is not pool memory.
func (p *Pool) findRegion(addr uintptr) *region {
	lo, hi := 0, len(p.regions)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		r := p.regions[mid]
		switch {
		case addr < r.base:
			hi = mid - 1
		case addr >= r.end:
			lo = mid + 1
		default:
			return r
		}
	}
	return nil
}

// insertRegion adds r to the region table, keeping it sorted by base.
func (p *Pool) insertRegion(r *region) {
	lo, hi := 0, len(p.regions)
	for lo < hi {
		mid := (lo + hi) >> 1
		if p.regions[mid].base < r.base {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	p.regions = append(p.regions, nil)
	copy(p.regions[lo+1:], p.regions[lo:])
	p.regions[lo] = r
}

// removeRegion drops r from the region table.
func (p *Pool) removeRegion(r *region) {
	for i, cand := range p.regions {
		if cand == r {
			p.regions = append(p.regions[:i], p.regions[i+1:]...)
			return
		}
	}
}
