package pool

import (
	"container/heap"
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/eapache/queue"

	"github.com/memkit/memkit/internal/align"
	"github.com/memkit/memkit/internal/vmem"
	"github.com/memkit/memkit/mem"
)

// Runtime trace flag, controlled by the MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

// DefaultRegionSize is the default mapping size for new regions (64 KiB).
// Requests that don't fit get a dedicated region sized to fit instead.
const DefaultRegionSize = 64 << 10

// Pool is an mmap-backed region/block allocator implementing
// mem.Allocator. Regions are anonymous mappings carved into contiguous
// header-prefixed blocks; freed blocks coalesce with free neighbors, and a
// region whose blocks are all free again is returned to the OS (or parked
// in a bounded reuse cache).
//
// Allocation policy is deterministic best fit: segregated free lists, one
// min-heap per size class keyed on (size, address), searched in ascending
// class order, with blocks above the class ceiling on a simple large list.
//
// Pool is not thread-safe. No internal locking protects the region and
// block lists; concurrent calls on the same Pool are a documented hazard,
// not a supported configuration.
type Pool struct {
	mapper     vmem.Mapper
	pageSize   int
	regionSize int

	sizeTable *sizeClassTable
	freeLists []freeList
	largeFree *largeBlock

	// byAddr gives O(1) lookup of a size-class free cell by block address,
	// for removals during coalescing.
	byAddr map[uintptr]*freeCell

	// regions is sorted by base address for O(log R) pointer-to-region
	// resolution in Deallocate.
	regions []*region

	// cache parks emptied default-size regions for reuse.
	cache    *queue.Queue
	cacheCap int

	guards bool
	closed bool

	freeCellPool sync.Pool
	stats        Stats
}

// New creates a Pool. With no options it maps 64 KiB regions through the
// system mapper, uses the Balanced size-class profile, releases emptied
// regions immediately, and runs without header guards.
func New(opts ...Option) (*Pool, error) {
	p := &Pool{
		mapper:     vmem.Sys,
		regionSize: DefaultRegionSize,
		byAddr:     make(map[uintptr]*freeCell, 64),
		freeCellPool: sync.Pool{
			New: func() any { return &freeCell{} },
		},
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.pageSize = p.mapper.PageSize()
	if p.pageSize <= 0 {
		return nil, fmt.Errorf("pool: mapper reports page size %d", p.pageSize)
	}
	rsize, ok := align.PageCeil(p.regionSize, p.pageSize)
	if !ok {
		return nil, fmt.Errorf("pool: region size %d overflows page rounding", p.regionSize)
	}
	p.regionSize = rsize

	if p.sizeTable == nil {
		p.sizeTable = newSizeClassTable(DefaultConfig)
	}
	p.freeLists = make([]freeList, p.sizeTable.numClasses)

	if p.cacheCap > 0 {
		p.cache = queue.New()
	}
	return p, nil
}

// Close releases every region, including cached ones, back to the OS. The
// pool is unusable afterwards; outstanding blocks become invalid.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, r := range p.regions {
		if err := p.mapper.Unmap(r.data); err != nil && firstErr == nil {
			firstErr = err
		}
		p.stats.Unmaps++
	}
	p.regions = nil

	if p.cache != nil {
		for p.cache.Length() > 0 {
			r := p.cache.Remove().(*region) //nolint:errcheck // cache holds only *region
			if err := p.mapper.Unmap(r.data); err != nil && firstErr == nil {
				firstErr = err
			}
			p.stats.Unmaps++
		}
	}

	p.freeLists = nil
	p.largeFree = nil
	p.byAddr = nil
	return firstErr
}

// Alignment reports the guaranteed base alignment of returned blocks.
func (p *Pool) Alignment() int { return align.Word }

// Allocate carves a block of at least size bytes out of the pool, mapping
// a new region when no free block fits.
func (p *Pool) Allocate(size int) ([]byte, error) {
	if p.closed {
		return nil, mem.ErrClosed
	}
	if size < 0 {
		return nil, mem.ErrBadSize
	}
	if size == 0 {
		return emptyBlock(), nil
	}
	need, ok := blockTotal(size)
	if !ok {
		return nil, mem.ErrSizeOverflow
	}
	p.stats.AllocCalls++

	cell := p.findFit(need)
	grew := false
	if cell == nil {
		if err := p.grow(need); err != nil {
			return nil, err
		}
		grew = true
		cell = p.findFit(need)
		if cell == nil {
			// A fresh region always hosts a block >= need; reaching here
			// means bookkeeping is inconsistent.
			return nil, mem.ErrNoSpace
		}
	}
	if grew {
		p.stats.AllocSlow++
	} else {
		p.stats.AllocFast++
	}

	h := headerAt(cell.addr)
	total := cell.size
	p.putFreeCell(cell)

	r := p.findRegion(h.addr())
	if r == nil {
		return nil, mem.ErrBadPointer
	}

	rem := total - need
	if rem >= minBlockSize {
		// Split: allocate the head, return the tail to the free list.
		p.stats.SplitCount++
		h.markAllocated(need)

		tail := headerAt(h.addr() + uintptr(need))
		tail.markFree(rem)
		tail.prevSize = int64(need)
		tail.guard = 0

		// The block after the original span now follows the tail.
		if succ := h.addr() + uintptr(total); succ < r.end {
			headerAt(succ).prevSize = int64(rem)
		}
		p.insertFreeCell(tail.addr(), rem)
		total = need
	} else {
		// Absorb the remainder rather than leave an illegal sliver.
		h.markAllocated(total)
	}
	p.seal(h)
	p.stats.BytesAllocated += int64(total)

	tracef("alloc %d -> block %d at %#x (grew=%v)", size, total, h.addr(), grew)
	return unsafe.Slice((*byte)(h.payload()), usable(total))[:size], nil
}

// Deallocate returns a block to the pool, coalescing it with free
// neighbors and releasing the region once it is entirely free.
func (p *Pool) Deallocate(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if p.closed {
		return mem.ErrClosed
	}
	r, h, err := p.resolve(buf)
	if err != nil {
		return err
	}

	total := h.total()
	p.stats.FreeCalls++
	p.stats.BytesFreed += int64(total)

	h.markFree(total)
	h.guard = 0
	return p.freeAndCoalesce(r, h)
}

// ReallocateInPlace resizes a block without moving it. Shrinks split off
// the remainder when it is large enough to stand alone; grows absorb the
// physically next block when it is free and large enough. On failure
// nothing is mutated.
func (p *Pool) ReallocateInPlace(buf *[]byte, newSize int) error {
	if buf == nil {
		return mem.ErrBadPointer
	}
	if p.closed {
		return mem.ErrClosed
	}
	if newSize < 0 {
		return mem.ErrBadSize
	}
	old := *buf
	if len(old) == 0 {
		if newSize == 0 {
			return nil
		}
		return mem.ErrCannotGrow
	}
	r, h, err := p.resolve(old)
	if err != nil {
		return err
	}
	need, ok := blockTotal(newSize)
	if !ok {
		return mem.ErrSizeOverflow
	}
	cur := h.total()

	switch {
	case need <= cur:
		if rem := cur - need; rem >= minBlockSize {
			// Shrink: keep the head, free the tail.
			p.stats.SplitCount++
			p.stats.BytesFreed += int64(rem)
			h.markAllocated(need)

			tail := headerAt(h.addr() + uintptr(need))
			tail.markFree(rem)
			tail.prevSize = int64(need)
			tail.guard = 0
			if err := p.freeAndCoalesce(r, tail); err != nil {
				return err
			}
		}
		// Remainders below the split threshold stay inside the block.

	default:
		next := h.addr() + uintptr(cur)
		if next >= r.end {
			return mem.ErrCannotGrow
		}
		nh := headerAt(next)
		if !nh.isFree() || cur+nh.total() < need {
			return mem.ErrCannotGrow
		}

		// Absorb the neighbor, then re-split any excess.
		p.removeFreeCellAt(next, nh.total())
		merged := cur + nh.total()
		p.stats.CoalesceForward++

		if rem := merged - need; rem >= minBlockSize {
			h.markAllocated(need)
			tail := headerAt(h.addr() + uintptr(need))
			tail.markFree(rem)
			tail.prevSize = int64(need)
			tail.guard = 0
			if err := p.freeAndCoalesce(r, tail); err != nil {
				return err
			}
		} else {
			h.markAllocated(merged)
			if succ := h.addr() + uintptr(merged); succ < r.end {
				headerAt(succ).prevSize = int64(merged)
			}
		}
		p.stats.BytesAllocated += int64(h.total() - cur)
	}

	p.seal(h)
	*buf = unsafe.Slice((*byte)(h.payload()), usable(h.total()))[:newSize]
	return nil
}

// Reallocate resizes a block, in place when the adjacent memory allows it
// and otherwise by moving to a fresh block and copying the overlapping
// prefix. On failure *buf is left unmodified.
func (p *Pool) Reallocate(buf *[]byte, newSize int) error {
	if buf == nil {
		return mem.ErrBadPointer
	}
	if p.closed {
		return mem.ErrClosed
	}
	if newSize < 0 {
		return mem.ErrBadSize
	}
	old := *buf
	if newSize == 0 {
		if len(old) > 0 {
			if err := p.Deallocate(old); err != nil {
				return err
			}
		}
		*buf = emptyBlock()
		return nil
	}
	if len(old) == 0 {
		fresh, err := p.Allocate(newSize)
		if err != nil {
			return err
		}
		*buf = fresh
		return nil
	}

	err := p.ReallocateInPlace(buf, newSize)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mem.ErrCannotGrow) {
		return err
	}

	fresh, err := p.Allocate(newSize)
	if err != nil {
		return err
	}
	copy(fresh, old)
	if err := p.Deallocate(old); err != nil {
		// Roll back so *buf stays valid.
		_ = p.Deallocate(fresh)
		return err
	}
	*buf = fresh
	return nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolve maps a payload slice back to its region and allocated block
// header, validating ownership, allocation state and the guard word.
func (p *Pool) resolve(buf []byte) (*region, *blockHeader, error) {
	base := unsafe.Pointer(unsafe.SliceData(buf))
	addr := uintptr(base)
	if !align.IsAligned(addr, align.Word) {
		return nil, nil, mem.ErrBadPointer
	}
	r := p.findRegion(addr)
	if r == nil || addr-r.base < uintptr(headerSize) {
		return nil, nil, mem.ErrBadPointer
	}
	h := headerOf(base)
	if h.isFree() {
		// Not an allocated block: a stale pointer or a double free.
		return nil, nil, mem.ErrBadPointer
	}
	total := h.total()
	if total < minBlockSize || h.addr()+uintptr(total) > r.end {
		return nil, nil, mem.ErrBadPointer
	}
	if err := p.check(h); err != nil {
		return nil, nil, err
	}
	return r, h, nil
}

// findFit returns the best-fit free cell for a whole-block size, searching
// size classes in ascending order and then the large list. Returns nil on
// miss; never grows.
func (p *Pool) findFit(need int) *freeCell {
	for sc := p.sizeTable.classOf(need); sc < len(p.freeLists); sc++ {
		if cell := p.allocFromClass(sc, need); cell != nil {
			return cell
		}
	}
	return p.allocFromLarge(need)
}

// allocFromClass takes the best-fitting cell from one size-class heap.
//
// Fast path: the heap minimum fits, so it is the best fit by definition.
// Slow path: the minimum is too small but larger cells in the class may
// fit; a bounded good-enough scan avoids O(n) worst cases at the cost of a
// little internal fragmentation.
func (p *Pool) allocFromClass(sc, need int) *freeCell {
	list := &p.freeLists[sc]
	if list.heap.Len() == 0 {
		return nil
	}

	if list.heap[0].size >= need {
		p.stats.HeapRemoves++
		cell := heap.Pop(&list.heap).(*freeCell) //nolint:errcheck // heap contains only *freeCell
		list.count--
		delete(p.byAddr, cell.addr)
		return cell
	}

	const (
		maxSlowPathScan = 32 // never scan more than this many cells
		fitTolerance    = 64 // accept cells within this many bytes of optimal
	)

	bestIdx := -1
	bestSize := int(^uint(0) >> 1)
	maxAcceptable := need + fitTolerance

	scanLimit := min(list.heap.Len(), maxSlowPathScan)
	for i := 1; i < scanLimit; i++ {
		cellSize := list.heap[i].size
		if cellSize < need {
			continue
		}
		if cellSize <= maxAcceptable {
			bestIdx = i
			break
		}
		if cellSize < bestSize {
			bestIdx = i
			bestSize = cellSize
		}
	}
	if bestIdx == -1 {
		return nil
	}

	p.stats.HeapRemoves++
	cell := heap.Remove(&list.heap, bestIdx).(*freeCell) //nolint:errcheck // heap contains only *freeCell
	list.count--
	delete(p.byAddr, cell.addr)
	return cell
}

// allocFromLarge takes the first fitting block from the large list.
func (p *Pool) allocFromLarge(need int) *freeCell {
	var prev *largeBlock
	for curr := p.largeFree; curr != nil; prev, curr = curr, curr.next {
		if curr.size < need {
			continue
		}
		if prev == nil {
			p.largeFree = curr.next
		} else {
			prev.next = curr.next
		}
		cell := p.getFreeCell()
		cell.addr = curr.addr
		cell.size = curr.size
		return cell
	}
	return nil
}

// insertFreeCell registers a free block with the appropriate free list.
func (p *Pool) insertFreeCell(addr uintptr, size int) {
	sc := p.sizeTable.classOf(size)
	if sc < len(p.freeLists) {
		cell := p.getFreeCell()
		cell.addr = addr
		cell.size = size
		cell.sc = sc

		p.stats.HeapPushes++
		heap.Push(&p.freeLists[sc].heap, cell)
		p.freeLists[sc].count++
		p.byAddr[addr] = cell
		return
	}
	p.largeFree = &largeBlock{addr: addr, size: size, next: p.largeFree}
}

// removeFreeCellAt unregisters a specific free block, identified by
// address, from its free list. Used when coalescing claims a neighbor.
func (p *Pool) removeFreeCellAt(addr uintptr, size int) {
	if sc := p.sizeTable.classOf(size); sc < len(p.freeLists) {
		cell := p.byAddr[addr]
		if cell == nil {
			return
		}
		p.stats.HeapRemoves++
		heap.Remove(&p.freeLists[sc].heap, cell.heapIndex)
		p.freeLists[sc].count--
		delete(p.byAddr, addr)
		p.putFreeCell(cell)
		return
	}

	var prev *largeBlock
	for curr := p.largeFree; curr != nil; prev, curr = curr, curr.next {
		if curr.addr != addr {
			continue
		}
		if prev == nil {
			p.largeFree = curr.next
		} else {
			prev.next = curr.next
		}
		return
	}
}

// freeAndCoalesce takes a block already marked free (and not on any free
// list), merges it with free physical neighbors, fixes the successor's
// back link, and either releases the region (block spans all of it) or
// inserts the result into the free lists.
func (p *Pool) freeAndCoalesce(r *region, h *blockHeader) error {
	sz := h.total()

	// Forward: the physically next block in the same region.
	if next := h.addr() + uintptr(sz); next < r.end {
		nh := headerAt(next)
		if nh.isFree() {
			p.stats.CoalesceForward++
			p.removeFreeCellAt(next, nh.total())
			sz += nh.total()
			h.markFree(sz)
		}
	}

	// Backward: via the prevSize link.
	if h.prevSize > 0 {
		ph := headerAt(h.addr() - uintptr(h.prevSize))
		if ph.isFree() {
			p.stats.CoalesceBackward++
			p.removeFreeCellAt(ph.addr(), ph.total())
			sz += ph.total()
			ph.markFree(sz)
			h = ph
		}
	}

	// The block after the merged span gets a fresh back link.
	if succ := h.addr() + uintptr(sz); succ < r.end {
		headerAt(succ).prevSize = int64(sz)
	}

	if sz == r.size() {
		// Nothing else lives here; hand the whole region back.
		return p.releaseRegion(r)
	}
	p.insertFreeCell(h.addr(), sz)
	return nil
}

// grow obtains a region able to host a whole block of size need, from the
// reuse cache when possible and from the mapper otherwise, and seeds it as
// one spanning free block.
func (p *Pool) grow(need int) error {
	rsize := p.regionSize
	if need > rsize {
		var ok bool
		rsize, ok = align.PageCeil(need, p.pageSize)
		if !ok {
			return mem.ErrSizeOverflow
		}
	}

	var r *region
	if p.cache != nil && p.cache.Length() > 0 && rsize <= p.regionSize {
		r = p.cache.Remove().(*region) //nolint:errcheck // cache holds only *region
		r.reset()
		p.stats.CacheHits++
		tracef("grow: reused cached region %#x (%d bytes)", r.base, r.size())
	} else {
		data, err := p.mapper.Map(rsize)
		if err != nil {
			return fmt.Errorf("%w: mapping %d-byte region: %v", mem.ErrNoSpace, rsize, err)
		}
		p.stats.Maps++
		r = newRegion(data)
		r.reset()
		tracef("grow: mapped region %#x (%d bytes) for need %d", r.base, rsize, need)
	}

	p.stats.GrowCalls++
	p.stats.GrowBytes += int64(r.size())
	p.insertRegion(r)
	p.insertFreeCell(r.base, r.size())
	return nil
}

// releaseRegion removes an entirely-free region from the pool, parking it
// in the reuse cache when configured and unmapping it otherwise.
func (p *Pool) releaseRegion(r *region) error {
	p.removeRegion(r)

	if p.cache != nil && r.size() == p.regionSize && p.cache.Length() < p.cacheCap {
		p.cache.Add(r)
		p.stats.CacheParks++
		tracef("release: parked region %#x", r.base)
		return nil
	}

	p.stats.Unmaps++
	tracef("release: unmapped region %#x (%d bytes)", r.base, r.size())
	if err := p.mapper.Unmap(r.data); err != nil {
		return fmt.Errorf("pool: unmap region: %w", err)
	}
	return nil
}

func (p *Pool) getFreeCell() *freeCell {
	cell, ok := p.freeCellPool.Get().(*freeCell)
	if !ok {
		return &freeCell{}
	}
	return cell
}

func (p *Pool) putFreeCell(cell *freeCell) {
	cell.heapIndex = -1
	cell.sc = 0
	p.freeCellPool.Put(cell)
}

// zerobase backs zero-size allocations: a valid non-nil empty block.
var zerobase byte

func emptyBlock() []byte {
	return unsafe.Slice(&zerobase, 0)
}

func tracef(format string, args ...any) {
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[POOL] "+format+"\n", args...)
	}
}
