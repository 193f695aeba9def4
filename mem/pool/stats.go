package pool

// Stats holds allocator counters for instrumentation and testing. Map and
// unmap counts in particular let tests prove that emptied regions really go
// back to the OS (map count equals unmap count once everything is freed).
type Stats struct {
	AllocCalls int // total Allocate calls
	AllocFast  int // allocations satisfied from existing free blocks
	AllocSlow  int // allocations that required mapping a new region
	FreeCalls  int // total Deallocate calls

	SplitCount       int // blocks split during allocation or shrink
	CoalesceForward  int // merges with the physically next block
	CoalesceBackward int // merges with the physically previous block

	GrowCalls int   // regions created (mapped or reused from cache)
	GrowBytes int64 // total bytes of regions created

	BytesAllocated int64 // whole-block bytes handed out, headers included
	BytesFreed     int64 // whole-block bytes returned

	Maps   int // mapper Map calls
	Unmaps int // mapper Unmap calls

	CacheParks int // empty regions parked in the reuse cache
	CacheHits  int // regions reused from the cache instead of mapping

	LiveRegions int // regions currently in the region table

	HeapPushes  int // free-list heap pushes
	HeapRemoves int // free-list heap pops and removals
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	s := p.stats
	s.LiveRegions = len(p.regions)
	return s
}
