// Package pool implements an mmap-backed region/block allocator for
// deterministic, collector-free memory management.
//
// # Overview
//
// A Pool obtains memory from the operating system in regions (anonymous
// mappings, one page or more) and carves each region into contiguous
// blocks: a 24-byte header directly followed by the payload. Freed blocks
// coalesce with free physical neighbors in the same region, and a region
// whose blocks are all free again is unmapped, so a quiescent pool holds no
// memory at all.
//
// # Allocation Policy
//
// Free blocks live in segregated free lists: a configurable table of size
// classes (linear buckets for small blocks, geometric buckets for medium
// ones), one min-heap per class keyed on (size, address), plus a linked
// list for blocks above the class ceiling. Allocation is deterministic best
// fit: classes are searched in ascending order and the smallest fitting
// block wins, with the lowest address breaking ties. When the remainder of
// a chosen block could host a legal block of its own, the block is split
// and the tail returned to the free lists; otherwise the whole block is
// consumed.
//
// # Usage
//
//	p, err := pool.New()
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	buf, err := p.Allocate(256)
//	if err != nil {
//	    return err
//	}
//	// ... use buf ...
//	err = p.Deallocate(buf)
//
// Pool satisfies mem.Allocator, so the lifecycle primitives work against it
// directly:
//
//	v := mem.MakeValue[int64](p, 42)
//	mem.Dispose(p, &v)
//
// # Resizing
//
// ReallocateInPlace never moves a block: shrinks split off the tail when it
// can stand alone, and grows absorb the physically next block when it is
// free and large enough, failing with mem.ErrCannotGrow (and touching
// nothing) otherwise. Reallocate tries the in-place path first and falls
// back to allocate-copy-free.
//
// # Failure Semantics
//
// Every failure is an error value: mem.ErrNoSpace when the OS refuses a
// mapping, mem.ErrSizeOverflow when size arithmetic would wrap,
// mem.ErrBadSize for negative sizes, and mem.ErrBadPointer for blocks the
// pool does not own (including double frees, which the header's sign bit
// detects cheaply). A zero-size Allocate returns a valid empty slice.
//
// # Options
//
//   - WithMapper: inject the OS mapping shim (tests use a counting mock)
//   - WithSizeClasses: pick a size-class profile (Balanced is the default)
//   - WithRegionSize: default region mapping size (64 KiB default)
//   - WithRegionCache: park up to n emptied regions for reuse
//   - WithGuards: xxhash check words over block headers, verified on free
//
// # Thread Safety
//
// Pool is not thread-safe. Nothing protects the region and block lists;
// callers sharing a Pool across goroutines must synchronize externally.
// There are no blocking operations beyond the map/unmap syscalls themselves
// and no background reclamation: every operation runs to completion on the
// calling goroutine.
package pool
