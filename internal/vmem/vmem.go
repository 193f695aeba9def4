// Package vmem is the operating-system boundary of the allocator core: a
// minimal shim over anonymous memory mappings.
//
// The pool allocator obtains every region through a Mapper and returns it
// through the same Mapper. Keeping this surface behind an interface gives
// tests a counting seam (map calls must equal unmap calls once all regions
// are released) and keeps the platform-specific syscalls out of the
// allocator logic.
package vmem

import "os"

// Mapper provides anonymous, read-write memory mappings.
//
// Map returns at least n bytes of zeroed memory. The returned slice's length
// is exactly n; implementations must not hand out partial mappings. Unmap
// releases a slice previously returned by Map on the same Mapper. Mixing
// mappers for the same slice is undefined.
type Mapper interface {
	Map(n int) ([]byte, error)
	Unmap(b []byte) error
	PageSize() int
}

// Sys is the process-wide system mapper backed by the platform's anonymous
// mapping facility (mmap on unix). It is stateless and safe to share.
var Sys Mapper = sysMapper{}

type sysMapper struct{}

func (sysMapper) PageSize() int { return os.Getpagesize() }
