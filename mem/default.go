package mem

import "sync"

var (
	defaultOnce  sync.Once
	defaultAlloc Allocator
)

// Default returns the process-wide default allocator, lazily initialized on
// first use and never torn down before process exit. It backs every API in
// this package that is handed a nil allocator.
//
// Prefer passing an allocator explicitly; the singleton exists as a
// convenience top-level binding, not as the primary wiring mechanism.
func Default() Allocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewSystem()
	})
	return defaultAlloc
}
