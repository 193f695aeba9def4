package pool

import "errors"

// The allocator-contract failures (no space, bad pointer, bad size, size
// overflow, cannot grow, closed) are the shared sentinels in the mem
// package, so callers can errors.Is against them without knowing which
// allocator they hold. Only pool-specific conditions live here.

// ErrCorrupted indicates a block header whose guard word no longer matches,
// meaning something wrote past a payload boundary. Raised only when the
// pool was built WithGuards.
var ErrCorrupted = errors.New("pool: block header corrupted")
