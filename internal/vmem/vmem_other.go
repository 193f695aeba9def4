//go:build !linux && !darwin && !freebsd

package vmem

import "fmt"

// Fallback mapper for platforms without the unix anonymous-mapping path.
// Regions come from the runtime heap instead of the kernel; the allocator
// semantics above this shim are unchanged.

func (sysMapper) Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vmem: invalid mapping size %d", n)
	}
	return make([]byte, n), nil
}

func (sysMapper) Unmap(b []byte) error {
	return nil
}
