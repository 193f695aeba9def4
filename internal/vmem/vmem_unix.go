//go:build linux || darwin || freebsd

package vmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Map obtains n bytes of zeroed anonymous memory from the kernel.
func (sysMapper) Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vmem: invalid mapping size %d", n)
	}
	b, err := unix.Mmap(
		-1,
		0,
		n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("vmem: mmap %d bytes: %w", n, err)
	}
	return b, nil
}

// Unmap returns a mapping obtained from Map to the kernel.
func (sysMapper) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("vmem: munmap: %w", err)
	}
	return nil
}
