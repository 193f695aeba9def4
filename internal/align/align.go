package align

// Alignment and checked-arithmetic utilities for the allocator core.
// Block payloads must be 8-byte aligned and region sizes must be whole
// multiples of the platform page size.

import "math"

const (
	// Word is the minimum payload alignment guaranteed by the allocators.
	Word = 8

	wordMask = Word - 1
)

// Up8 returns n aligned up to the next 8-byte boundary.
// Used for block sizes and payload rounding.
//
// Example:
//
//	Up8(1)  = 8
//	Up8(8)  = 8
//	Up8(9)  = 16
func Up8(n int) int {
	return (n + wordMask) & ^wordMask
}

// Up returns n aligned up to the next multiple of a.
// a must be a power of two greater than zero.
func Up(n, a int) int {
	return (n + a - 1) & ^(a - 1)
}

// IsAligned reports whether p is a multiple of a.
// a must be a power of two greater than zero.
func IsAligned(p uintptr, a int) bool {
	return p&uintptr(a-1) == 0
}

// PageCeil returns n rounded up to a whole number of pages of the given
// size. Returns false when the rounding would overflow int.
func PageCeil(n, pageSize int) (int, bool) {
	if n > math.MaxInt-(pageSize-1) {
		return 0, false
	}
	return Up(n, pageSize), true
}

// CheckedAdd returns a+b, or false when the sum overflows int.
func CheckedAdd(a, b int) (int, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// CheckedMul returns a*b, or false when the product overflows int.
// Both operands must be non-negative.
func CheckedMul(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}
