package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUp8(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{16, 16},
		{17, 24},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Up8(tc.in), "Up8(%d)", tc.in)
	}
}

func TestUp(t *testing.T) {
	require.Equal(t, 4096, Up(1, 4096))
	require.Equal(t, 4096, Up(4096, 4096))
	require.Equal(t, 8192, Up(4097, 4096))
	require.Equal(t, 0, Up(0, 4096))
}

func TestIsAligned(t *testing.T) {
	require.True(t, IsAligned(0, 8))
	require.True(t, IsAligned(64, 8))
	require.False(t, IsAligned(65, 8))
	require.True(t, IsAligned(4096, 4096))
}

func TestPageCeil(t *testing.T) {
	n, ok := PageCeil(1, 4096)
	require.True(t, ok)
	require.Equal(t, 4096, n)

	n, ok = PageCeil(4097, 4096)
	require.True(t, ok)
	require.Equal(t, 8192, n)

	_, ok = PageCeil(math.MaxInt-100, 4096)
	require.False(t, ok, "near-MaxInt rounding must report overflow")
}

func TestCheckedAdd(t *testing.T) {
	sum, ok := CheckedAdd(1, 2)
	require.True(t, ok)
	require.Equal(t, 3, sum)

	_, ok = CheckedAdd(math.MaxInt, 1)
	require.False(t, ok)
}

func TestCheckedMul(t *testing.T) {
	prod, ok := CheckedMul(3, 4)
	require.True(t, ok)
	require.Equal(t, 12, prod)

	prod, ok = CheckedMul(0, math.MaxInt)
	require.True(t, ok)
	require.Equal(t, 0, prod)

	_, ok = CheckedMul(math.MaxInt/2+1, 2)
	require.False(t, ok)
}
