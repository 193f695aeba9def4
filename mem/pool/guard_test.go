package pool

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestGuardDetectsHeaderCorruption(t *testing.T) {
	p, _ := newTestPool(t, WithGuards())

	a, err := p.Allocate(64)
	require.NoError(t, err)
	b, err := p.Allocate(64)
	require.NoError(t, err)

	// Simulate an overrun clobbering b's header size field. The forged
	// size keeps the block within region bounds so only the guard word
	// can catch it.
	h := headerOf(unsafe.Pointer(unsafe.SliceData(b)))
	h.size -= 8

	require.ErrorIs(t, p.Deallocate(b), ErrCorrupted)

	// Intact blocks still free normally.
	require.NoError(t, p.Deallocate(a))
}

func TestGuardCoversReallocatedBlocks(t *testing.T) {
	p, _ := newTestPool(t, WithGuards())

	buf, err := p.Allocate(100)
	require.NoError(t, err)

	// The guard word follows the block through both resize paths.
	require.NoError(t, p.ReallocateInPlace(&buf, 40))
	require.NoError(t, p.Reallocate(&buf, 300))
	require.NoError(t, p.Deallocate(buf))
}

func TestGuardOffByDefault(t *testing.T) {
	p, _ := newTestPool(t)

	buf, err := p.Allocate(64)
	require.NoError(t, err)
	h := headerOf(unsafe.Pointer(unsafe.SliceData(buf)))
	require.Zero(t, h.guard)
	require.NoError(t, p.Deallocate(buf))
}
