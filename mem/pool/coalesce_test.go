package pool

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Three adjacent blocks freed in any order must merge into one block that
// can satisfy an allocation spanning all of them.
func TestCoalesceAdjacentBlocksAllOrders(t *testing.T) {
	const payload = 488 // whole block 512 with the 24-byte header

	orders := [][3]int{
		{0, 1, 2}, {0, 2, 1},
		{1, 0, 2}, {1, 2, 0},
		{2, 0, 1}, {2, 1, 0},
	}

	for _, order := range orders {
		t.Run(fmt.Sprintf("order_%d%d%d", order[0], order[1], order[2]), func(t *testing.T) {
			p, _ := newTestPool(t)

			var blocks [3][]byte
			for i := range blocks {
				buf, err := p.Allocate(payload)
				require.NoError(t, err)
				blocks[i] = buf
			}
			// Adjacency check: each block starts one whole block after the last.
			require.Equal(t, baseAddr(blocks[0])+512, baseAddr(blocks[1]))
			require.Equal(t, baseAddr(blocks[1])+512, baseAddr(blocks[2]))

			pin, err := p.Allocate(8) // keeps the region alive after the frees
			require.NoError(t, err)

			for _, i := range order {
				require.NoError(t, p.Deallocate(blocks[i]))
			}

			// A request spanning all three whole blocks fits only if they merged.
			merged, err := p.Allocate(3*512 - headerSize)
			require.NoError(t, err)
			assert.Equal(t, baseAddr(blocks[0]), baseAddr(merged),
				"the merged block must start where the first block did")

			require.NoError(t, p.Deallocate(merged))
			require.NoError(t, p.Deallocate(pin))
		})
	}
}

func TestCoalesceCounters(t *testing.T) {
	p, _ := newTestPool(t)

	a, err := p.Allocate(488)
	require.NoError(t, err)
	b, err := p.Allocate(488)
	require.NoError(t, err)
	c, err := p.Allocate(488)
	require.NoError(t, err)
	pin, err := p.Allocate(8)
	require.NoError(t, err)

	// Free the middle block first: no merge possible yet.
	require.NoError(t, p.Deallocate(b))
	s := p.Stats()
	require.Zero(t, s.CoalesceForward)
	require.Zero(t, s.CoalesceBackward)

	// Freeing a merges forward into b's block.
	require.NoError(t, p.Deallocate(a))
	require.Equal(t, 1, p.Stats().CoalesceForward)

	// Freeing c merges backward into the a+b block.
	require.NoError(t, p.Deallocate(c))
	require.Equal(t, 1, p.Stats().CoalesceBackward)

	require.NoError(t, p.Deallocate(pin))
}

// Allocating and freeing a block that exactly fills a region must return
// the region to the OS: map count equals unmap count afterwards.
func TestNoRegionLeakOnExactFill(t *testing.T) {
	p, cm := newTestPool(t)

	buf, err := p.Allocate(p.regionSize - headerSize)
	require.NoError(t, err)
	require.Equal(t, 1, cm.maps)
	require.Zero(t, cm.unmaps)

	require.NoError(t, p.Deallocate(buf))
	assert.Equal(t, cm.maps, cm.unmaps, "empty region must be unmapped")
	assert.Zero(t, p.Stats().LiveRegions)
}

// Freeing everything, in whatever interleaving, must always drain the pool
// back to zero mappings.
func TestFullDrainReleasesAllRegions(t *testing.T) {
	p, cm := newTestPool(t)

	var live [][]byte
	sizes := []int{8, 100, 4096, 32, 70000, 512, 9, 2048}
	for _, n := range sizes {
		buf, err := p.Allocate(n)
		require.NoError(t, err)
		fillPattern(buf)
		live = append(live, buf)
	}

	// Free in a scrambled order.
	for _, i := range []int{3, 0, 7, 4, 1, 6, 2, 5} {
		require.NoError(t, p.Deallocate(live[i]))
	}

	assert.Equal(t, cm.maps, cm.unmaps)
	assert.Zero(t, p.Stats().LiveRegions)
}
