package pool

// freeList is a size-class-specific free list backed by a min-heap.
type freeList struct {
	heap  freeCellHeap
	count int
}

// freeCell is the bookkeeping entry for one free block. The block itself
// lives in mapped memory; the cell lives on the Go heap so heaps and maps
// can reference it without touching the mapping.
type freeCell struct {
	addr      uintptr // block header address
	size      int     // whole-block size including header
	sc        int     // size class (which heap this belongs to)
	heapIndex int     // position in heap (for heap.Remove)
}

// freeCellHeap implements heap.Interface as a min-heap keyed on block size,
// with the block address as tie-break. The smallest (then lowest-addressed)
// fitting block is always at the top, which makes the allocation policy a
// deterministic best fit.
type freeCellHeap []*freeCell

func (h *freeCellHeap) Len() int { return len(*h) }

func (h *freeCellHeap) Less(i, j int) bool {
	a, b := (*h)[i], (*h)[j]
	if a.size != b.size {
		return a.size < b.size
	}
	return a.addr < b.addr
}

func (h *freeCellHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
	(*h)[i].heapIndex = i
	(*h)[j].heapIndex = j
}

func (h *freeCellHeap) Push(x any) {
	cell := x.(*freeCell) //nolint:errcheck // heap.Interface contract guarantees type
	cell.heapIndex = len(*h)
	*h = append(*h, cell)
}

func (h *freeCellHeap) Pop() any {
	old := *h
	n := len(old)
	cell := old[n-1]
	cell.heapIndex = -1
	*h = old[0 : n-1]
	return cell
}

// largeBlock tracks a free block at or above the size-class ceiling. Large
// blocks are rare enough that a simple linked list suffices.
type largeBlock struct {
	addr uintptr
	size int
	next *largeBlock
}
