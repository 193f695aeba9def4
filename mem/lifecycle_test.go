package mem

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracked counts finalizations through a shared counter. The nil check
// matters: moved-from and zero values carry a nil counter.
type tracked struct {
	n *int
}

func (t *tracked) Finalize() {
	if t.n != nil {
		*t.n++
	}
}

// failAllocator refuses every request, for exercising escalation paths.
type failAllocator struct{}

func (failAllocator) Allocate(int) ([]byte, error)         { return nil, ErrNoSpace }
func (failAllocator) Deallocate([]byte) error              { return nil }
func (failAllocator) Reallocate(*[]byte, int) error        { return ErrNoSpace }
func (failAllocator) ReallocateInPlace(*[]byte, int) error { return ErrCannotGrow }
func (failAllocator) Alignment() int                       { return 8 }

// requireAllocPanic runs fn and asserts it panics with an *AllocError
// wrapping the given sentinel.
func requireAllocPanic(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		var ae *AllocError
		require.ErrorAs(t, err, &ae)
		require.ErrorIs(t, err, sentinel)
	}()
	fn()
}

func TestEmplaceConstructsInPlace(t *testing.T) {
	a := NewSystem()
	buf, err := a.Allocate(16)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = 0xFF
	}

	p, err := Emplace[int64](buf)
	require.NoError(t, err)
	require.Equal(t, unsafe.Pointer(&buf[0]), unsafe.Pointer(p))
	require.Zero(t, *p, "emplace must zero-construct")

	*p = 0x0102030405060708
	require.NotEqual(t, byte(0xFF), buf[0], "writes through the pointer land in the buffer")
}

func TestEmplaceShortBuffer(t *testing.T) {
	a := NewSystem()
	buf, err := a.Allocate(4)
	require.NoError(t, err)

	_, err = Emplace[int64](buf)
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestEmplaceMisaligned(t *testing.T) {
	a := NewSystem()
	buf, err := a.Allocate(16)
	require.NoError(t, err)

	// The base is word aligned, so one byte in is not.
	_, err = Emplace[int64](buf[1:9])
	require.ErrorIs(t, err, ErrBadAlignment)
}

func TestEmplaceZeroSizeType(t *testing.T) {
	p, err := Emplace[struct{}](nil)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestEmplaceValue(t *testing.T) {
	a := NewSystem()
	buf, err := a.Allocate(8)
	require.NoError(t, err)

	p, err := EmplaceValue(buf, int64(42))
	require.NoError(t, err)
	require.Equal(t, int64(42), *p)
}

func TestMakeDispose(t *testing.T) {
	a := NewSystem()
	n := 0

	p := MakeValue(a, tracked{n: &n})
	require.NotNil(t, p)
	require.Zero(t, n)

	Dispose(a, &p)
	assert.Nil(t, p)
	assert.Equal(t, 1, n, "finalizer runs exactly once")

	Dispose(a, &p) // already nil
	assert.Equal(t, 1, n)

	Dispose[tracked](a, nil) // nil slot is tolerated
}

func TestMakeZeroConstructs(t *testing.T) {
	a := NewSystem()
	p := Make[[4]int64](a)
	require.NotNil(t, p)
	require.Equal(t, [4]int64{}, *p)
	Dispose(a, &p)
}

func TestMakePanicsOnExhaustion(t *testing.T) {
	requireAllocPanic(t, ErrNoSpace, func() {
		Make[int64](failAllocator{})
	})
}

func TestMakeSlice(t *testing.T) {
	a := NewSystem()

	s := MakeSlice[int32](a, 5)
	require.Len(t, s, 5)
	for i, v := range s {
		require.Zero(t, v, "element %d", i)
	}

	require.Nil(t, MakeSlice[int32](a, 0))

	DisposeSlice(a, &s)
	assert.Nil(t, s)
}

func TestMakeSliceFinalizesElements(t *testing.T) {
	a := NewSystem()
	n := 0

	s := MakeSlice[tracked](a, 3)
	for i := range s {
		s[i].n = &n
	}

	DisposeSlice(a, &s)
	assert.Nil(t, s)
	assert.Equal(t, 3, n, "every element finalized")
}

func TestMakeSliceInvalidLengths(t *testing.T) {
	a := NewSystem()

	requireAllocPanic(t, ErrBadSize, func() {
		MakeSlice[int32](a, -1)
	})
	requireAllocPanic(t, ErrSizeOverflow, func() {
		MakeSlice[int64](a, math.MaxInt/2)
	})
}

func TestResize(t *testing.T) {
	a := NewSystem()

	s := MakeSlice[int32](a, 4)
	for i := range s {
		s[i] = int32(i + 1)
	}

	require.NoError(t, Resize(a, &s, 8))
	require.Len(t, s, 8)
	for i := 0; i < 4; i++ {
		assert.Equal(t, int32(i+1), s[i], "prefix survives growth")
	}

	require.NoError(t, Resize(a, &s, 2))
	require.Equal(t, []int32{1, 2}, s)

	require.NoError(t, Resize(a, &s, 0))
	assert.Nil(t, s)
}

func TestResizeFromEmpty(t *testing.T) {
	a := NewSystem()

	var s []int32
	require.NoError(t, Resize(a, &s, 3))
	require.Len(t, s, 3)
	DisposeSlice(a, &s)
}

func TestResizeInvalidArguments(t *testing.T) {
	a := NewSystem()

	require.ErrorIs(t, Resize[int32](a, nil, 4), ErrBadPointer)

	s := MakeSlice[int32](a, 2)
	require.ErrorIs(t, Resize(a, &s, -1), ErrBadSize)
	require.Len(t, s, 2, "failed resize leaves the slice alone")
	DisposeSlice(a, &s)
}

func TestNilAllocatorFallsBackToDefault(t *testing.T) {
	p := MakeValue[int64](nil, 7)
	require.Equal(t, int64(7), *p)
	Dispose[int64](nil, &p)
	assert.Nil(t, p)
}
