package mem

import (
	"unsafe"

	"github.com/memkit/memkit/internal/align"
)

// Finalizer is the teardown capability checked by Dispose, DisposeSlice and
// MoveInto. A type that owns resources implements Finalize on its pointer
// receiver; embedded types are torn down by calling their Finalize from the
// outer one, which replaces destructor-chain walking with ordinary method
// dispatch. Dynamic dispatch through an interface value picks the most
// derived Finalize automatically.
type Finalizer interface {
	Finalize()
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func alignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// Emplace constructs a zero-valued T directly into caller-supplied raw
// memory. The returned pointer and the buffer's base address coincide. The
// buffer must hold at least Sizeof(T) bytes and be aligned for T.
func Emplace[T any](buf []byte) (*T, error) {
	size := sizeOf[T]()
	if size == 0 {
		return (*T)(unsafe.Pointer(&zerobase)), nil
	}
	if len(buf) < size {
		return nil, ErrShortBuffer
	}
	p := unsafe.Pointer(&buf[0])
	if !align.IsAligned(uintptr(p), alignOf[T]()) {
		return nil, ErrBadAlignment
	}
	ptr := (*T)(p)
	var zero T
	*ptr = zero
	return ptr, nil
}

// EmplaceValue constructs a copy of v into caller-supplied raw memory. This
// is the copy-construction form of Emplace; the same contract applies.
func EmplaceValue[T any](buf []byte, v T) (*T, error) {
	ptr, err := Emplace[T](buf)
	if err != nil {
		return nil, err
	}
	*ptr = v
	return ptr, nil
}

// Make allocates storage for a T from a and constructs a zero value into
// it. A nil allocator falls back to Default().
//
// Make panics with *AllocError when the allocator cannot provide memory:
// a failed construction has no well-defined recovery path, so this is the
// one place failure escalates instead of propagating as a value. Callers
// needing graceful degradation should pre-flight with Allocate directly.
func Make[T any](a Allocator) *T {
	a = orDefault(a)
	size := sizeOf[T]()
	buf, err := a.Allocate(size)
	if err != nil {
		panic(&AllocError{Size: size, Err: err})
	}
	p, err := Emplace[T](buf)
	if err != nil {
		// Release the partial allocation before escalating.
		_ = a.Deallocate(buf)
		panic(&AllocError{Size: size, Err: err})
	}
	return p
}

// MakeValue allocates storage for a T from a and constructs a copy of v
// into it. Failure semantics match Make.
func MakeValue[T any](a Allocator, v T) *T {
	p := Make[T](a)
	*p = v
	return p
}

// MakeSlice allocates a length-n slice of T from a. Elements are zeroed.
// Failure semantics match Make; a length whose byte size would overflow
// escalates as an *AllocError wrapping ErrSizeOverflow.
func MakeSlice[T any](a Allocator, n int) []T {
	if n < 0 {
		panic(&AllocError{Size: n, Err: ErrBadSize})
	}
	if n == 0 {
		return nil
	}
	a = orDefault(a)
	bytes, ok := align.CheckedMul(n, sizeOf[T]())
	if !ok {
		panic(&AllocError{Size: n, Err: ErrSizeOverflow})
	}
	buf, err := a.Allocate(bytes)
	if err != nil {
		panic(&AllocError{Size: bytes, Err: err})
	}
	if bytes == 0 {
		// Zero-size element type: length is all that matters.
		return unsafe.Slice((*T)(unsafe.Pointer(&zerobase)), n)
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
}

// Dispose finalizes **p, releases its storage through a, and sets *p to
// nil. Safe to call with a nil or already-disposed pointer. The nil-out is
// a mitigation against accidental reuse, not a guarantee against every
// double-dispose path.
func Dispose[T any](a Allocator, p **T) {
	if p == nil || *p == nil {
		return
	}
	a = orDefault(a)
	v := *p
	*p = nil
	if f, ok := any(v).(Finalizer); ok {
		f.Finalize()
	}
	size := sizeOf[T]()
	if size > 0 {
		_ = a.Deallocate(unsafe.Slice((*byte)(unsafe.Pointer(v)), size))
	}
}

// DisposeSlice finalizes every element of *s, releases the backing storage
// through a, and sets *s to nil. Safe to call with a nil or empty slice.
func DisposeSlice[T any](a Allocator, s *[]T) {
	if s == nil {
		return
	}
	if len(*s) == 0 {
		*s = nil
		return
	}
	a = orDefault(a)
	elems := *s
	*s = nil
	for i := range elems {
		if f, ok := any(&elems[i]).(Finalizer); ok {
			f.Finalize()
		}
	}
	size := sizeOf[T]()
	if size > 0 {
		raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(elems))), len(elems)*size)
		_ = a.Deallocate(raw)
	}
}

// Resize grows or shrinks *s to length n through the allocator's
// Reallocate. Newly exposed elements are uninitialized from the caller's
// point of view; shrinking does not finalize trailing elements, callers
// that need teardown layer it on top. A length of zero releases the backing
// storage entirely.
func Resize[T any](a Allocator, s *[]T, n int) error {
	if s == nil {
		return ErrBadPointer
	}
	if n < 0 {
		return ErrBadSize
	}
	a = orDefault(a)

	elemSize := sizeOf[T]()
	if elemSize == 0 {
		if n == 0 {
			*s = nil
			return nil
		}
		*s = unsafe.Slice((*T)(unsafe.Pointer(&zerobase)), n)
		return nil
	}

	newBytes, ok := align.CheckedMul(n, elemSize)
	if !ok {
		return ErrSizeOverflow
	}

	old := *s
	if len(old) == 0 {
		if n == 0 {
			*s = nil
			return nil
		}
		buf, err := a.Allocate(newBytes)
		if err != nil {
			return err
		}
		*s = unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n)
		return nil
	}

	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(old))), len(old)*elemSize)
	if n == 0 {
		if err := a.Deallocate(raw); err != nil {
			return err
		}
		*s = nil
		return nil
	}
	if err := a.Reallocate(&raw, newBytes); err != nil {
		return err
	}
	*s = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n)
	return nil
}

func orDefault(a Allocator) Allocator {
	if a == nil {
		return Default()
	}
	return a
}
