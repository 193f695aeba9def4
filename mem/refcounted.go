package mem

// rcBox is the shared control block: the strong count lives directly
// alongside the owned value in a single allocation.
type rcBox[T any] struct {
	refs  int64
	value T
}

// RefCounted is a shared-ownership handle over an allocator-owned value.
// Clone increments the strong count, Release decrements it, and the wrapped
// value is finalized and deallocated exactly when the count reaches zero.
//
// The count is a plain integer: like the rest of this package, RefCounted is
// single-threaded by design. Handles shared across goroutines need external
// synchronization.
type RefCounted[T any] struct {
	box *rcBox[T]
	a   Allocator
}

// NewRefCounted allocates v from a and returns the first handle, with a
// strong count of one. A nil allocator falls back to Default(). Allocation
// failure escalates as in Make.
func NewRefCounted[T any](a Allocator, v T) RefCounted[T] {
	a = orDefault(a)
	box := MakeValue(a, rcBox[T]{refs: 1, value: v})
	return RefCounted[T]{box: box, a: a}
}

// Clone returns a new handle to the same value and increments the strong
// count. Cloning an empty handle returns another empty handle.
func (r RefCounted[T]) Clone() RefCounted[T] {
	if r.box != nil {
		r.box.refs++
	}
	return r
}

// Release drops this handle's reference and empties it. When the count
// reaches zero the wrapped value is finalized (if it implements Finalizer)
// and its storage is returned to the allocator, exactly once. Releasing an
// empty handle is a no-op.
func (r *RefCounted[T]) Release() {
	if r == nil || r.box == nil {
		return
	}
	box := r.box
	r.box = nil
	box.refs--
	if box.refs > 0 {
		return
	}
	if f, ok := any(&box.value).(Finalizer); ok {
		f.Finalize()
	}
	Dispose(r.a, &box)
}

// Adopt replaces this handle's reference with other's, releasing the old
// reference first. Adopting the value a handle already holds is a no-op.
func (r *RefCounted[T]) Adopt(other RefCounted[T]) {
	if r == nil || r.box == other.box {
		return
	}
	r.Release()
	*r = other.Clone()
}

// Get returns a pointer to the shared value, or nil for an empty handle.
// The pointer is valid only while at least one handle holds a reference.
func (r RefCounted[T]) Get() *T {
	if r.box == nil {
		return nil
	}
	return &r.box.value
}

// Refs returns the current strong count, or zero for an empty handle.
func (r RefCounted[T]) Refs() int64 {
	if r.box == nil {
		return 0
	}
	return r.box.refs
}

// Empty reports whether the handle holds no reference.
func (r RefCounted[T]) Empty() bool { return r.box == nil }
