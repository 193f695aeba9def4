package mem

// noCopy flags accidental copies of move-only types under go vet's
// copylocks check. It has no runtime effect.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Unique is an exclusive-ownership handle over an allocator-owned value.
// It has two states, empty and owning, and is move-only: MoveTo transfers
// ownership and empties the source, and copying the handle itself is
// flagged statically by go vet. Use it through the pointer returned by
// NewUnique.
type Unique[T any] struct {
	noCopy noCopy

	p *T
	a Allocator
}

// NewUnique allocates v from a and returns an owning handle. A nil
// allocator falls back to Default(). Allocation failure escalates as in
// Make.
func NewUnique[T any](a Allocator, v T) *Unique[T] {
	a = orDefault(a)
	return &Unique[T]{p: MakeValue(a, v), a: a}
}

// Get returns a pointer to the owned value, or nil for an empty handle.
func (u *Unique[T]) Get() *T {
	if u == nil {
		return nil
	}
	return u.p
}

// Empty reports whether the handle owns nothing.
func (u *Unique[T]) Empty() bool { return u == nil || u.p == nil }

// Release disposes the owned value (finalizer, then deallocation) and
// empties the handle. A no-op when already empty.
func (u *Unique[T]) Release() {
	if u == nil || u.p == nil {
		return
	}
	Dispose(u.a, &u.p)
}

// MoveTo transfers ownership into dst, releasing whatever dst previously
// owned. The source is left empty. Transferring into oneself is a no-op.
func (u *Unique[T]) MoveTo(dst *Unique[T]) {
	if u == nil || dst == nil || u == dst {
		return
	}
	dst.Release()
	dst.p = u.p
	dst.a = u.a
	u.p = nil
}

// Transfer returns a fresh owning handle and empties the source. It is the
// return-slot form of MoveTo.
func (u *Unique[T]) Transfer() *Unique[T] {
	out := &Unique[T]{}
	if u != nil {
		u.MoveTo(out)
	}
	return out
}
