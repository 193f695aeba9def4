package mem

// Move semantics for plain values: the representation transfers, the source
// is left zero-valued, and no finalizers run during the transfer itself.

// Move transfers src's representation into the return slot, leaving *src
// zero-valued (valid but unspecified from the caller's point of view). A nil
// src yields a zero T.
func Move[T any](src *T) T {
	var out T
	if src == nil {
		return out
	}
	out = *src
	var zero T
	*src = zero
	return out
}

// MoveInto transfers *src into *dst, finalizing dst's previous value first
// when T's pointer type implements Finalizer. The target must hold an
// initialized value; use MoveEmplace for raw storage. Moving a value into
// itself is a no-op, not a contract violation.
func MoveInto[T any](src, dst *T) {
	if src == nil || dst == nil || src == dst {
		return
	}
	if f, ok := any(dst).(Finalizer); ok {
		f.Finalize()
	}
	*dst = *src
	var zero T
	*src = zero
}

// MoveEmplace transfers *src into *dst, which is assumed to be raw or
// uninitialized storage: no finalizer runs on dst's previous contents.
// Self-moves are no-ops.
func MoveEmplace[T any](src, dst *T) {
	if src == nil || dst == nil || src == dst {
		return
	}
	*dst = *src
	var zero T
	*src = zero
}

// MoveEmplaceBuf transfers *src into caller-supplied raw memory, returning a
// typed handle over that same memory. The buffer contract matches Emplace.
func MoveEmplaceBuf[T any](src *T, buf []byte) (*T, error) {
	dst, err := Emplace[T](buf)
	if err != nil {
		return nil, err
	}
	MoveEmplace(src, dst)
	return dst, nil
}

// Swap exchanges two values' representations through a temporary using three
// MoveEmplace operations. No copy construction or finalization happens along
// the way. Swapping a value with itself is a no-op.
func Swap[T any](a, b *T) {
	if a == nil || b == nil || a == b {
		return
	}
	var tmp T
	MoveEmplace(a, &tmp)
	MoveEmplace(b, a)
	MoveEmplace(&tmp, b)
}
