package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueOwnAndRelease(t *testing.T) {
	a := NewSystem()
	n := 0

	u := NewUnique(a, tracked{n: &n})
	require.False(t, u.Empty())
	require.NotNil(t, u.Get())

	u.Release()
	assert.True(t, u.Empty())
	assert.Nil(t, u.Get())
	assert.Equal(t, 1, n)

	u.Release() // already empty
	assert.Equal(t, 1, n)
}

func TestUniqueMoveTo(t *testing.T) {
	a := NewSystem()
	replaced, moved := 0, 0

	src := NewUnique(a, tracked{n: &moved})
	dst := NewUnique(a, tracked{n: &replaced})
	owned := src.Get()

	src.MoveTo(dst)
	assert.Equal(t, 1, replaced, "target's previous value released")
	assert.True(t, src.Empty())
	require.Equal(t, owned, dst.Get(), "ownership transferred, not copied")

	dst.Release()
	assert.Equal(t, 1, moved)
}

func TestUniqueMoveToEmptyTarget(t *testing.T) {
	a := NewSystem()
	n := 0

	src := NewUnique(a, tracked{n: &n})
	dst := new(Unique[tracked])

	src.MoveTo(dst)
	assert.True(t, src.Empty())
	require.False(t, dst.Empty())

	dst.Release()
	assert.Equal(t, 1, n)
}

func TestUniqueTransfer(t *testing.T) {
	a := NewSystem()
	n := 0

	u := NewUnique(a, tracked{n: &n})
	owned := u.Get()

	v := u.Transfer()
	assert.True(t, u.Empty())
	require.Equal(t, owned, v.Get())

	v.Release()
	assert.Equal(t, 1, n)
}

func TestUniqueSelfMove(t *testing.T) {
	a := NewSystem()
	n := 0

	u := NewUnique(a, tracked{n: &n})
	u.MoveTo(u)
	assert.False(t, u.Empty(), "self-move is a no-op")
	assert.Zero(t, n)

	u.Release()
	assert.Equal(t, 1, n)
}

func TestUniqueNilReceiver(t *testing.T) {
	var u *Unique[int64]
	assert.Nil(t, u.Get())
	assert.True(t, u.Empty())
	u.Release()

	v := u.Transfer()
	require.NotNil(t, v)
	assert.True(t, v.Empty())
}
