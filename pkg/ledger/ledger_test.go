package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCanonical(t *testing.T) {
	assert.Equal(t, EdgeKey{Hi: 5, Lo: 2}, Key(5, 2))
	assert.Equal(t, EdgeKey{Hi: 5, Lo: 2}, Key(2, 5))
	assert.Equal(t, EdgeKey{Hi: 3, Lo: 3}, Key(3, 3))
}

func TestPutGetEitherDirection(t *testing.T) {
	l := New[int](4)
	l.Put(5, 2, 7)

	assert.Equal(t, 7, l.Get(2, 5))
	assert.Equal(t, 7, l.Get(5, 2))
	assert.Equal(t, 1, l.Len())
}

func TestPutOverwritesReversedPair(t *testing.T) {
	l := New[string](0)
	l.Put(1, 9, "first")
	l.Put(9, 1, "second")

	require.Equal(t, 1, l.Len())
	assert.Equal(t, "second", l.Get(1, 9))
}

func TestLookupMissing(t *testing.T) {
	l := New[int](0)
	l.Put(0, 1, 3)

	_, ok := l.Lookup(1, 2)
	assert.False(t, ok)

	v, ok := l.Lookup(1, 0)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetMissingPanics(t *testing.T) {
	l := New[int](0)
	l.Put(0, 1, 0)

	defer func() {
		r := recover()
		require.NotNil(t, r, "Get on a missing edge must panic")
		miss, ok := r.(*MissingEdgeError)
		require.True(t, ok, "panic value = %T, want *MissingEdgeError", r)
		assert.Equal(t, 4, miss.V1)
		assert.Equal(t, 2, miss.V2)
		assert.Contains(t, miss.Error(), "(4, 2)")
	}()
	l.Get(4, 2)
}

func TestNegativeSizeHint(t *testing.T) {
	l := New[int](-3)
	l.Put(1, 2, 1)
	assert.Equal(t, 1, l.Len())
}
