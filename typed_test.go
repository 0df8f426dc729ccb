package hotredis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagAdoptsFirstWrite(t *testing.T) {
	var tag kindTag
	assert.Equal(t, kindUnset, tag.k)
	require.NoError(t, tag.check(int64(5)))
	assert.Equal(t, kindInt, tag.k)
	require.NoError(t, tag.check(7))
	err := tag.check("nope")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, kindInt, tag.k)
}

func TestTagNested(t *testing.T) {
	var tag kindTag
	require.NoError(t, tag.check([]any{1.5, 2.5}))
	assert.Equal(t, kindFloat, tag.k)
	assert.ErrorIs(t, tag.check([]any{1.5, "x"}), ErrTypeMismatch)
}

func TestTagCheckAllLeavesTagOnFailure(t *testing.T) {
	var tag kindTag
	err := tag.checkAll([]any{1, 2, "three"})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, kindUnset, tag.k)

	require.NoError(t, tag.checkAll([]any{1, 2, 3}))
	assert.Equal(t, kindInt, tag.k)
}

func TestTagUnsupportedValue(t *testing.T) {
	var tag kindTag
	assert.ErrorIs(t, tag.check(struct{}{}), ErrUnsupportedValue)
}

func TestReconstructScalars(t *testing.T) {
	tag := kindTag{k: kindInt}
	v, err := tag.reconstruct("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	tag = kindTag{k: kindFloat}
	v, err = tag.reconstruct("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = tag.reconstruct("abc")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestReconstructRawTextPassthrough(t *testing.T) {
	tag := kindTag{k: kindString}
	v, err := tag.reconstruct("123")
	require.NoError(t, err)
	assert.Equal(t, "123", v)

	var unset kindTag
	v, err = unset.reconstruct("123")
	require.NoError(t, err)
	assert.Equal(t, "123", v)
}

func TestReconstructKeepsShape(t *testing.T) {
	tag := kindTag{k: kindInt}
	v, err := tag.reconstruct([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, v)

	m, err := tag.members([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, map[any]struct{}{int64(1): {}, int64(2): {}}, m)
}
