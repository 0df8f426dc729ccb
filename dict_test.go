package hotredis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictSetDefault(t *testing.T) {
	store, ctx := testStore(t)
	d, err := NewDict(ctx, store, nil)
	require.NoError(t, err)

	v, err := d.SetDefault(ctx, "a", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	// the second default loses: the stored value wins
	v, err = d.SetDefault(ctx, "a", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = d.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

func TestDictGet(t *testing.T) {
	store, ctx := testStore(t)
	d, err := NewDict(ctx, store, map[string]any{"a": 1})
	require.NoError(t, err)

	v, err := d.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = d.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrFieldNotFound)

	v, err = d.GetDefault(ctx, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	v, err = d.GetDefault(ctx, "a", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestDictUpdateValueKeys(t *testing.T) {
	store, ctx := testStore(t)
	d, err := NewDict(ctx, store, nil)
	require.NoError(t, err)

	require.NoError(t, d.Update(ctx, map[string]any{"a": 1, "b": 2}))
	require.NoError(t, d.Set(ctx, "c", 3))

	value, err := d.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)}, value)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)

	n, err := d.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDictDel(t *testing.T) {
	store, ctx := testStore(t)
	d, err := NewDict(ctx, store, map[string]any{"a": "x"})
	require.NoError(t, err)

	require.NoError(t, d.Del(ctx, "a"))
	assert.ErrorIs(t, d.Del(ctx, "a"), ErrFieldNotFound)
}

func TestDictTypeAppliesPerValue(t *testing.T) {
	store, ctx := testStore(t)
	d, err := NewDict(ctx, store, map[string]any{"a": 1})
	require.NoError(t, err)

	// field names are free-form; values share one type
	require.NoError(t, d.Set(ctx, "some field", 2))
	assert.ErrorIs(t, d.Set(ctx, "b", "nope"), ErrTypeMismatch)
	assert.ErrorIs(t, d.Update(ctx, map[string]any{"c": 1.5}), ErrTypeMismatch)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "some field"}, keys)
}

func TestDictEqualComparesValues(t *testing.T) {
	store, ctx := testStore(t)
	a, err := NewDict(ctx, store, map[string]any{"k": "v"})
	require.NoError(t, err)
	b, err := NewDict(ctx, store, map[string]any{"k": "v"})
	require.NoError(t, err)

	require.NotEqual(t, a.Key(), b.Key())
	eq, err := a.Equal(ctx, b)
	require.NoError(t, err)
	assert.True(t, eq)

	require.NoError(t, b.Set(ctx, "k", "w"))
	eq, err = a.Equal(ctx, b)
	require.NoError(t, err)
	assert.False(t, eq)
}
