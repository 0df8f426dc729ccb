package hotredis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func members(values ...any) map[any]struct{} {
	out := make(map[any]struct{}, len(values))
	for _, v := range values {
		out[normalize(v)] = struct{}{}
	}
	return out
}

func TestSetBasics(t *testing.T) {
	store, ctx := testStore(t)
	s, err := NewSet(ctx, store, []any{1, 2, 2, 3})
	require.NoError(t, err)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ok, err := s.Contains(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Add(ctx, 4))
	require.NoError(t, s.Remove(ctx, 4))
	assert.ErrorIs(t, s.Remove(ctx, 4), ErrMemberNotFound)
	require.NoError(t, s.Discard(ctx, 4))

	v, err := s.Pop(ctx)
	require.NoError(t, err)
	_, wasMember := members(1, 2, 3)[v]
	assert.True(t, wasMember)

	require.NoError(t, s.Clear(ctx))
	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = s.Pop(ctx)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestSetRemoteAlgebra(t *testing.T) {
	store, ctx := testStore(t)
	a, err := NewSet(ctx, store, []any{1, 2, 3})
	require.NoError(t, err)
	b, err := NewSet(ctx, store, []any{2, 3, 4})
	require.NoError(t, err)

	union, err := a.Union(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, members(1, 2, 3, 4), union)

	// union and intersection are operand-order independent
	union2, err := b.Union(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, union, union2)

	inter, err := a.Intersection(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, members(2, 3), inter)

	inter2, err := b.Intersection(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, inter, inter2)

	// difference is operand-order sensitive: a is the minuend
	diff, err := a.Difference(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, members(1), diff)
}

func TestSetRemoteAlgebraUpdates(t *testing.T) {
	store, ctx := testStore(t)
	a, err := NewSet(ctx, store, []any{1, 2, 3})
	require.NoError(t, err)
	b, err := NewSet(ctx, store, []any{2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, a.IntersectionUpdate(ctx, b))
	got, err := a.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(2, 3), got)

	require.NoError(t, a.UnionUpdate(ctx, b))
	got, err = a.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(2, 3, 4), got)

	require.NoError(t, a.DifferenceUpdate(ctx, b))
	n, err := a.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSetLocalAlgebra(t *testing.T) {
	store, ctx := testStore(t)
	s, err := NewSet(ctx, store, []any{1, 2, 3})
	require.NoError(t, err)

	union, err := s.UnionWith(ctx, []any{3, 4})
	require.NoError(t, err)
	assert.Equal(t, members(1, 2, 3, 4), union)

	inter, err := s.IntersectionWith(ctx, []any{2, 3, 9})
	require.NoError(t, err)
	assert.Equal(t, members(2, 3), inter)

	diff, err := s.DifferenceWith(ctx, []any{3})
	require.NoError(t, err)
	assert.Equal(t, members(1, 2), diff)

	// non-mutating forms leave the remote set alone
	got, err := s.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(1, 2, 3), got)
}

func TestSetLocalAlgebraUpdates(t *testing.T) {
	store, ctx := testStore(t)
	s, err := NewSet(ctx, store, []any{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, s.IntersectionUpdateWith(ctx, []any{1, 2, 3}, []any{2, 3, 9}))
	got, err := s.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(2, 3), got)

	require.NoError(t, s.DifferenceUpdateWith(ctx, []any{3}, []any{9}))
	got, err = s.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(2), got)

	require.NoError(t, s.UnionUpdateWith(ctx, []any{5}))
	got, err = s.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, members(2, 5), got)
}

func TestSetSymmetricDifferenceUnsupported(t *testing.T) {
	store, ctx := testStore(t)
	a, err := NewSet(ctx, store, []any{1})
	require.NoError(t, err)
	b, err := NewSet(ctx, store, []any{2})
	require.NoError(t, err)

	_, err = a.SymmetricDifference(ctx, b)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, a.SymmetricDifferenceUpdate(ctx, b), ErrNotImplemented)
}

func TestSetRelations(t *testing.T) {
	store, ctx := testStore(t)
	small, err := NewSet(ctx, store, []any{1, 2})
	require.NoError(t, err)
	big, err := NewSet(ctx, store, []any{1, 2, 3})
	require.NoError(t, err)
	other, err := NewSet(ctx, store, []any{9})
	require.NoError(t, err)

	sub, err := small.IsSubset(ctx, big)
	require.NoError(t, err)
	assert.True(t, sub)

	sup, err := big.IsSuperset(ctx, small)
	require.NoError(t, err)
	assert.True(t, sup)

	dis, err := small.IsDisjoint(ctx, other)
	require.NoError(t, err)
	assert.True(t, dis)

	dis, err = small.IsDisjoint(ctx, big)
	require.NoError(t, err)
	assert.False(t, dis)
}

func TestSetEqualComparesValues(t *testing.T) {
	store, ctx := testStore(t)
	a, err := NewSet(ctx, store, []any{"x", "y"})
	require.NoError(t, err)
	b, err := NewSet(ctx, store, []any{"y", "x"})
	require.NoError(t, err)

	require.NotEqual(t, a.Key(), b.Key())
	eq, err := a.Equal(ctx, b)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestSetTypeConflict(t *testing.T) {
	store, ctx := testStore(t)
	s, err := NewSet(ctx, store, []any{1})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Add(ctx, "nope"), ErrTypeMismatch)
	assert.ErrorIs(t, s.IntersectionUpdateWith(ctx, []any{"nope"}), ErrTypeMismatch)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
