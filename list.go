package hotredis

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrIndexOutOfRange = errors.New("hotredis: list index out of range")

// List is an ordered, index-addressable remote sequence. Duplicates are
// allowed. A List is not safe for concurrent use by multiple goroutines;
// concurrent mutation from other processes is resolved by the server.
type List struct {
	handle
}

// NewList creates a list under a fresh key and owns it. A non-empty value
// populates the remote state.
func NewList(ctx context.Context, store *Store, value []any) (*List, error) {
	l := &List{handle{store: store, key: newKey(), owned: true}}
	if len(value) > 0 {
		if err := l.Extend(ctx, value); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AttachList borrows an existing key. Close never deletes borrowed data.
func AttachList(store *Store, key string) *List {
	return &List{handle{store: store, key: key}}
}

func (l *List) Len(ctx context.Context) (int64, error) {
	cmd, queued, err := l.invoke(ctx, OpLLen)
	if err != nil || queued {
		return 0, err
	}
	return cmd.(*redis.IntCmd).Val(), nil
}

// Get reads the element at index i; negative indices count from the end.
func (l *List) Get(ctx context.Context, i int64) (any, error) {
	cmd, queued, err := l.invoke(ctx, OpLIndex, i)
	if queued {
		return nil, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d", i)
	}
	if err != nil {
		return nil, err
	}
	return l.tag.reconstruct(cmd.(*redis.StringCmd).Val())
}

// Slice reads [start:stop], stop exclusive; stop 0 reads through the end.
func (l *List) Slice(ctx context.Context, start, stop int64) ([]any, error) {
	cmd, queued, err := l.invoke(ctx, OpLRange, start, stop-1)
	if err != nil || queued {
		return nil, err
	}
	v, err := l.tag.reconstruct(cmd.(*redis.StringSliceCmd).Val())
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// Values materializes the whole list.
func (l *List) Values(ctx context.Context) ([]any, error) {
	return l.Slice(ctx, 0, 0)
}

// Set writes the element at an existing index. A server rejection (the
// index does not exist) is reported as ErrIndexOutOfRange.
func (l *List) Set(ctx context.Context, i int64, v any) error {
	if err := l.tag.check(v); err != nil {
		return err
	}
	_, queued, err := l.invoke(ctx, OpLSet, i, normalize(v))
	if queued {
		return nil
	}
	if err != nil {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d: %s", i, err)
	}
	return nil
}

// Extend type-checks every element, then appends them in one call.
func (l *List) Extend(ctx context.Context, values []any) error {
	if len(values) == 0 {
		return nil
	}
	if err := l.tag.checkAll(values); err != nil {
		return err
	}
	_, _, err := l.invoke(ctx, OpRPush, normalizeAll(values)...)
	return err
}

func (l *List) Append(ctx context.Context, v any) error {
	return l.Extend(ctx, []any{v})
}

// Insert atomically places v at index i, shifting later elements. An index
// past either end clamps to the nearest boundary.
func (l *List) Insert(ctx context.Context, i int64, v any) error {
	if err := l.tag.check(v); err != nil {
		return err
	}
	_, _, err := l.invoke(ctx, OpListInsert, i, normalize(v))
	return err
}

// Pop removes and returns the last element.
func (l *List) Pop(ctx context.Context) (any, error) {
	return l.popEnd(ctx, OpRPop)
}

// PopLeft removes and returns the first element.
func (l *List) PopLeft(ctx context.Context) (any, error) {
	return l.popEnd(ctx, OpLPop)
}

func (l *List) popEnd(ctx context.Context, op Op) (any, error) {
	cmd, queued, err := l.invoke(ctx, op)
	if queued {
		return nil, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(ErrIndexOutOfRange, "empty list")
	}
	if err != nil {
		return nil, err
	}
	return l.tag.reconstruct(cmd.(*redis.StringCmd).Val())
}

// PopAt removes and returns the element at an arbitrary index. The ends go
// through single native calls; a middle index runs atomically server-side.
func (l *List) PopAt(ctx context.Context, i int64) (any, error) {
	switch i {
	case -1:
		return l.Pop(ctx)
	case 0:
		return l.PopLeft(ctx)
	}
	cmd, queued, err := l.invoke(ctx, OpListPop, i)
	if queued {
		return nil, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d", i)
	}
	if err != nil {
		return nil, err
	}
	s, err := cmd.(*redis.Cmd).Text()
	if err != nil {
		return nil, err
	}
	return l.tag.reconstruct(s)
}

// Del removes the element at index i.
func (l *List) Del(ctx context.Context, i int64) error {
	_, err := l.PopAt(ctx, i)
	return err
}

// Reverse reverses the list in place, atomically.
func (l *List) Reverse(ctx context.Context) error {
	_, _, err := l.invoke(ctx, OpListReverse)
	return err
}

// Index returns the position of the first element equal to v. The list is
// materialized and scanned locally; Redis has no native support for this.
func (l *List) Index(ctx context.Context, v any) (int64, error) {
	values, err := l.Values(ctx)
	if err != nil {
		return 0, err
	}
	v = normalize(v)
	for i, e := range values {
		if e == v {
			return int64(i), nil
		}
	}
	return 0, errors.Wrapf(ErrMemberNotFound, "%v", v)
}

// Count returns how many elements equal v, by local scan.
func (l *List) Count(ctx context.Context, v any) (int64, error) {
	values, err := l.Values(ctx)
	if err != nil {
		return 0, err
	}
	v = normalize(v)
	var n int64
	for _, e := range values {
		if e == v {
			n++
		}
	}
	return n, nil
}

// Sort orders the list via the server's SORT, writing the result back to
// the same key. String-tagged lists sort lexicographically.
func (l *List) Sort(ctx context.Context, desc bool) error {
	sort := &redis.Sort{Order: "ASC", Alpha: l.tag.k != kindInt && l.tag.k != kindFloat}
	if desc {
		sort.Order = "DESC"
	}
	_, _, err := l.invoke(ctx, OpSortStore, sort)
	return err
}

// Concat returns a new owned list holding this list's value followed by
// the other's.
func (l *List) Concat(ctx context.Context, other *List) (*List, error) {
	mine, err := l.Values(ctx)
	if err != nil {
		return nil, err
	}
	theirs, err := other.Values(ctx)
	if err != nil {
		return nil, err
	}
	return NewList(ctx, l.store, append(mine, theirs...))
}

// ConcatUpdate appends the other list's value to this one.
func (l *List) ConcatUpdate(ctx context.Context, other *List) error {
	theirs, err := other.Values(ctx)
	if err != nil {
		return err
	}
	return l.Extend(ctx, theirs)
}

// Repeat returns a new owned list holding this list's value n times.
func (l *List) Repeat(ctx context.Context, n int64) (*List, error) {
	values, err := l.Values(ctx)
	if err != nil {
		return nil, err
	}
	repeated := make([]any, 0, int64(len(values))*max(n, 0))
	for ; n > 0; n-- {
		repeated = append(repeated, values...)
	}
	return NewList(ctx, l.store, repeated)
}

// RepeatUpdate atomically replaces the list with its value repeated n
// times; n 0 empties it.
func (l *List) RepeatUpdate(ctx context.Context, n int64) error {
	_, _, err := l.invoke(ctx, OpListMultiply, n)
	return err
}

// Equal compares reconstructed values, not keys.
func (l *List) Equal(ctx context.Context, other *List) (bool, error) {
	mine, err := l.Values(ctx)
	if err != nil {
		return false, err
	}
	theirs, err := other.Values(ctx)
	if err != nil {
		return false, err
	}
	if len(mine) != len(theirs) {
		return false, nil
	}
	for i := range mine {
		if mine[i] != theirs[i] {
			return false, nil
		}
	}
	return true, nil
}

func (l *List) String() string {
	values, _ := l.Values(context.Background())
	return fmt.Sprintf("List(%v, '%s')", values, l.key)
}
