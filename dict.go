package hotredis

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrFieldNotFound = errors.New("hotredis: field not found")

// Dict is a field-addressable remote mapping. Fields are strings; the
// element type tag applies to stored values, not to field names.
type Dict struct {
	handle
}

func NewDict(ctx context.Context, store *Store, value map[string]any) (*Dict, error) {
	d := &Dict{handle{store: store, key: newKey(), owned: true}}
	if len(value) > 0 {
		if err := d.Update(ctx, value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AttachDict borrows an existing key. Close never deletes borrowed data.
func AttachDict(store *Store, key string) *Dict {
	return &Dict{handle{store: store, key: key}}
}

func (d *Dict) Len(ctx context.Context) (int64, error) {
	keys, err := d.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Value materializes the whole mapping.
func (d *Dict) Value(ctx context.Context) (map[string]any, error) {
	cmd, queued, err := d.invoke(ctx, OpHGetAll)
	if err != nil || queued {
		return nil, err
	}
	raw := cmd.(*redis.MapStringStringCmd).Val()
	out := make(map[string]any, len(raw))
	for field, s := range raw {
		v, err := d.tag.reconstruct(s)
		if err != nil {
			return nil, err
		}
		out[field] = v
	}
	return out, nil
}

// Get fails with ErrFieldNotFound when the field is absent.
func (d *Dict) Get(ctx context.Context, field string) (any, error) {
	cmd, queued, err := d.invoke(ctx, OpHGet, field)
	if queued {
		return nil, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(ErrFieldNotFound, field)
	}
	if err != nil {
		return nil, err
	}
	return d.tag.reconstruct(cmd.(*redis.StringCmd).Val())
}

// GetDefault returns def when the field is absent.
func (d *Dict) GetDefault(ctx context.Context, field string, def any) (any, error) {
	v, err := d.Get(ctx, field)
	if errors.Is(err, ErrFieldNotFound) {
		return normalize(def), nil
	}
	return v, err
}

// SetDefault writes def only if the field does not exist yet, atomically,
// and returns whatever the field holds afterwards: def when the write
// happened, the already-stored value otherwise.
func (d *Dict) SetDefault(ctx context.Context, field string, def any) (any, error) {
	if err := d.tag.check(def); err != nil {
		return nil, err
	}
	cmd, queued, err := d.invoke(ctx, OpHSetNX, field, normalize(def))
	if err != nil || queued {
		return nil, err
	}
	if cmd.(*redis.BoolCmd).Val() {
		return normalize(def), nil
	}
	return d.Get(ctx, field)
}

func (d *Dict) Set(ctx context.Context, field string, v any) error {
	if err := d.tag.check(v); err != nil {
		return err
	}
	_, _, err := d.invoke(ctx, OpHSet, field, normalize(v))
	return err
}

// Del fails with ErrFieldNotFound when the field is absent.
func (d *Dict) Del(ctx context.Context, field string) error {
	cmd, queued, err := d.invoke(ctx, OpHDel, field)
	if err != nil || queued {
		return err
	}
	if cmd.(*redis.IntCmd).Val() == 0 {
		return errors.Wrap(ErrFieldNotFound, field)
	}
	return nil
}

// Update writes every field of m in one call.
func (d *Dict) Update(ctx context.Context, m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	values := make([]any, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	if err := d.tag.checkAll(values); err != nil {
		return err
	}
	pairs := make([]any, 0, len(m)*2)
	for field, v := range m {
		pairs = append(pairs, field, normalize(v))
	}
	_, _, err := d.invoke(ctx, OpHSet, pairs...)
	return err
}

func (d *Dict) Keys(ctx context.Context) ([]string, error) {
	cmd, queued, err := d.invoke(ctx, OpHKeys)
	if err != nil || queued {
		return nil, err
	}
	return cmd.(*redis.StringSliceCmd).Val(), nil
}

// Equal compares reconstructed values, not keys.
func (d *Dict) Equal(ctx context.Context, other *Dict) (bool, error) {
	mine, err := d.Value(ctx)
	if err != nil {
		return false, err
	}
	theirs, err := other.Value(ctx)
	if err != nil {
		return false, err
	}
	if len(mine) != len(theirs) {
		return false, nil
	}
	for field, v := range mine {
		if theirs[field] != v {
			return false, nil
		}
	}
	return true, nil
}

func (d *Dict) String() string {
	value, _ := d.Value(context.Background())
	return fmt.Sprintf("Dict(%v, '%s')", value, d.key)
}
