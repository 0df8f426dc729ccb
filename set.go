package hotredis

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrMemberNotFound = errors.New("hotredis: member not found")
var ErrNotImplemented = errors.New("hotredis: not implemented")

// Set is an unordered remote collection of distinct members.
//
// Algebra comes in two flavors. When every operand is a remote Set, the
// whole operation is one multi-key server command and is atomic. When any
// operand is a plain local slice, this set is materialized and combined
// locally; only the final in-place application is atomic. Callers mixing
// in local operands accept that the read-combine step can race with
// concurrent mutators.
type Set struct {
	handle
}

func NewSet(ctx context.Context, store *Store, value []any) (*Set, error) {
	s := &Set{handle{store: store, key: newKey(), owned: true}}
	if len(value) > 0 {
		if err := s.Update(ctx, value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AttachSet borrows an existing key. Close never deletes borrowed data.
func AttachSet(store *Store, key string) *Set {
	return &Set{handle{store: store, key: key}}
}

func (s *Set) Len(ctx context.Context) (int64, error) {
	cmd, queued, err := s.invoke(ctx, OpSCard)
	if err != nil || queued {
		return 0, err
	}
	return cmd.(*redis.IntCmd).Val(), nil
}

func (s *Set) Contains(ctx context.Context, v any) (bool, error) {
	cmd, queued, err := s.invoke(ctx, OpSIsMember, normalize(v))
	if err != nil || queued {
		return false, err
	}
	return cmd.(*redis.BoolCmd).Val(), nil
}

func (s *Set) Add(ctx context.Context, v any) error {
	return s.Update(ctx, []any{v})
}

// Update adds the members of every given slice in one call.
func (s *Set) Update(ctx context.Context, values ...[]any) error {
	flat := make([]any, 0)
	for _, vs := range values {
		flat = append(flat, vs...)
	}
	if len(flat) == 0 {
		return nil
	}
	if err := s.tag.checkAll(flat); err != nil {
		return err
	}
	_, _, err := s.invoke(ctx, OpSAdd, normalizeAll(flat)...)
	return err
}

// Remove fails with ErrMemberNotFound when v is absent.
func (s *Set) Remove(ctx context.Context, v any) error {
	if err := s.tag.check(v); err != nil {
		return err
	}
	cmd, queued, err := s.invoke(ctx, OpSRem, normalize(v))
	if err != nil || queued {
		return err
	}
	if cmd.(*redis.IntCmd).Val() == 0 {
		return errors.Wrapf(ErrMemberNotFound, "%v", v)
	}
	return nil
}

// Discard removes v if present, silently.
func (s *Set) Discard(ctx context.Context, v any) error {
	err := s.Remove(ctx, v)
	if errors.Is(err, ErrMemberNotFound) {
		return nil
	}
	return err
}

// Pop removes and returns an arbitrary member.
func (s *Set) Pop(ctx context.Context) (any, error) {
	cmd, queued, err := s.invoke(ctx, OpSPop)
	if queued {
		return nil, nil
	}
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(ErrMemberNotFound, "empty set")
	}
	if err != nil {
		return nil, err
	}
	return s.tag.reconstruct(cmd.(*redis.StringCmd).Val())
}

// Clear deletes the remote data.
func (s *Set) Clear(ctx context.Context) error {
	_, _, err := s.invoke(ctx, OpDel)
	return err
}

// Members materializes the set.
func (s *Set) Members(ctx context.Context) (map[any]struct{}, error) {
	cmd, queued, err := s.invoke(ctx, OpSMembers)
	if err != nil || queued {
		return nil, err
	}
	return s.tag.members(cmd.(*redis.StringSliceCmd).Val())
}

// multiKey runs a multi-key native set command over this set and the others.
func (s *Set) multiKey(ctx context.Context, op Op, others []*Set) (map[any]struct{}, error) {
	keys := make([]any, 0, len(others))
	for _, o := range others {
		keys = append(keys, o.key)
	}
	cmd, queued, err := s.invoke(ctx, op, keys...)
	if err != nil || queued {
		return nil, err
	}
	switch c := cmd.(type) {
	case *redis.StringSliceCmd:
		return s.tag.members(c.Val())
	}
	return nil, nil
}

// Union of this set and other remote sets, computed entirely server-side.
func (s *Set) Union(ctx context.Context, others ...*Set) (map[any]struct{}, error) {
	return s.multiKey(ctx, OpSUnion, others)
}

// UnionWith combines the materialized set with local operands.
func (s *Set) UnionWith(ctx context.Context, locals ...[]any) (map[any]struct{}, error) {
	mine, err := s.localReduce(ctx, locals)
	if err != nil {
		return nil, err
	}
	for _, vs := range locals {
		for _, v := range vs {
			mine[normalize(v)] = struct{}{}
		}
	}
	return mine, nil
}

// UnionUpdate atomically replaces this set with the union, server-side.
func (s *Set) UnionUpdate(ctx context.Context, others ...*Set) error {
	_, err := s.multiKey(ctx, OpSUnionStore, others)
	return err
}

// UnionUpdateWith adds local operands; plain SADD, commutative, no script
// needed.
func (s *Set) UnionUpdateWith(ctx context.Context, locals ...[]any) error {
	return s.Update(ctx, locals...)
}

// Intersection of this set and other remote sets, server-side.
func (s *Set) Intersection(ctx context.Context, others ...*Set) (map[any]struct{}, error) {
	return s.multiKey(ctx, OpSInter, others)
}

func (s *Set) IntersectionWith(ctx context.Context, locals ...[]any) (map[any]struct{}, error) {
	mine, err := s.localReduce(ctx, locals)
	if err != nil {
		return nil, err
	}
	for _, vs := range locals {
		mine = intersect(mine, toSet(vs))
	}
	return mine, nil
}

func (s *Set) IntersectionUpdate(ctx context.Context, others ...*Set) error {
	_, err := s.multiKey(ctx, OpSInterStore, others)
	return err
}

// IntersectionUpdateWith reduces the local operands to one member list and
// applies it in a single atomic script call, so the final write cannot race
// with concurrent mutators.
func (s *Set) IntersectionUpdateWith(ctx context.Context, locals ...[]any) error {
	if len(locals) == 0 {
		return nil
	}
	if err := s.checkLocals(locals); err != nil {
		return err
	}
	reduced := toSet(locals[0])
	for _, vs := range locals[1:] {
		reduced = intersect(reduced, toSet(vs))
	}
	_, _, err := s.invoke(ctx, OpSetInterUpdate, setArgs(reduced)...)
	return err
}

// Difference of this set and other remote sets, server-side. Operand order
// matters: this set is always the minuend.
func (s *Set) Difference(ctx context.Context, others ...*Set) (map[any]struct{}, error) {
	return s.multiKey(ctx, OpSDiff, others)
}

func (s *Set) DifferenceWith(ctx context.Context, locals ...[]any) (map[any]struct{}, error) {
	mine, err := s.localReduce(ctx, locals)
	if err != nil {
		return nil, err
	}
	for _, vs := range locals {
		for _, v := range vs {
			delete(mine, normalize(v))
		}
	}
	return mine, nil
}

func (s *Set) DifferenceUpdate(ctx context.Context, others ...*Set) error {
	_, err := s.multiKey(ctx, OpSDiffStore, others)
	return err
}

// DifferenceUpdateWith removes every member of every local operand in one
// atomic script call.
func (s *Set) DifferenceUpdateWith(ctx context.Context, locals ...[]any) error {
	if len(locals) == 0 {
		return nil
	}
	if err := s.checkLocals(locals); err != nil {
		return err
	}
	union := make(map[any]struct{})
	for _, vs := range locals {
		for _, v := range vs {
			union[normalize(v)] = struct{}{}
		}
	}
	_, _, err := s.invoke(ctx, OpSetDifferUpdate, setArgs(union)...)
	return err
}

// Symmetric difference is deliberately unsupported.
func (s *Set) SymmetricDifference(ctx context.Context, other *Set) (map[any]struct{}, error) {
	return nil, errors.Wrap(ErrNotImplemented, "symmetric difference")
}

func (s *Set) SymmetricDifferenceUpdate(ctx context.Context, other *Set) error {
	return errors.Wrap(ErrNotImplemented, "symmetric difference")
}

func (s *Set) IsSubset(ctx context.Context, other *Set) (bool, error) {
	mine, err := s.Members(ctx)
	if err != nil {
		return false, err
	}
	theirs, err := other.Members(ctx)
	if err != nil {
		return false, err
	}
	for m := range mine {
		if _, ok := theirs[m]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *Set) IsSuperset(ctx context.Context, other *Set) (bool, error) {
	return other.IsSubset(ctx, s)
}

func (s *Set) IsDisjoint(ctx context.Context, other *Set) (bool, error) {
	common, err := s.Intersection(ctx, other)
	if err != nil {
		return false, err
	}
	return len(common) == 0, nil
}

// Equal compares reconstructed membership, not keys.
func (s *Set) Equal(ctx context.Context, other *Set) (bool, error) {
	mine, err := s.Members(ctx)
	if err != nil {
		return false, err
	}
	theirs, err := other.Members(ctx)
	if err != nil {
		return false, err
	}
	if len(mine) != len(theirs) {
		return false, nil
	}
	for m := range mine {
		if _, ok := theirs[m]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *Set) String() string {
	members, _ := s.Members(context.Background())
	return fmt.Sprintf("Set(%v, '%s')", members, s.key)
}

// localReduce type-checks the local operands and materializes this set.
func (s *Set) localReduce(ctx context.Context, locals [][]any) (map[any]struct{}, error) {
	if err := s.checkLocals(locals); err != nil {
		return nil, err
	}
	return s.Members(ctx)
}

func (s *Set) checkLocals(locals [][]any) error {
	for _, vs := range locals {
		if err := s.tag.checkAll(vs); err != nil {
			return err
		}
	}
	return nil
}

func toSet(values []any) map[any]struct{} {
	out := make(map[any]struct{}, len(values))
	for _, v := range values {
		out[normalize(v)] = struct{}{}
	}
	return out
}

func intersect(a, b map[any]struct{}) map[any]struct{} {
	out := make(map[any]struct{})
	for m := range a {
		if _, ok := b[m]; ok {
			out[m] = struct{}{}
		}
	}
	return out
}

func setArgs(members map[any]struct{}) []any {
	args := make([]any, 0, len(members))
	for m := range members {
		args = append(args, m)
	}
	return args
}
