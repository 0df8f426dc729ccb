package hotredis

import (
	"strconv"

	"github.com/pkg/errors"
)

// kind is the element type a collection handle has committed to. A tag
// starts unset and is fixed by the first value written through the handle;
// it never changes after that.
type kind uint8

const (
	kindUnset kind = iota
	kindInt
	kindFloat
	kindString
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	}
	return "unset"
}

var ErrTypeMismatch = errors.New("hotredis: element type mismatch")
var ErrUnsupportedValue = errors.New("hotredis: unsupported value type")

func kindOf(v any) (kind, error) {
	switch v.(type) {
	case int, int64:
		return kindInt, nil
	case float64:
		return kindFloat, nil
	case string:
		return kindString, nil
	}
	return kindUnset, errors.Wrapf(ErrUnsupportedValue, "%T", v)
}

// kindTag is the Unset -> Fixed state machine of a handle. check walks a
// candidate value, recursing into nested homogeneous collections, and either
// adopts its scalar type (first write) or fails on conflict. A failed check
// leaves the tag untouched.
type kindTag struct {
	k kind
}

func (t *kindTag) check(v any) error {
	switch vv := v.(type) {
	case []any:
		for _, e := range vv {
			if err := t.check(e); err != nil {
				return err
			}
		}
		return nil
	case map[any]struct{}:
		for e := range vv {
			if err := t.check(e); err != nil {
				return err
			}
		}
		return nil
	}
	k, err := kindOf(v)
	if err != nil {
		return err
	}
	if t.k == kindUnset {
		t.k = k
		return nil
	}
	if k != t.k {
		return errors.Wrapf(ErrTypeMismatch, "%s != %s", k, t.k)
	}
	return nil
}

// checkAll validates values without adopting any of them on a later failure:
// the whole slice is walked against a scratch copy of the tag first, then
// the tag is advanced once.
func (t *kindTag) checkAll(values []any) error {
	scratch := *t
	for _, v := range values {
		if err := scratch.check(v); err != nil {
			return err
		}
	}
	t.k = scratch.k
	return nil
}

// reconstruct converts a raw remote reply back into a typed local value.
// A string tag (raw text) short-circuits; replies shaped like collections
// keep their shape, elements converted one by one.
func (t *kindTag) reconstruct(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return t.scalar(v)
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			e, err := t.scalar(s)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, e := range v {
			r, err := t.reconstruct(e)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}
	return raw, nil
}

func (t *kindTag) scalar(s string) (any, error) {
	switch t.k {
	case kindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrTypeMismatch, "%q is not an int", s)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrTypeMismatch, "%q is not a float", s)
		}
		return f, nil
	}
	// unset or raw text: pass through unconverted
	return s, nil
}

// members reconstructs an unordered reply into a set-shaped value.
func (t *kindTag) members(raw []string) (map[any]struct{}, error) {
	out := make(map[any]struct{}, len(raw))
	for _, s := range raw {
		e, err := t.scalar(s)
		if err != nil {
			return nil, err
		}
		out[e] = struct{}{}
	}
	return out, nil
}

// normalize widens ints so that stored and reconstructed values compare equal.
func normalize(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}

func normalizeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return out
}
