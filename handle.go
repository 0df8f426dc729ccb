package hotredis

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// handle is the base of every collection variant: one remote key, the
// store it lives on, and the element type tag. An owned handle deletes its
// remote data on Close; a borrowed one (Attach* constructors) never does.
//
// Two handles may alias the same key. Each keeps its own tag, and closing
// an owned alias deletes data the other still addresses; callers aliasing
// keys take that on themselves.
type handle struct {
	store  *Store
	key    string
	owned  bool
	closed bool
	tag    kindTag
}

// Key is the remote identifier this handle addresses.
func (h *handle) Key() string {
	return h.key
}

// Close releases the handle. For an owned handle the remote data is
// deleted; Close is a no-op the second time and for borrowed handles.
func (h *handle) Close(ctx context.Context) error {
	if h.closed || !h.owned {
		h.closed = true
		return nil
	}
	h.closed = true
	cmd, queued, err := h.store.router.Invoke(ctx, h.key, OpDel)
	if err != nil || queued {
		return err
	}
	return cmd.Err()
}

func (h *handle) invoke(ctx context.Context, op Op, args ...any) (redis.Cmder, bool, error) {
	if h.store == nil {
		return nil, false, ErrClosed
	}
	cmd, queued, err := h.store.router.Invoke(ctx, h.key, op, args...)
	if err != nil || queued {
		return cmd, queued, err
	}
	if e := cmd.Err(); e != nil {
		return cmd, false, e
	}
	return cmd, false, nil
}
