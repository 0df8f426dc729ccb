package hotredis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var ErrBatchDone = errors.New("hotredis: batch already executed")

// Batch queues router calls and executes them as one atomic round trip.
// It is an explicit object: thread it through the context with WithBatch
// and every handle operation under that context enqueues instead of
// talking to the server. Independent batches may coexist; each executes
// exactly once.
//
// The server does not roll a batch back when one queued command fails:
// Exec returns every command so the caller can inspect per-command results.
type Batch struct {
	store *Store
	pipe  redis.Pipeliner
	done  bool
}

func (s *Store) NewBatch() *Batch {
	return &Batch{store: s, pipe: s.client.Pipeline()}
}

// Len is the number of queued commands.
func (b *Batch) Len() int {
	return b.pipe.Len()
}

// Exec flushes the queue in a single round trip. The first command error
// is returned as err; cmds always carries every queued command with its
// individual result.
func (b *Batch) Exec(ctx context.Context) (cmds []redis.Cmder, err error) {
	if b.done {
		return nil, ErrBatchDone
	}
	b.done = true
	n := float64(b.pipe.Len())
	cmds, err = b.pipe.Exec(ctx)
	if err != nil {
		batchSize.WithLabelValues("error").Observe(n)
		b.store.log.DebugCtx(ctx, "batch failed", "queued", n, "err", err)
		return
	}
	batchSize.WithLabelValues("ok").Observe(n)
	b.store.log.DebugCtx(ctx, "batch executed", "queued", n)
	return
}

// Discard drops the queue without executing it.
func (b *Batch) Discard() {
	if b.done {
		return
	}
	b.done = true
	b.pipe.Discard()
}

type batchCtxKey struct{}

// WithBatch routes every handle operation under ctx into b.
func WithBatch(ctx context.Context, b *Batch) context.Context {
	return context.WithValue(ctx, batchCtxKey{}, b)
}

// BatchFrom returns the batch threaded through ctx, or nil. An executed
// batch no longer captures calls.
func BatchFrom(ctx context.Context) *Batch {
	b, _ := ctx.Value(batchCtxKey{}).(*Batch)
	if b == nil || b.done {
		return nil
	}
	return b
}
