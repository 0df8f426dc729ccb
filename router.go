package hotredis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Op enumerates every operation a handle may request. The router resolves
// an Op through an explicit table, never by name reflection.
type Op uint8

const (
	opNone Op = iota

	// list
	OpLLen
	OpLRange
	OpLIndex
	OpLSet
	OpLPush
	OpRPush
	OpLPop
	OpRPop
	OpSortStore

	// set
	OpSAdd
	OpSRem
	OpSPop
	OpSCard
	OpSIsMember
	OpSMembers
	OpSInter
	OpSUnion
	OpSDiff
	OpSInterStore
	OpSUnionStore
	OpSDiffStore

	// hash
	OpHSet
	OpHGet
	OpHGetAll
	OpHDel
	OpHSetNX
	OpHKeys

	// any
	OpDel

	// atomic scripts
	OpListMultiply
	OpListInsert
	OpListPop
	OpListReverse
	OpSetInterUpdate
	OpSetDifferUpdate
)

var opNames = map[Op]string{
	OpLLen:            "llen",
	OpLRange:          "lrange",
	OpLIndex:          "lindex",
	OpLSet:            "lset",
	OpLPush:           "lpush",
	OpRPush:           "rpush",
	OpLPop:            "lpop",
	OpRPop:            "rpop",
	OpSortStore:       "sortstore",
	OpSAdd:            "sadd",
	OpSRem:            "srem",
	OpSPop:            "spop",
	OpSCard:           "scard",
	OpSIsMember:       "sismember",
	OpSMembers:        "smembers",
	OpSInter:          "sinter",
	OpSUnion:          "sunion",
	OpSDiff:           "sdiff",
	OpSInterStore:     "sinterstore",
	OpSUnionStore:     "sunionstore",
	OpSDiffStore:      "sdiffstore",
	OpHSet:            "hset",
	OpHGet:            "hget",
	OpHGetAll:         "hgetall",
	OpHDel:            "hdel",
	OpHSetNX:          "hsetnx",
	OpHKeys:           "hkeys",
	OpDel:             "del",
	OpListMultiply:    scriptListMultiply,
	OpListInsert:      scriptListInsert,
	OpListPop:         scriptListPop,
	OpListReverse:     scriptListReverse,
	OpSetInterUpdate:  scriptSetInterUpdate,
	OpSetDifferUpdate: scriptSetDifferUpdate,
}

func (op Op) String() string {
	name, ok := opNames[op]
	if !ok {
		return "op?"
	}
	return name
}

var ErrUnsupportedOp = errors.New("hotredis: unsupported operation")

type nativeFunc func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder

// route is one table entry: a native command runner or a catalog script name.
type route struct {
	native nativeFunc
	script string
}

// Router is the single dispatch point for every handle. It maps an Op to a
// native command or an atomic script and runs it against the batch threaded
// through the context, if any, else against the live client.
type Router struct {
	live    *redis.Client
	catalog *Catalog
	table   map[Op]route
}

func newRouter(live *redis.Client, catalog *Catalog) *Router {
	r := &Router{live: live, catalog: catalog}
	r.table = map[Op]route{
		OpLLen: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LLen(ctx, key)
		}},
		OpLRange: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LRange(ctx, key, argInt(args[0]), argInt(args[1]))
		}},
		OpLIndex: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LIndex(ctx, key, argInt(args[0]))
		}},
		OpLSet: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LSet(ctx, key, argInt(args[0]), args[1])
		}},
		OpLPush: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LPush(ctx, key, args...)
		}},
		OpRPush: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.RPush(ctx, key, args...)
		}},
		OpLPop: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.LPop(ctx, key)
		}},
		OpRPop: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.RPop(ctx, key)
		}},
		OpSortStore: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SortStore(ctx, key, key, args[0].(*redis.Sort))
		}},
		OpSAdd: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SAdd(ctx, key, args...)
		}},
		OpSRem: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SRem(ctx, key, args...)
		}},
		OpSPop: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SPop(ctx, key)
		}},
		OpSCard: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SCard(ctx, key)
		}},
		OpSIsMember: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SIsMember(ctx, key, args[0])
		}},
		OpSMembers: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SMembers(ctx, key)
		}},
		OpSInter: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SInter(ctx, argKeys(key, args)...)
		}},
		OpSUnion: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SUnion(ctx, argKeys(key, args)...)
		}},
		OpSDiff: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SDiff(ctx, argKeys(key, args)...)
		}},
		OpSInterStore: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SInterStore(ctx, key, argKeys(key, args)...)
		}},
		OpSUnionStore: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SUnionStore(ctx, key, argKeys(key, args)...)
		}},
		OpSDiffStore: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.SDiffStore(ctx, key, argKeys(key, args)...)
		}},
		OpHSet: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HSet(ctx, key, args...)
		}},
		OpHGet: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HGet(ctx, key, args[0].(string))
		}},
		OpHGetAll: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HGetAll(ctx, key)
		}},
		OpHDel: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HDel(ctx, key, argStrings(args)...)
		}},
		OpHSetNX: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HSetNX(ctx, key, args[0].(string), args[1])
		}},
		OpHKeys: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.HKeys(ctx, key)
		}},
		OpDel: {native: func(ctx context.Context, c redis.Cmdable, key string, args []any) redis.Cmder {
			return c.Del(ctx, key)
		}},
		OpListMultiply:    {script: scriptListMultiply},
		OpListInsert:      {script: scriptListInsert},
		OpListPop:         {script: scriptListPop},
		OpListReverse:     {script: scriptListReverse},
		OpSetInterUpdate:  {script: scriptSetInterUpdate},
		OpSetDifferUpdate: {script: scriptSetDifferUpdate},
	}
	for op, rt := range r.table {
		if rt.script == "" {
			continue
		}
		if _, ok := catalog.Get(rt.script); !ok {
			panic("hotredis: op " + op.String() + " references an unknown script")
		}
	}
	return r
}

// Invoke runs op against key. The returned queued flag is true when the call
// went into a batch; the command then resolves only after Batch.Exec and its
// result must not be read before that.
func (r *Router) Invoke(ctx context.Context, key string, op Op, args ...any) (cmd redis.Cmder, queued bool, err error) {
	rt, ok := r.table[op]
	if !ok {
		return nil, false, errors.Wrap(ErrUnsupportedOp, op.String())
	}
	batch := BatchFrom(ctx)
	var dest redis.Cmdable = r.live
	if batch != nil {
		dest = batch.pipe
	}
	start := time.Now()
	if rt.native != nil {
		cmd = rt.native(ctx, dest, key, args)
	} else {
		script, _ := r.catalog.Get(rt.script)
		cmd = script.Run(ctx, dest, []string{key}, args...)
	}
	if batch != nil {
		opCount.WithLabelValues(op.String(), "queued").Inc()
		return cmd, true, nil
	}
	opDuration.WithLabelValues(op.String()).Observe(time.Since(start).Seconds())
	switch cmd.Err() {
	case nil:
		opCount.WithLabelValues(op.String(), "ok").Inc()
	case redis.Nil:
		opCount.WithLabelValues(op.String(), "nil").Inc()
	default:
		opCount.WithLabelValues(op.String(), "error").Inc()
	}
	return cmd, false, nil
}

func argInt(a any) int64 {
	switch v := a.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	panic("hotredis: integer argument expected")
}

func argKeys(key string, args []any) []string {
	keys := make([]string, 0, len(args)+1)
	keys = append(keys, key)
	for _, a := range args {
		keys = append(keys, a.(string))
	}
	return keys
}

func argStrings(args []any) []string {
	strs := make([]string, 0, len(args))
	for _, a := range args {
		strs = append(strs, a.(string))
	}
	return strs
}
