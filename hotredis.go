// Package hotredis exposes Redis-backed collection types (List, Set, Dict)
// that look and mutate like local ones. Every handle addresses remote state
// by key; reads and writes translate into single Redis commands or into
// server-side atomic Lua procedures, so separate processes can share one
// collection without client-side locking.
package hotredis

import (
	"context"
	"log/slog"

	"github.com/my4381918/hot-redis/utils"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	// Addr is the Redis address, host:port.
	Addr string
	// Redis overrides the whole client config; Addr is ignored if set.
	Redis  *redis.Options
	Logger utils.Logger
}

func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = "localhost:6379"
	}
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
}

// Store owns the live connection, the atomic script catalog and the command
// router. All handles are created from a Store and share its connection.
type Store struct {
	client  *redis.Client
	catalog *Catalog
	router  *Router
	log     utils.Logger
}

var ErrClosed = errors.New("hotredis: store is closed")

// Open connects to Redis and registers the atomic script catalog on the
// server, so that later EVALSHA calls (including pipelined ones) never hit
// NOSCRIPT.
func Open(ctx context.Context, opts Options) (*Store, error) {
	opts.SetDefaults()
	ropts := opts.Redis
	if ropts == nil {
		ropts = &redis.Options{Addr: opts.Addr}
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "hotredis: ping")
	}
	catalog, err := NewCatalog(atomsLua)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := catalog.Load(ctx, client, opts.Logger); err != nil {
		_ = client.Close()
		return nil, err
	}
	store := &Store{
		client:  client,
		catalog: catalog,
		log:     opts.Logger,
	}
	store.router = newRouter(client, catalog)
	return store, nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return ErrClosed
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// Client exposes the underlying go-redis client for operations the
// collection surface does not cover.
func (s *Store) Client() *redis.Client {
	return s.client
}
