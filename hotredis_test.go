package hotredis

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	ctx := context.Background()
	store, err := Open(ctx, Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, ctx
}

// liveStore connects to a real server for the few commands miniredis does
// not implement (SORT).
func liveStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, ctx
}

func TestOpenBadAddr(t *testing.T) {
	_, err := Open(context.Background(), Options{Addr: "localhost:1"})
	require.Error(t, err)
}
