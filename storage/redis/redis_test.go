package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupRedisTest(t *testing.T) (*Backend, func()) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	backend, err := New(Config{Addr: addr})
	if err != nil {
		return nil, func() {}
	}

	teardown := func() {
		_ = backend.GetClient().FlushAll(context.Background())
		_ = backend.Close()
	}
	return backend, teardown
}

func TestBackend_Get(t *testing.T) {
	backend, teardown := setupRedisTest(t)
	defer teardown()
	if backend == nil {
		t.Skip("Redis not available, skipping test")
	}
	ctx := context.Background()

	val, err := backend.Get(ctx, "nonexistent")
	require.NoError(t, err)
	require.Equal(t, "", val)

	require.NoError(t, backend.Set(ctx, "testkey", "testvalue", time.Hour))
	val, err = backend.Get(ctx, "testkey")
	require.NoError(t, err)
	require.Equal(t, "testvalue", val)
}

func TestBackend_Expiration(t *testing.T) {
	backend, teardown := setupRedisTest(t)
	defer teardown()
	if backend == nil {
		t.Skip("Redis not available, skipping test")
	}
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "expiredkey", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	val, err := backend.Get(ctx, "expiredkey")
	require.NoError(t, err)
	require.Equal(t, "", val)
}

func TestBackend_CheckAndSet(t *testing.T) {
	backend, teardown := setupRedisTest(t)
	defer teardown()
	if backend == nil {
		t.Skip("Redis not available, skipping test")
	}
	ctx := context.Background()

	ok, err := backend.CheckAndSet(ctx, "cas-key", "", "v1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = backend.CheckAndSet(ctx, "cas-key", "", "v2", time.Minute)
	require.NoError(t, err)
	require.False(t, ok, "set-if-absent must fail once the key exists")

	ok, err = backend.CheckAndSet(ctx, "cas-key", "v1", "v2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	val, err := backend.Get(ctx, "cas-key")
	require.NoError(t, err)
	require.Equal(t, "v2", val)
}

func TestBackend_Delete(t *testing.T) {
	backend, teardown := setupRedisTest(t)
	defer teardown()
	if backend == nil {
		t.Skip("Redis not available, skipping test")
	}
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, backend.Delete(ctx, "k"))

	val, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "", val)
}
