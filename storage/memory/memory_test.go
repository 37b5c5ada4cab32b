package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_SetGet(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v", time.Minute))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestBackend_GetMissingReturnsEmpty(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	got, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBackend_Expiration(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBackend_CheckAndSet_SetIfAbsent(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	ok, err := b.CheckAndSet(ctx, "k", "", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.CheckAndSet(ctx, "k", "", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second set-if-absent must fail, key already exists")

	got, _ := b.Get(ctx, "k")
	assert.Equal(t, "v1", got)
}

func TestBackend_CheckAndSet_CompareMismatch(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	_, _ = b.CheckAndSet(ctx, "k", "", "v1", time.Minute)
	ok, err := b.CheckAndSet(ctx, "k", "wrong", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := b.Get(ctx, "k")
	assert.Equal(t, "v1", got)
}

func TestBackend_CheckAndSet_CompareMatch(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	_, _ = b.CheckAndSet(ctx, "k", "", "v1", time.Minute)
	ok, err := b.CheckAndSet(ctx, "k", "v1", "v2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := b.Get(ctx, "k")
	assert.Equal(t, "v2", got)
}

func TestBackend_Delete(t *testing.T) {
	b := New()
	defer b.Close()
	ctx := context.Background()

	_ = b.Set(ctx, "k", "v", time.Minute)
	require.NoError(t, b.Delete(ctx, "k"))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBackend_DeleteMissingIsNotAnError(t *testing.T) {
	b := New()
	defer b.Close()
	assert.NoError(t, b.Delete(context.Background(), "nope"))
}

func TestBackend_RespectsCanceledContext(t *testing.T) {
	b := New()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Get(ctx, "k")
	assert.Error(t, err)
}
