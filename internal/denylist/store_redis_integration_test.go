//go:build integration

package denylist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caplock/pkg/domain"
	"caplock/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client)
	addr := domain.MustParseAddress("0x00000000000000000000000000000000000000aa")

	blocked, err := store.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, store.Set(ctx, addr, true))
	blocked, err = store.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.True(t, blocked)

	// A second replica sharing the client sees the same flag.
	other := NewRedisStore(rc.Client)
	blocked, err = other.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, store.Set(ctx, addr, false))
	blocked, err = store.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.False(t, blocked)
}
