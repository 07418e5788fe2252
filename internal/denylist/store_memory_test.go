package denylist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caplock/pkg/domain"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	addr := domain.MustParseAddress("0x00000000000000000000000000000000000000aa")

	blocked, err := s.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.False(t, blocked, "unknown addresses are not blocked")

	require.NoError(t, s.Set(ctx, addr, true))
	require.NoError(t, s.Set(ctx, addr, true)) // idempotent
	blocked, err = s.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, s.Set(ctx, addr, false))
	blocked, err = s.IsBlocked(ctx, addr)
	require.NoError(t, err)
	assert.False(t, blocked)
}
