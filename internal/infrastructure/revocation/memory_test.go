package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	list := NewMemoryList().WithClock(func() time.Time { return now })

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lapses with the token")
}

func TestMemoryListIgnoresEmptyAndNonPositive(t *testing.T) {
	ctx := context.Background()
	list := NewMemoryList()

	require.NoError(t, list.Revoke(ctx, "", time.Hour))
	require.NoError(t, list.Revoke(ctx, "jti-2", 0))

	revoked, err := list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryListPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	list := NewMemoryList().WithClock(func() time.Time { return now })

	require.NoError(t, list.Revoke(ctx, "short", time.Minute))
	require.NoError(t, list.Revoke(ctx, "long", time.Hour))

	assert.Equal(t, 0, list.Prune())
	assert.Equal(t, 2, list.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, list.Prune())
	assert.Equal(t, 1, list.Len())

	revoked, err := list.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryListRunDropsUnpresentedTokens(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	later := issued.Add(2 * time.Hour)
	clock := issued
	list := NewMemoryList().WithClock(func() time.Time { return clock })
	require.NoError(t, list.Revoke(ctx, "never-seen-again", time.Hour))
	clock = later

	done := make(chan struct{})
	go func() {
		list.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return list.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
