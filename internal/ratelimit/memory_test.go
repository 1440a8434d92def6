package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterDeniesOverLimit(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 10, 0, time.UTC)
	limiter := NewMemoryLimiterWithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Admit(ctx, "key-1", 2)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Admit(ctx, "key-1", 2)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	// Window started at 12:00:00, so 50 seconds remain.
	assert.Equal(t, 50, d.RetryAfterSeconds)
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 59, 0, time.UTC)
	limiter := NewMemoryLimiterWithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Admit(ctx, "key-1", 2)
		require.NoError(t, err)
	}

	d, err := limiter.Admit(ctx, "key-1", 2)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// Crossing the minute boundary opens a fresh window.
	now = now.Add(2 * time.Second)
	d, err = limiter.Admit(ctx, "key-1", 2)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiterWithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Admit(ctx, "key-1", 2)
		require.NoError(t, err)
	}
	d, err := limiter.Admit(ctx, "key-1", 2)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Admit(ctx, "key-2", 2)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCurrentWindow(t *testing.T) {
	start, retryAfter := currentWindow(time.Date(2026, 8, 31, 12, 0, 45, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC).Unix(), start)
	assert.Equal(t, 15, retryAfter)

	// Exactly on the boundary a full window remains.
	start, retryAfter = currentWindow(time.Date(2026, 8, 31, 12, 1, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 31, 12, 1, 0, 0, time.UTC).Unix(), start)
	assert.Equal(t, 60, retryAfter)
}
