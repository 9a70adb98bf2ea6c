package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_IncrWithExpiry(t *testing.T) {
	m := NewMemory()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	n, err := m.IncrWithExpiry(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, _ = m.IncrWithExpiry(ctx, "k", time.Minute)
	assert.Equal(t, int64(2), n)

	clock = clock.Add(2 * time.Minute)
	n, _ = m.IncrWithExpiry(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)
}

func TestMemory_Lock(t *testing.T) {
	m := NewMemory()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	token, err := m.AcquireLock(ctx, "lock", time.Minute)
	require.NoError(t, err)

	_, err = m.AcquireLock(ctx, "lock", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, m.ReleaseLock(ctx, "lock", "someone-else"))
	_, err = m.AcquireLock(ctx, "lock", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, m.ReleaseLock(ctx, "lock", token))
	_, err = m.AcquireLock(ctx, "lock", time.Minute)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	_, err = m.AcquireLock(ctx, "lock", time.Minute)
	assert.NoError(t, err, "expired lock should be re-acquirable")
}
