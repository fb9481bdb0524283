// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", 90*time.Second, time.Minute))

	d, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	st := s.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Sets)
	assert.Equal(t, 1, st.CurrentSize)
}

func TestMemoryStore_Expiration(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", time.Second, time.Minute))
	_, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)

	assert.Equal(t, 1, s.deleteExpired())
	assert.Equal(t, 0, s.Stats().CurrentSize)
	assert.Equal(t, int64(1), s.Stats().Evictions)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", time.Second, time.Minute))
	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_JanitorStopsOnClose(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, s.Set(context.Background(), "k", time.Second, time.Millisecond))

	assert.Eventually(t, func() bool {
		return s.Stats().CurrentSize == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
