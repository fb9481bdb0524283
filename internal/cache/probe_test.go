// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProber struct {
	calls atomic.Int32
	d     time.Duration
	err   error
}

func (p *countingProber) Duration(context.Context, string) (time.Duration, error) {
	p.calls.Add(1)
	return p.d, p.err
}

// blockingProber holds every probe until release is closed.
type blockingProber struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (p *blockingProber) Duration(ctx context.Context, _ string) (time.Duration, error) {
	if p.calls.Add(1) == 1 {
		close(p.started)
	}
	select {
	case <-p.release:
		return 42 * time.Second, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func writeVideo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestProbeCache_HitAfterMiss(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &countingProber{d: 30 * time.Second}
	c := NewProbeCache(store, p, time.Hour)
	path := writeVideo(t, t.TempDir(), "a.mp4", "data")

	for i := 0; i < 3; i++ {
		d, err := c.Duration(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, d)
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestProbeCache_ChangedFileIsReprobed(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &countingProber{d: time.Second}
	c := NewProbeCache(store, p, time.Hour)
	path := writeVideo(t, t.TempDir(), "a.mp4", "v1")

	_, err := c.Duration(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version two"), 0o600))
	_, err = c.Duration(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.calls.Load())
}

func TestProbeCache_ErrorsAreNotCached(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &countingProber{err: errors.New("ffprobe failed")}
	c := NewProbeCache(store, p, time.Hour)
	path := writeVideo(t, t.TempDir(), "a.mp4", "x")

	_, err := c.Duration(context.Background(), path)
	require.Error(t, err)
	_, err = c.Duration(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, int32(2), p.calls.Load())
	assert.Equal(t, 0, store.Stats().CurrentSize)
}

func TestProbeCache_MissingFile(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &countingProber{d: time.Second}
	c := NewProbeCache(store, p, time.Hour)

	_, err := c.Duration(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, p.calls.Load())
}

func TestProbeCache_RedisBackend(t *testing.T) {
	_, store := setupMiniRedis(t)
	p := &countingProber{d: 5 * time.Second}
	c := NewProbeCache(store, p, time.Hour)
	path := writeVideo(t, t.TempDir(), "a.mp4", "data")

	for i := 0; i < 2; i++ {
		d, err := c.Duration(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, d)
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestProbeCache_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &blockingProber{started: make(chan struct{}), release: make(chan struct{})}
	c := NewProbeCache(store, p, time.Hour, WithProbeTimeout(5*time.Second))
	path := writeVideo(t, t.TempDir(), "a.mp4", "data")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Duration(firstCtx, path)
		firstErr <- err
	}()
	<-p.started

	type result struct {
		d   time.Duration
		err error
	}
	second := make(chan result, 1)
	go func() {
		d, err := c.Duration(context.Background(), path)
		second <- result{d, err}
	}()

	// Let the second caller join the in-flight probe.
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(p.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 42*time.Second, res.d)
}

func TestProbeCache_Timeout(t *testing.T) {
	store := NewMemoryStore(0)
	defer func() { _ = store.Close() }()
	p := &blockingProber{started: make(chan struct{}), release: make(chan struct{})}
	defer close(p.release)
	c := NewProbeCache(store, p, time.Hour, WithProbeTimeout(30*time.Millisecond))
	path := writeVideo(t, t.TempDir(), "a.mp4", "data")

	_, err := c.Duration(context.Background(), path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
