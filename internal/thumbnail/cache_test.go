// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 'f', 'a', 'k', 'e', 0xFF, 0xD9}

type fakeExtractor struct {
	calls    atomic.Int32
	inflight atomic.Int32
	maxSeen  atomic.Int32
	hold     chan struct{}
	err      error
	lastReq  atomic.Pointer[FrameRequest]
}

func (f *fakeExtractor) ExtractFrame(ctx context.Context, req FrameRequest, w io.Writer) error {
	f.calls.Add(1)
	f.lastReq.Store(&req)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if n <= prev || f.maxSeen.CompareAndSwap(prev, n) {
			break
		}
	}
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	_, err := w.Write(fakeJPEG)
	return err
}

type fixedProber time.Duration

func (p fixedProber) Duration(context.Context, string) (time.Duration, error) {
	return time.Duration(p), nil
}

func newTestCache(t *testing.T, ex Extractor, opts ...Option) *Cache {
	t.Helper()
	return New(Config{Dir: t.TempDir(), Timeout: 5 * time.Second}, ex, opts...)
}

func TestEnsure_GeneratesOnceThenHits(t *testing.T) {
	ex := &fakeExtractor{}
	c := newTestCache(t, ex)

	res := Wait(context.Background(), c.Ensure(context.Background(), "/videos/clip.mp4", "clip"))
	require.NoError(t, res.Err)
	assert.False(t, res.Cached)
	assert.Equal(t, "/api/thumbnails/clip.jpg", res.Ref)
	assert.Equal(t, filepath.Join(c.Dir(), "clip.jpg"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, fakeJPEG, data)

	again := Wait(context.Background(), c.Ensure(context.Background(), "/videos/clip.mp4", "clip"))
	require.NoError(t, again.Err)
	assert.True(t, again.Cached)
	assert.Equal(t, res.Ref, again.Ref)
	assert.EqualValues(t, 1, ex.calls.Load(), "cache hit must not re-invoke the extractor")

	req := ex.lastReq.Load()
	require.NotNil(t, req)
	assert.Equal(t, 320, req.Width)
	assert.Equal(t, 180, req.Height)
	assert.Equal(t, time.Duration(0), req.Offset)
}

func TestEnsure_ExistingArtifactSkipsExtractor(t *testing.T) {
	ex := &fakeExtractor{}
	c := newTestCache(t, ex)
	require.NoError(t, os.WriteFile(c.Path("movie night"), fakeJPEG, 0o644))

	res := Wait(context.Background(), c.Ensure(context.Background(), "/videos/movie night.mkv", "movie night"))
	require.NoError(t, res.Err)
	assert.True(t, res.Cached)
	assert.Equal(t, "/api/thumbnails/movie%20night.jpg", res.Ref)
	assert.Zero(t, ex.calls.Load())
}

func TestEnsure_EmptyArtifactIsRegenerated(t *testing.T) {
	ex := &fakeExtractor{}
	c := newTestCache(t, ex)
	require.NoError(t, os.WriteFile(c.Path("clip"), nil, 0o644))

	res := Wait(context.Background(), c.Ensure(context.Background(), "clip.mp4", "clip"))
	require.NoError(t, res.Err)
	assert.False(t, res.Cached)
	assert.EqualValues(t, 1, ex.calls.Load())
}

func TestEnsure_FailureIsIsolated(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("moov atom not found")}
	c := newTestCache(t, ex)

	res := Wait(context.Background(), c.Ensure(context.Background(), "broken.mp4", "broken"))
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrExtraction)
	assert.Empty(t, res.Ref)

	_, err := os.Stat(c.Path("broken"))
	assert.True(t, os.IsNotExist(err), "failed extraction must not leave an artifact")

	// The next call retries rather than caching the failure.
	ex.err = nil
	res = Wait(context.Background(), c.Ensure(context.Background(), "broken.mp4", "broken"))
	require.NoError(t, res.Err)
	assert.EqualValues(t, 2, ex.calls.Load())
}

func TestEnsure_NoDataIsFailure(t *testing.T) {
	c := newTestCache(t, ExtractorFunc(func(context.Context, FrameRequest, io.Writer) error { return nil }))

	res := Wait(context.Background(), c.Ensure(context.Background(), "x.mp4", "x"))
	assert.ErrorIs(t, res.Err, ErrExtraction)
	_, err := os.Stat(c.Path("x"))
	assert.True(t, os.IsNotExist(err))
}

func TestEnsure_InvalidID(t *testing.T) {
	ex := &fakeExtractor{}
	c := newTestCache(t, ex)

	for _, id := range []string{"a/b", "..", ""} {
		res := Wait(context.Background(), c.Ensure(context.Background(), "x.mp4", id))
		assert.ErrorIs(t, res.Err, ErrInvalidID, "id %q", id)
	}
	assert.Zero(t, ex.calls.Load())
}

func TestEnsure_ConcurrentFirstRequestsExtractOnce(t *testing.T) {
	ex := &fakeExtractor{hold: make(chan struct{})}
	c := newTestCache(t, ex)

	const callers = 20
	chans := make([]<-chan Result, callers)
	for i := range chans {
		chans[i] = c.Ensure(context.Background(), "shared.mp4", "shared")
	}
	close(ex.hold)

	for _, ch := range chans {
		res := Wait(context.Background(), ch)
		require.NoError(t, res.Err)
		assert.Equal(t, "/api/thumbnails/shared.jpg", res.Ref)
	}
	assert.EqualValues(t, 1, ex.calls.Load())
}

func TestEnsure_BoundsConcurrentExtractions(t *testing.T) {
	ex := &fakeExtractor{hold: make(chan struct{})}
	c := New(Config{Dir: t.TempDir(), MaxConcurrent: 2, Timeout: 5 * time.Second}, ex)

	var chans []<-chan Result
	for i := 0; i < 6; i++ {
		chans = append(chans, c.Ensure(context.Background(), "v.mp4", fmt.Sprintf("video-%d", i)))
	}
	require.Eventually(t, func() bool { return ex.inflight.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(ex.hold)

	for _, ch := range chans {
		require.NoError(t, Wait(context.Background(), ch).Err)
	}
	assert.LessOrEqual(t, ex.maxSeen.Load(), int32(2))
	assert.EqualValues(t, 6, ex.calls.Load())
}

func TestEnsure_QueueWaitDoesNotConsumeTimeout(t *testing.T) {
	var calls atomic.Int32
	ex := ExtractorFunc(func(ctx context.Context, _ FrameRequest, w io.Writer) error {
		calls.Add(1)
		select {
		case <-time.After(60 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		_, err := w.Write(fakeJPEG)
		return err
	})
	c := New(Config{Dir: t.TempDir(), MaxConcurrent: 1, Timeout: 150 * time.Millisecond}, ex)

	var chans []<-chan Result
	for i := 0; i < 4; i++ {
		chans = append(chans, c.Ensure(context.Background(), "v.mp4", fmt.Sprintf("v%d", i)))
	}
	for i, ch := range chans {
		res := Wait(context.Background(), ch)
		assert.NoError(t, res.Err, "v%d", i)
	}
	assert.EqualValues(t, 4, calls.Load())
}

func TestEnsure_CallerCancellationDoesNotAbortExtraction(t *testing.T) {
	ex := &fakeExtractor{hold: make(chan struct{})}
	c := newTestCache(t, ex)

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.Ensure(ctx, "v.mp4", "v")

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	cancel()
	res := Wait(waitCtx, ch)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	close(ex.hold)
	res = Wait(context.Background(), ch)
	require.NoError(t, res.Err)
	_, err := os.Stat(c.Path("v"))
	assert.NoError(t, err)
}

func TestEnsure_TimeoutKillsStuckExtraction(t *testing.T) {
	ex := &fakeExtractor{hold: make(chan struct{})}
	defer close(ex.hold)
	c := New(Config{Dir: t.TempDir(), Timeout: 50 * time.Millisecond}, ex)

	res := Wait(context.Background(), c.Ensure(context.Background(), "v.mp4", "v"))
	assert.ErrorIs(t, res.Err, ErrExtraction)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestEnsure_SeeksToMiddle(t *testing.T) {
	ex := &fakeExtractor{}
	c := newTestCache(t, ex, WithProber(fixedProber(10*time.Second)))

	require.NoError(t, Wait(context.Background(), c.Ensure(context.Background(), "v.mp4", "v")).Err)
	assert.Equal(t, 5*time.Second, ex.lastReq.Load().Offset)
}

func TestEnsure_ManyIndependentFailures(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("boom")}
	c := newTestCache(t, ex)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := Wait(context.Background(), c.Ensure(context.Background(), "v.mp4", fmt.Sprintf("v%d", i)))
			assert.ErrorIs(t, res.Err, ErrExtraction)
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 50, ex.calls.Load())
}
