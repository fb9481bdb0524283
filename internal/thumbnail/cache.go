// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package thumbnail maintains the on-disk preview image store. Artifacts live
// at {dir}/{id}.jpg; presence of the file is the cache test.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/vidserve/internal/fsutil"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/metrics"
	"github.com/ManuGH/vidserve/internal/telemetry"
	"github.com/google/renameio/v2"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// URLPrefix is the public route thumbnails are served under.
const URLPrefix = "/api/thumbnails/"

const (
	defaultWidth         = 320
	defaultHeight        = 180
	defaultMaxConcurrent = 4
	defaultTimeout       = 30 * time.Second
)

var (
	// ErrExtraction wraps every failure to produce an artifact.
	ErrExtraction = errors.New("thumbnail extraction failed")
	// ErrInvalidID is returned for identifiers that cannot name a flat file.
	ErrInvalidID = errors.New("invalid thumbnail id")
)

// Config controls artifact location and extraction limits.
type Config struct {
	Dir           string
	Width         int
	Height        int
	MaxConcurrent int
	Timeout       time.Duration
}

// Result is delivered once per Ensure call.
type Result struct {
	ID     string
	Ref    string // public URL path
	Path   string // artifact location on disk
	Cached bool   // artifact existed before the call
	Shared bool   // result came from another caller's extraction
	Err    error
}

// Cache produces thumbnails lazily and at most once per identifier in-process.
type Cache struct {
	cfg       Config
	extractor Extractor
	prober    DurationProber
	sem       *semaphore.Weighted
	flights   singleflight.Group
}

// Option customises a Cache.
type Option func(*Cache)

// WithProber lets the cache seek to the middle of the video.
func WithProber(p DurationProber) Option {
	return func(c *Cache) { c.prober = p }
}

// New returns a Cache writing into cfg.Dir.
func New(cfg Config, extractor Extractor, opts ...Option) *Cache {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Cache{
		cfg:       cfg,
		extractor: extractor,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the artifact directory.
func (c *Cache) Dir() string { return c.cfg.Dir }

// FileName is the artifact file name for id.
func FileName(id string) string { return id + ".jpg" }

// Ref is the public URL path of the artifact for id.
func Ref(id string) string { return URLPrefix + url.PathEscape(FileName(id)) }

// Path is the deterministic artifact location for id.
func (c *Cache) Path(id string) string {
	return filepath.Join(c.cfg.Dir, FileName(id))
}

// Ensure delivers the thumbnail reference for id on the returned channel,
// extracting a frame from videoPath when no artifact exists yet. The channel
// receives exactly one Result and is then closed.
//
// Extraction is detached from ctx cancellation so a departing caller does not
// abort work shared with others; it is bounded by Config.Timeout instead.
func (c *Cache) Ensure(ctx context.Context, videoPath, id string) <-chan Result {
	out := make(chan Result, 1)

	if err := fsutil.ValidateFileName(id); err != nil {
		out <- Result{ID: id, Err: fmt.Errorf("%w: %w", ErrInvalidID, err)}
		close(out)
		return out
	}
	res, ok := c.lookup(id)
	trace.SpanFromContext(ctx).AddEvent("thumbnail.ensure", trace.WithAttributes(telemetry.ThumbnailAttributes(id, ok)...))
	if ok {
		metrics.ObserveThumbnail(metrics.ThumbnailHit, 0)
		out <- res
		close(out)
		return out
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(out)
		v, err, shared := c.flights.Do(id, func() (any, error) {
			return c.generate(detached, videoPath, id)
		})
		if err != nil {
			out <- Result{ID: id, Shared: shared, Err: err}
			return
		}
		res := v.(Result)
		res.Shared = shared
		out <- res
	}()
	return out
}

// Wait blocks until the result arrives or ctx ends.
func Wait(ctx context.Context, ch <-chan Result) Result {
	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// lookup reports a hit for a non-empty regular artifact file.
func (c *Cache) lookup(id string) (Result, bool) {
	path := c.Path(id)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return Result{}, false
	}
	return Result{ID: id, Ref: Ref(id), Path: path, Cached: true}, true
}

func (c *Cache) generate(parent context.Context, videoPath, id string) (Result, error) {
	// A previous flight may have finished between lookup and Do.
	if res, ok := c.lookup(id); ok {
		return res, nil
	}

	logger := log.WithComponentFromContext(parent, "thumbnail").With().Str(log.FieldVideoID, id).Logger()
	start := time.Now()

	// Queueing for a slot does not count against the extraction timeout.
	if err := c.sem.Acquire(parent, 1); err != nil {
		metrics.ObserveThumbnail(metrics.ThumbnailFailed, time.Since(start))
		return Result{}, fmt.Errorf("%w: wait for extraction slot: %w", ErrExtraction, err)
	}
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	req := FrameRequest{
		VideoPath: videoPath,
		Offset:    c.seekOffset(ctx, videoPath),
		Width:     c.cfg.Width,
		Height:    c.cfg.Height,
	}
	path := c.Path(id)
	if err := c.write(ctx, path, req); err != nil {
		metrics.ObserveThumbnail(metrics.ThumbnailFailed, time.Since(start))
		logger.Warn().Err(err).
			Str(log.FieldEvent, "thumbnail.failed").
			Str(log.FieldPath, videoPath).
			Msg("thumbnail generation failed")
		return Result{}, err
	}

	elapsed := time.Since(start)
	metrics.ObserveThumbnail(metrics.ThumbnailGenerated, elapsed)
	logger.Info().
		Str(log.FieldEvent, "thumbnail.generated").
		Str(log.FieldThumbnail, path).
		Dur("offset", req.Offset).
		Int64(log.FieldDuration, elapsed.Milliseconds()).
		Msg("thumbnail generated")

	return Result{ID: id, Ref: Ref(id), Path: path}, nil
}

// seekOffset picks the middle of the video when its duration is known.
func (c *Cache) seekOffset(ctx context.Context, videoPath string) time.Duration {
	if c.prober == nil {
		return 0
	}
	d, err := c.prober.Duration(ctx, videoPath)
	if err != nil || d <= 0 {
		return 0
	}
	return d / 2
}

// write streams the frame into a pending file and renames it into place, so
// readers never observe a partial artifact.
func (c *Cache) write(ctx context.Context, path string, req FrameRequest) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("%w: create pending file: %w", ErrExtraction, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			log.FromContext(ctx).Debug().Err(err).Msg("cleanup pending thumbnail file")
		}
	}()

	cw := &countingWriter{w: pending}
	if err := c.extractor.ExtractFrame(ctx, req, cw); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if cw.n == 0 {
		return fmt.Errorf("%w: extractor produced no data", ErrExtraction)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: atomically replace artifact: %w", ErrExtraction, err)
	}
	return nil
}
