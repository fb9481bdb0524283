// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/metrics"
	"github.com/ManuGH/vidserve/internal/thumbnail"
	"golang.org/x/sync/errgroup"
)

// Thumbnailer requests a thumbnail and signals completion on the channel.
type Thumbnailer interface {
	Ensure(ctx context.Context, videoPath, id string) <-chan thumbnail.Result
}

// DurationProber reports the playback duration of a video file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Builder assembles the catalog listing from the video directory.
type Builder struct {
	dir    string
	thumbs Thumbnailer
	prober DurationProber
	limit  int
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithDurationProber attaches duration metadata to listed videos.
func WithDurationProber(p DurationProber) BuilderOption {
	return func(b *Builder) { b.prober = p }
}

// WithConcurrency caps concurrently evaluated entries; zero means one goroutine per entry.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) { b.limit = n }
}

// NewBuilder returns a Builder for dir.
func NewBuilder(dir string, thumbs Thumbnailer, opts ...BuilderOption) *Builder {
	b := &Builder{dir: dir, thumbs: thumbs}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ListVideos enumerates the directory and evaluates every entry concurrently.
// A metadata read failure fails the whole listing; a thumbnail or probe
// failure only nulls that entry's field.
func (b *Builder) ListVideos(ctx context.Context) ([]VideoFile, error) {
	start := time.Now()
	logger := log.WithComponentFromContext(ctx, "catalog")

	names, err := Snapshot(b.dir)
	if err != nil {
		metrics.ObserveCatalogList(false, time.Since(start), 0)
		return nil, err
	}

	videos := make([]VideoFile, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, name := range names {
		g.Go(func() error {
			v, err := b.evaluate(gctx, name)
			if err != nil {
				return err
			}
			videos[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.ObserveCatalogList(false, time.Since(start), 0)
		return nil, err
	}

	metrics.ObserveCatalogList(true, time.Since(start), len(videos))
	logger.Debug().
		Str(log.FieldEvent, "catalog.listed").
		Int("videos", len(videos)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog listed")
	return videos, nil
}

func (b *Builder) evaluate(ctx context.Context, name string) (VideoFile, error) {
	path := filepath.Join(b.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return VideoFile{}, fmt.Errorf("%w: stat %s: %w", ErrFilesystem, name, err)
	}

	stem, ext := SplitName(name)
	v := VideoFile{
		ID:        stem,
		Title:     name,
		Size:      info.Size(),
		Path:      name,
		CreatedAt: createdAt(path, info),
		Extension: strings.ToLower(ext),
	}
	logger := log.WithComponentFromContext(ctx, "catalog").With().Str(log.FieldVideoID, v.ID).Logger()

	if b.prober != nil {
		d, err := b.prober.Duration(ctx, path)
		if err != nil {
			logger.Debug().Err(err).Msg("duration probe failed")
		} else if d > 0 {
			secs := d.Seconds()
			v.Duration = &secs
		}
	}

	if b.thumbs != nil {
		res := thumbnail.Wait(ctx, b.thumbs.Ensure(ctx, path, v.ID))
		if res.Err != nil {
			if ctx.Err() != nil {
				return VideoFile{}, ctx.Err()
			}
			metrics.IncCatalogThumbnailMissing()
			logger.Warn().Err(res.Err).Str(log.FieldPath, name).Msg("listing video without thumbnail")
		} else {
			ref := res.Ref
			v.ThumbnailURL = &ref
		}
	}
	return v, nil
}
