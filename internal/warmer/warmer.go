// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package warmer pre-generates thumbnails for videos as they appear in the
// library directory.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/vidserve/internal/library"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/metrics"
	"github.com/ManuGH/vidserve/internal/thumbnail"
)

const (
	defaultDebounce = 2 * time.Second
	queueSize       = 256
)

// Warmer actions reported to metrics.
const (
	ActionQueued  = "queued"
	ActionSkipped = "skipped"
	ActionWarmed  = "warmed"
	ActionFailed  = "failed"
	ActionDropped = "dropped"
)

// Ensurer produces a thumbnail for a video.
type Ensurer interface {
	Ensure(ctx context.Context, videoPath, id string) <-chan thumbnail.Result
}

// Config controls the warmer.
type Config struct {
	Dir string
	// Debounce is the quiet period after the last write to a file before it
	// is warmed. Uploads emit many write events.
	Debounce time.Duration
	// RatePerSecond caps extractions started per second; zero is unlimited.
	RatePerSecond float64
}

// Warmer watches a directory and warms thumbnails for settled video files.
type Warmer struct {
	cfg     Config
	thumbs  Ensurer
	limiter *rate.Limiter
	logger  zerolog.Logger
	queue   chan string

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
}

// New creates a Warmer for cfg.Dir.
func New(cfg Config, thumbs Ensurer) *Warmer {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Warmer{
		cfg:     cfg,
		thumbs:  thumbs,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.WithComponent("warmer"),
		queue:   make(chan string, queueSize),
		timers:  make(map[string]*time.Timer),
	}
}

// Run sweeps the directory once, then warms files as they change until ctx
// is cancelled. It returns nil on cancellation.
func (w *Warmer) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.cfg.Dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var worker sync.WaitGroup
	worker.Add(1)
	go func() {
		defer worker.Done()
		w.work(ctx)
	}()
	defer func() {
		cancel()
		w.stopTimers()
		worker.Wait()
	}()

	names, err := library.Snapshot(w.cfg.Dir)
	if err != nil {
		w.logger.Warn().Err(err).Str(log.FieldEvent, "warmer.sweep_failed").Msg("initial sweep failed")
	}
	for _, name := range names {
		w.enqueue(ctx, name)
	}

	w.logger.Info().
		Str(log.FieldEvent, "warmer.started").
		Str(log.FieldPath, w.cfg.Dir).
		Int("initial", len(names)).
		Msg("watching video directory")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(log.FieldEvent, "warmer.stopped").Msg("warmer stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if _, ext := library.SplitName(name); !library.IsVideoExtension(ext) {
				continue
			}
			w.schedule(ctx, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Str(log.FieldEvent, "warmer.watcher_error").Msg("directory watcher error")
		}
	}
}

// schedule (re)arms the quiet-period timer for name.
func (w *Warmer) schedule(ctx context.Context, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[name]; ok && t.Stop() {
		t.Reset(w.cfg.Debounce)
		return
	}
	w.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		if w.timers[name] == t {
			delete(w.timers, name)
		}
		w.mu.Unlock()
		w.enqueue(ctx, name)
	})
	w.timers[name] = t
}

func (w *Warmer) stopTimers() {
	w.mu.Lock()
	for name, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, name)
	}
	w.mu.Unlock()
	w.pending.Wait()
}

func (w *Warmer) enqueue(ctx context.Context, name string) {
	if ctx.Err() != nil {
		return
	}
	select {
	case w.queue <- name:
		metrics.IncWarmerEvent(ActionQueued)
	default:
		metrics.IncWarmerEvent(ActionDropped)
		w.logger.Warn().Str(log.FieldPath, name).Msg("warm queue full, dropping")
	}
}

func (w *Warmer) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case name := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.warm(ctx, name)
		}
	}
}

// warm resolves name through the catalog identity rules so duplicate stems
// warm the same file the listing would pick.
func (w *Warmer) warm(ctx context.Context, name string) {
	id, ext := library.SplitName(name)
	if !library.IsVideoExtension(ext) {
		metrics.IncWarmerEvent(ActionSkipped)
		return
	}
	logger := w.logger.With().Str(log.FieldVideoID, id).Logger()

	path, err := library.Locate(w.cfg.Dir, id)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			metrics.IncWarmerEvent(ActionSkipped)
			return
		}
		metrics.IncWarmerEvent(ActionFailed)
		logger.Warn().Err(err).Msg("resolve video for warming")
		return
	}

	res := thumbnail.Wait(ctx, w.thumbs.Ensure(ctx, path, id))
	switch {
	case res.Err != nil:
		if ctx.Err() != nil {
			return
		}
		metrics.IncWarmerEvent(ActionFailed)
		logger.Warn().Err(res.Err).Str(log.FieldEvent, "warmer.failed").Msg("thumbnail warm failed")
	case res.Cached:
		metrics.IncWarmerEvent(ActionSkipped)
	default:
		metrics.IncWarmerEvent(ActionWarmed)
		logger.Debug().Str(log.FieldEvent, "warmer.warmed").Str(log.FieldThumbnail, res.Ref).Msg("thumbnail warmed")
	}
}
