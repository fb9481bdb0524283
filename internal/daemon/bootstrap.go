// SPDX-License-Identifier: MIT

// Package daemon provides the core daemon bootstrapping and lifecycle management.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/vidserve/internal/api"
	"github.com/ManuGH/vidserve/internal/cache"
	"github.com/ManuGH/vidserve/internal/config"
	controlhttp "github.com/ManuGH/vidserve/internal/control/http"
	"github.com/ManuGH/vidserve/internal/health"
	"github.com/ManuGH/vidserve/internal/infra/ffmpeg"
	"github.com/ManuGH/vidserve/internal/library"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/telemetry"
	"github.com/ManuGH/vidserve/internal/thumbnail"
	"github.com/ManuGH/vidserve/internal/warmer"
)

const memoryCacheJanitorInterval = time.Minute

// Bootstrap wires every component from cfg and returns the App ready to Run.
// Logging must already be configured.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (*App, error) {
	logger := log.WithComponent("daemon")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, fmt.Errorf("startup checks: %w", err)
	}

	var hooks []namedHook

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
	} else {
		hooks = append(hooks, namedHook{name: "telemetry", hook: tp.Shutdown})
		if cfg.Tracing.Enabled {
			logger.Info().
				Str("service", cfg.Tracing.ServiceName).
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sampling_rate", cfg.Tracing.SamplingRate).
				Msg("telemetry initialized")
		}
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewDirChecker("videos_dir", cfg.VideosDir, false))
	hm.RegisterChecker(health.NewDirChecker("thumbnails_dir", cfg.ThumbnailsDir, true))

	extractor := ffmpeg.NewFrameExtractor(cfg.FFmpeg.Bin, cfg.FFmpeg.KillTimeout)
	hm.RegisterChecker(health.NewFuncChecker("ffmpeg", health.StatusDegraded, "available", func(context.Context) error {
		return extractor.Available()
	}))

	var (
		thumbOpts   []thumbnail.Option
		builderOpts []library.BuilderOption
	)
	if cfg.Probe.Enabled {
		prober := ffmpeg.NewProber(cfg.FFmpeg.FFprobeBin, cfg.FFmpeg.KillTimeout)
		hm.RegisterChecker(health.NewFuncChecker("ffprobe", health.StatusDegraded, "available", func(context.Context) error {
			return prober.Available()
		}))

		store := newProbeStore(ctx, cfg.Cache, logger, hm)
		hooks = append(hooks, namedHook{name: "probe_cache", hook: func(context.Context) error { return store.Close() }})

		durations := cache.NewProbeCache(store, prober, cfg.Cache.TTL, cache.WithProbeTimeout(cfg.Probe.Timeout))
		thumbOpts = append(thumbOpts, thumbnail.WithProber(durations))
		builderOpts = append(builderOpts, library.WithDurationProber(durations))
	}

	thumbs := thumbnail.New(thumbnail.Config{
		Dir:           cfg.ThumbnailsDir,
		Width:         cfg.Thumbnails.Width,
		Height:        cfg.Thumbnails.Height,
		MaxConcurrent: cfg.Thumbnails.MaxConcurrent,
		Timeout:       cfg.Thumbnails.Timeout,
	}, extractor, thumbOpts...)

	var fileMetrics controlhttp.FileMetrics = controlhttp.NewNoopFileMetrics()
	if cfg.MetricsEnabled {
		fileMetrics = controlhttp.NewPromFileMetrics()
	}

	apiServer := api.New(cfg, api.Deps{
		Catalog:    library.NewBuilder(cfg.VideosDir, thumbs, builderOpts...),
		Streamer:   controlhttp.NewStreamer(cfg.VideosDir),
		Thumbnails: controlhttp.NewThumbnailServer(cfg.ThumbnailsDir, fileMetrics),
		Health:     hm,
	})

	deps := Deps{
		Logger:     logger,
		APIAddr:    cfg.APIListenAddr,
		APIHandler: apiServer.Handler(),
	}
	if cfg.MetricsEnabled {
		deps.MetricsAddr = cfg.MetricsListenAddr
		deps.MetricsHandler = promhttp.Handler()
	}

	mgr, err := NewManager(cfg.Server, deps)
	if err != nil {
		return nil, err
	}
	for _, h := range hooks {
		mgr.RegisterShutdownHook(h.name, h.hook)
	}

	background := map[string]Runner{}
	if cfg.Watch.Enabled {
		background["warmer"] = warmer.New(warmer.Config{
			Dir:           cfg.VideosDir,
			Debounce:      cfg.Watch.Debounce,
			RatePerSecond: cfg.Watch.RatePerSecond,
		}, thumbs)
	}

	logger.Info().
		Str("videos_dir", cfg.VideosDir).
		Str("thumbnails_dir", cfg.ThumbnailsDir).
		Bool("probe", cfg.Probe.Enabled).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("warmer", cfg.Watch.Enabled).
		Msg("components wired")

	return NewApp(logger, mgr, background), nil
}

// newProbeStore returns the configured metadata store. An unreachable Redis
// falls back to memory so the catalog keeps working.
func newProbeStore(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger, hm *health.Manager) cache.Store {
	if cfg.Backend == config.CacheBackendRedis {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log.WithComponent("cache"))
		if err == nil {
			hm.RegisterChecker(health.NewFuncChecker("probe_cache", health.StatusDegraded, "redis reachable", store.HealthCheck))
			return store
		}
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory probe cache")
	}
	return cache.NewMemoryStore(memoryCacheJanitorInterval)
}

// WaitForShutdown returns a context cancelled on interrupt/termination signals.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
