// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for vidserve.
package config

import (
	"net"
	"strings"
	"time"

	"github.com/ManuGH/vidserve/internal/validate"
)

// Validate validates an AppConfig. Missing media directories are created so a
// first run starts with an empty catalog instead of failing.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("LogLevel", strings.ToLower(cfg.LogLevel), []string{"trace", "debug", "info", "warn", "error"})

	v.Directory("VideosDir", cfg.VideosDir, true)
	v.Directory("ThumbnailsDir", cfg.ThumbnailsDir, true)
	if v.IsValid() {
		v.Writable("ThumbnailsDir", cfg.ThumbnailsDir)
	}

	v.ListenAddr("APIListenAddr", cfg.APIListenAddr)
	if cfg.MetricsEnabled {
		v.ListenAddr("MetricsListenAddr", cfg.MetricsListenAddr)
	}

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimit.RPS", cfg.RateLimit.RPS)
		v.Positive("RateLimit.Burst", cfg.RateLimit.Burst)
	}
	for _, entry := range cfg.RateLimit.Whitelist {
		entry = strings.TrimSpace(entry)
		if entry == "" || net.ParseIP(entry) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		v.AddError("RateLimit.Whitelist", "must be a valid IP or CIDR", entry)
	}

	v.DurationRange("Server.ReadTimeout", cfg.Server.ReadTimeout, time.Second, time.Hour)
	if cfg.Server.WriteTimeout < 0 {
		v.AddError("Server.WriteTimeout", "cannot be negative", cfg.Server.WriteTimeout)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{ExporterGRPC, ExporterHTTP})
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		if cfg.Tracing.SamplingRate < 0 || cfg.Tracing.SamplingRate > 1 {
			v.AddError("Tracing.SamplingRate", "must be between 0 and 1", cfg.Tracing.SamplingRate)
		}
	}

	v.NotEmpty("FFmpeg.Bin", cfg.FFmpeg.Bin)
	v.Range("Thumbnails.Width", cfg.Thumbnails.Width, 16, 3840)
	v.Range("Thumbnails.Height", cfg.Thumbnails.Height, 16, 2160)
	v.Range("Thumbnails.MaxConcurrent", cfg.Thumbnails.MaxConcurrent, 1, 64)
	v.DurationRange("Thumbnails.Timeout", cfg.Thumbnails.Timeout, time.Second, 10*time.Minute)

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{CacheBackendMemory, CacheBackendRedis})
	if cfg.Cache.Backend == CacheBackendRedis {
		if _, _, err := net.SplitHostPort(cfg.Cache.RedisAddr); err != nil {
			v.AddError("Cache.RedisAddr", "must be host:port when backend is redis", cfg.Cache.RedisAddr)
		}
	}

	if cfg.Watch.Enabled {
		v.DurationRange("Watch.Debounce", cfg.Watch.Debounce, 10*time.Millisecond, time.Minute)
		if cfg.Watch.RatePerSecond <= 0 {
			v.AddError("Watch.RatePerSecond", "must be positive", cfg.Watch.RatePerSecond)
		}
	}

	return v.Err()
}
