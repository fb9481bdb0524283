// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Cache backends for probe metadata.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Trace exporters.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

// FileConfig represents the YAML configuration structure
type FileConfig struct {
	LogLevel      string `yaml:"logLevel,omitempty"`
	LogService    string `yaml:"logService,omitempty"`
	VideosDir     string `yaml:"videosDir,omitempty"`
	ThumbnailsDir string `yaml:"thumbnailsDir,omitempty"`

	API        APIFileConfig        `yaml:"api,omitempty"`
	Server     ServerFileConfig     `yaml:"server,omitempty"`
	Metrics    MetricsFileConfig    `yaml:"metrics,omitempty"`
	Tracing    TracingFileConfig    `yaml:"tracing,omitempty"`
	FFmpeg     FFmpegFileConfig     `yaml:"ffmpeg,omitempty"`
	Thumbnails ThumbnailsFileConfig `yaml:"thumbnails,omitempty"`
	Probe      ProbeFileConfig      `yaml:"probe,omitempty"`
	Cache      CacheFileConfig      `yaml:"cache,omitempty"`
	Watch      WatchFileConfig      `yaml:"watch,omitempty"`
}

// APIFileConfig holds the public listener settings.
type APIFileConfig struct {
	ListenAddr  string              `yaml:"listenAddr,omitempty"`
	CORSOrigins []string            `yaml:"corsOrigins,omitempty"`
	RateLimit   RateLimitFileConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitFileConfig configures the global request rate limit.
type RateLimitFileConfig struct {
	Enabled   *bool    `yaml:"enabled,omitempty"`
	RPS       int      `yaml:"rps,omitempty"`
	Burst     int      `yaml:"burst,omitempty"`
	Whitelist []string `yaml:"whitelist,omitempty"`
}

// ServerFileConfig carries http.Server timeouts.
type ServerFileConfig struct {
	ReadTimeout     time.Duration  `yaml:"readTimeout,omitempty"`
	WriteTimeout    *time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     time.Duration  `yaml:"idleTimeout,omitempty"`
	MaxHeaderBytes  int            `yaml:"maxHeaderBytes,omitempty"`
	ShutdownTimeout time.Duration  `yaml:"shutdownTimeout,omitempty"`
}

// MetricsFileConfig controls the separate Prometheus listener.
type MetricsFileConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// TracingFileConfig controls OpenTelemetry tracing.
type TracingFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

// FFmpegFileConfig locates the ffmpeg toolchain.
type FFmpegFileConfig struct {
	Bin         string        `yaml:"bin,omitempty"`
	FFprobeBin  string        `yaml:"ffprobeBin,omitempty"`
	KillTimeout time.Duration `yaml:"killTimeout,omitempty"`
}

// ThumbnailsFileConfig controls frame extraction.
type ThumbnailsFileConfig struct {
	Width         int           `yaml:"width,omitempty"`
	Height        int           `yaml:"height,omitempty"`
	MaxConcurrent int           `yaml:"maxConcurrent,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
}

// ProbeFileConfig toggles duration probing.
type ProbeFileConfig struct {
	Enabled *bool         `yaml:"enabled,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// CacheFileConfig selects the probe metadata cache backend.
type CacheFileConfig struct {
	Backend       string        `yaml:"backend,omitempty"`
	TTL           time.Duration `yaml:"ttl,omitempty"`
	RedisAddr     string        `yaml:"redisAddr,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty"`
}

// WatchFileConfig controls the thumbnail warmer.
type WatchFileConfig struct {
	Enabled       *bool         `yaml:"enabled,omitempty"`
	Debounce      time.Duration `yaml:"debounce,omitempty"`
	RatePerSecond float64       `yaml:"ratePerSecond,omitempty"`
}

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version    string
	LogLevel   string
	LogService string

	VideosDir     string
	ThumbnailsDir string

	APIListenAddr string
	CORSOrigins   []string
	RateLimit     RateLimitConfig

	Server ServerConfig

	MetricsEnabled    bool
	MetricsListenAddr string

	Tracing TracingConfig

	FFmpeg     FFmpegConfig
	Thumbnails ThumbnailsConfig
	Probe      ProbeConfig
	Cache      CacheConfig
	Watch      WatchConfig
}

// RateLimitConfig is the resolved rate limit policy.
type RateLimitConfig struct {
	Enabled   bool
	RPS       int
	Burst     int
	Whitelist []string
}

// TracingConfig is the resolved tracing setup.
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FFmpegConfig is the resolved ffmpeg toolchain.
type FFmpegConfig struct {
	Bin         string
	FFprobeBin  string
	KillTimeout time.Duration
}

// ThumbnailsConfig is the resolved frame extraction policy.
type ThumbnailsConfig struct {
	Width         int
	Height        int
	MaxConcurrent int
	Timeout       time.Duration
}

// ProbeConfig is the resolved duration probe policy.
type ProbeConfig struct {
	Enabled bool
	Timeout time.Duration
}

// CacheConfig is the resolved metadata cache backend.
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// WatchConfig is the resolved warmer policy.
type WatchConfig struct {
	Enabled       bool
	Debounce      time.Duration
	RatePerSecond float64
}
