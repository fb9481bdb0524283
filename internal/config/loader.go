// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownConfigField is returned when the YAML file carries keys the loader does not know.
	ErrUnknownConfigField = errors.New("unknown config field")
	// ErrUnsupportedFormat is returned for config files that are not YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Defaults
const (
	DefaultListenAddr        = ":3000"
	DefaultMetricsListenAddr = ":9090"
	DefaultVideosDir         = "videos"
	DefaultThumbnailsDir     = "thumbnails"
	DefaultThumbnailWidth    = 320
	DefaultThumbnailHeight   = 180
	DefaultThumbnailWorkers  = 4
	DefaultThumbnailTimeout  = 30 * time.Second
	DefaultProbeTimeout      = 10 * time.Second
	DefaultCacheTTL          = 24 * time.Hour
	DefaultWatchDebounce     = 2 * time.Second
	DefaultWatchRate         = 2.0
	DefaultRateLimitRPS      = 100
	DefaultRateLimitBurst    = 200
	DefaultKillTimeout       = 5 * time.Second
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envStringList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseStringList(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order is fixed: Parse File (strict) -> Apply Env -> Validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		l.mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)
	cfg.FFmpeg.FFprobeBin = ResolveFFprobeBin(cfg.FFmpeg.FFprobeBin, cfg.FFmpeg.Bin)

	for _, dir := range []*string{&cfg.VideosDir, &cfg.ThumbnailsDir} {
		if abs, err := filepath.Abs(*dir); err == nil {
			*dir = abs
		}
	}

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:          "info",
		LogService:        "vidserve",
		VideosDir:         DefaultVideosDir,
		ThumbnailsDir:     DefaultThumbnailsDir,
		APIListenAddr:     DefaultListenAddr,
		CORSOrigins:       []string{"*"},
		RateLimit:         RateLimitConfig{Enabled: false, RPS: DefaultRateLimitRPS, Burst: DefaultRateLimitBurst},
		Server:            defaultServerConfig(),
		MetricsEnabled:    true,
		MetricsListenAddr: DefaultMetricsListenAddr,
		Tracing: TracingConfig{
			ServiceName:  "vidserve",
			Exporter:     ExporterGRPC,
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
		FFmpeg: FFmpegConfig{Bin: "ffmpeg", KillTimeout: DefaultKillTimeout},
		Thumbnails: ThumbnailsConfig{
			Width:         DefaultThumbnailWidth,
			Height:        DefaultThumbnailHeight,
			MaxConcurrent: DefaultThumbnailWorkers,
			Timeout:       DefaultThumbnailTimeout,
		},
		Probe: ProbeConfig{Enabled: true, Timeout: DefaultProbeTimeout},
		Cache: CacheConfig{Backend: CacheBackendMemory, TTL: DefaultCacheTTL},
		Watch: WatchConfig{Debounce: DefaultWatchDebounce, RatePerSecond: DefaultWatchRate},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause an error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parseFile(data)
}

func parseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func (l *Loader) mergeFileConfig(cfg *AppConfig, src *FileConfig) {
	setString(&cfg.LogLevel, src.LogLevel)
	setString(&cfg.LogService, src.LogService)
	setString(&cfg.VideosDir, src.VideosDir)
	setString(&cfg.ThumbnailsDir, src.ThumbnailsDir)

	setString(&cfg.APIListenAddr, src.API.ListenAddr)
	if len(src.API.CORSOrigins) > 0 {
		cfg.CORSOrigins = append([]string(nil), src.API.CORSOrigins...)
	}
	setBool(&cfg.RateLimit.Enabled, src.API.RateLimit.Enabled)
	setInt(&cfg.RateLimit.RPS, src.API.RateLimit.RPS)
	setInt(&cfg.RateLimit.Burst, src.API.RateLimit.Burst)
	if len(src.API.RateLimit.Whitelist) > 0 {
		cfg.RateLimit.Whitelist = append([]string(nil), src.API.RateLimit.Whitelist...)
	}

	l.mergeServerFile(&cfg.Server, src.Server)

	setBool(&cfg.MetricsEnabled, src.Metrics.Enabled)
	setString(&cfg.MetricsListenAddr, src.Metrics.ListenAddr)

	setBool(&cfg.Tracing.Enabled, src.Tracing.Enabled)
	setString(&cfg.Tracing.Exporter, src.Tracing.Exporter)
	setString(&cfg.Tracing.Endpoint, src.Tracing.Endpoint)
	if src.Tracing.SamplingRate != nil {
		cfg.Tracing.SamplingRate = *src.Tracing.SamplingRate
	}

	setString(&cfg.FFmpeg.Bin, src.FFmpeg.Bin)
	setString(&cfg.FFmpeg.FFprobeBin, src.FFmpeg.FFprobeBin)
	setDuration(&cfg.FFmpeg.KillTimeout, src.FFmpeg.KillTimeout)

	setInt(&cfg.Thumbnails.Width, src.Thumbnails.Width)
	setInt(&cfg.Thumbnails.Height, src.Thumbnails.Height)
	setInt(&cfg.Thumbnails.MaxConcurrent, src.Thumbnails.MaxConcurrent)
	setDuration(&cfg.Thumbnails.Timeout, src.Thumbnails.Timeout)

	setBool(&cfg.Probe.Enabled, src.Probe.Enabled)
	setDuration(&cfg.Probe.Timeout, src.Probe.Timeout)

	setString(&cfg.Cache.Backend, src.Cache.Backend)
	setDuration(&cfg.Cache.TTL, src.Cache.TTL)
	setString(&cfg.Cache.RedisAddr, src.Cache.RedisAddr)
	setString(&cfg.Cache.RedisPassword, src.Cache.RedisPassword)
	setInt(&cfg.Cache.RedisDB, src.Cache.RedisDB)

	setBool(&cfg.Watch.Enabled, src.Watch.Enabled)
	setDuration(&cfg.Watch.Debounce, src.Watch.Debounce)
	if src.Watch.RatePerSecond > 0 {
		cfg.Watch.RatePerSecond = src.Watch.RatePerSecond
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("VIDSERVE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("VIDSERVE_LOG_SERVICE", cfg.LogService)
	cfg.VideosDir = l.envString("VIDSERVE_VIDEOS_DIR", cfg.VideosDir)
	cfg.ThumbnailsDir = l.envString("VIDSERVE_THUMBNAILS_DIR", cfg.ThumbnailsDir)

	// PORT is honoured for platforms that inject it; VIDSERVE_LISTEN wins.
	if port := l.envString("PORT", ""); port != "" {
		cfg.APIListenAddr = ":" + port
	}
	cfg.APIListenAddr = l.envString("VIDSERVE_LISTEN", cfg.APIListenAddr)
	cfg.CORSOrigins = l.envStringList("VIDSERVE_CORS_ORIGINS", cfg.CORSOrigins)

	cfg.RateLimit.Enabled = l.envBool("VIDSERVE_RATELIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RPS = l.envInt("VIDSERVE_RATELIMIT_RPS", cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = l.envInt("VIDSERVE_RATELIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.Whitelist = l.envStringList("VIDSERVE_RATELIMIT_WHITELIST", cfg.RateLimit.Whitelist)

	l.mergeServerEnv(&cfg.Server)

	cfg.MetricsEnabled = l.envBool("VIDSERVE_METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsListenAddr = l.envString("VIDSERVE_METRICS_LISTEN", cfg.MetricsListenAddr)

	cfg.Tracing.Enabled = l.envBool("VIDSERVE_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString("VIDSERVE_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString("VIDSERVE_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat("VIDSERVE_TRACING_SAMPLING_RATE", cfg.Tracing.SamplingRate)
	cfg.Tracing.ServiceName = cfg.LogService

	cfg.FFmpeg.Bin = l.envString("VIDSERVE_FFMPEG_BIN", cfg.FFmpeg.Bin)
	cfg.FFmpeg.FFprobeBin = l.envString("VIDSERVE_FFPROBE_BIN", cfg.FFmpeg.FFprobeBin)
	cfg.FFmpeg.KillTimeout = l.envDuration("VIDSERVE_FFMPEG_KILL_TIMEOUT", cfg.FFmpeg.KillTimeout)

	cfg.Thumbnails.Width = l.envInt("VIDSERVE_THUMBNAIL_WIDTH", cfg.Thumbnails.Width)
	cfg.Thumbnails.Height = l.envInt("VIDSERVE_THUMBNAIL_HEIGHT", cfg.Thumbnails.Height)
	cfg.Thumbnails.MaxConcurrent = l.envInt("VIDSERVE_THUMBNAIL_CONCURRENCY", cfg.Thumbnails.MaxConcurrent)
	cfg.Thumbnails.Timeout = l.envDuration("VIDSERVE_THUMBNAIL_TIMEOUT", cfg.Thumbnails.Timeout)

	cfg.Probe.Enabled = l.envBool("VIDSERVE_PROBE_ENABLED", cfg.Probe.Enabled)
	cfg.Probe.Timeout = l.envDuration("VIDSERVE_PROBE_TIMEOUT", cfg.Probe.Timeout)

	cfg.Cache.Backend = l.envString("VIDSERVE_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration("VIDSERVE_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString("VIDSERVE_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString("VIDSERVE_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt("VIDSERVE_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Watch.Enabled = l.envBool("VIDSERVE_WATCH_ENABLED", cfg.Watch.Enabled)
	cfg.Watch.Debounce = l.envDuration("VIDSERVE_WATCH_DEBOUNCE", cfg.Watch.Debounce)
	cfg.Watch.RatePerSecond = l.envFloat("VIDSERVE_WATCH_RATE", cfg.Watch.RatePerSecond)
}

// ResolveFFprobeBin returns the configured ffprobe path, or derives it from
// the ffmpeg binary location, or falls back to PATH lookup by name.
func ResolveFFprobeBin(ffprobeBin, ffmpegBin string) string {
	if strings.TrimSpace(ffprobeBin) != "" {
		return ffprobeBin
	}
	if dir := filepath.Dir(ffmpegBin); ffmpegBin != "" && dir != "." {
		return filepath.Join(dir, "ffprobe")
	}
	return "ffprobe"
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
