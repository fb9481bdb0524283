// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/vidserve/internal/config"
	"github.com/ManuGH/vidserve/internal/version"
)

const redacted = "***"

func runConfigCLI(args []string) int {
	return runConfig(args, os.Stdout, os.Stderr)
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vidserve config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  vidserve config dump --effective [--file|-f config.yaml] [--format=yaml|json]")
}

// resolveDefaultConfigPath returns ./config.yaml or ${VIDSERVE_CONFIG_DIR}/config.yaml when present.
func resolveDefaultConfigPath() string {
	dir := strings.TrimSpace(os.Getenv("VIDSERVE_CONFIG_DIR"))
	if dir == "" {
		dir = "."
	}
	autoPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vidserve config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(stderr, "Error: --file is required (no config.yaml found)")
		return 2
	}

	if _, err := config.NewLoader(configPath, version.Version).Load(); err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s is valid\n", configPath)
	return 0
}

func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vidserve config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		file      string
		format    string
		effective bool
	)
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.BoolVar(&effective, "effective", false, "dump effective configuration (defaults + file + env)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !effective {
		fmt.Fprintln(stderr, "Error: --effective is required")
		return 2
	}

	// An empty path dumps defaults + env.
	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fileCfg := fileConfigFromAppConfig(cfg)
	if fileCfg.Cache.RedisPassword != "" {
		fileCfg.Cache.RedisPassword = redacted
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

func fileConfigFromAppConfig(cfg config.AppConfig) config.FileConfig {
	rateLimitEnabled := cfg.RateLimit.Enabled
	metricsEnabled := cfg.MetricsEnabled
	tracingEnabled := cfg.Tracing.Enabled
	samplingRate := cfg.Tracing.SamplingRate
	probeEnabled := cfg.Probe.Enabled
	watchEnabled := cfg.Watch.Enabled
	writeTimeout := cfg.Server.WriteTimeout

	return config.FileConfig{
		LogLevel:      cfg.LogLevel,
		LogService:    cfg.LogService,
		VideosDir:     cfg.VideosDir,
		ThumbnailsDir: cfg.ThumbnailsDir,
		API: config.APIFileConfig{
			ListenAddr:  cfg.APIListenAddr,
			CORSOrigins: cfg.CORSOrigins,
			RateLimit: config.RateLimitFileConfig{
				Enabled:   &rateLimitEnabled,
				RPS:       cfg.RateLimit.RPS,
				Burst:     cfg.RateLimit.Burst,
				Whitelist: cfg.RateLimit.Whitelist,
			},
		},
		Server: config.ServerFileConfig{
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    &writeTimeout,
			IdleTimeout:     cfg.Server.IdleTimeout,
			MaxHeaderBytes:  cfg.Server.MaxHeaderBytes,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		Metrics: config.MetricsFileConfig{
			Enabled:    &metricsEnabled,
			ListenAddr: cfg.MetricsListenAddr,
		},
		Tracing: config.TracingFileConfig{
			Enabled:      &tracingEnabled,
			Exporter:     cfg.Tracing.Exporter,
			Endpoint:     cfg.Tracing.Endpoint,
			SamplingRate: &samplingRate,
		},
		FFmpeg: config.FFmpegFileConfig{
			Bin:         cfg.FFmpeg.Bin,
			FFprobeBin:  cfg.FFmpeg.FFprobeBin,
			KillTimeout: cfg.FFmpeg.KillTimeout,
		},
		Thumbnails: config.ThumbnailsFileConfig{
			Width:         cfg.Thumbnails.Width,
			Height:        cfg.Thumbnails.Height,
			MaxConcurrent: cfg.Thumbnails.MaxConcurrent,
			Timeout:       cfg.Thumbnails.Timeout,
		},
		Probe: config.ProbeFileConfig{
			Enabled: &probeEnabled,
			Timeout: cfg.Probe.Timeout,
		},
		Cache: config.CacheFileConfig{
			Backend:       cfg.Cache.Backend,
			TTL:           cfg.Cache.TTL,
			RedisAddr:     cfg.Cache.RedisAddr,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
		},
		Watch: config.WatchFileConfig{
			Enabled:       &watchEnabled,
			Debounce:      cfg.Watch.Debounce,
			RatePerSecond: cfg.Watch.RatePerSecond,
		},
	}
}
