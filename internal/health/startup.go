// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/vidserve/internal/config"
	"github.com/ManuGH/vidserve/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks prepares the media directories and validates the
// runtime environment before any listener is opened. Missing directories are
// created. Missing ffmpeg tooling is only a warning: listing and streaming keep
// working without thumbnails or durations.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := ensureDir(logger, cfg.VideosDir, false); err != nil {
		return fmt.Errorf("videos directory check failed: %w", err)
	}
	if err := ensureDir(logger, cfg.ThumbnailsDir, true); err != nil {
		return fmt.Errorf("thumbnails directory check failed: %w", err)
	}
	for _, addr := range []string{cfg.APIListenAddr, cfg.MetricsListenAddr} {
		if addr == "" {
			continue
		}
		if err := checkListenAddr(addr); err != nil {
			return err
		}
	}
	checkBinaries(logger, cfg.FFmpeg)

	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info().Msg("all startup checks passed")
	return nil
}

func ensureDir(logger zerolog.Logger, path string, writable bool) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	if writable {
		testFile := filepath.Join(path, ".write_test")
		if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
			return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
		}
		_ = os.Remove(testFile)
	}
	logger.Info().Str(log.FieldPath, path).Bool("writable", writable).Msg("directory ready")
	return nil
}

func checkListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	return nil
}

func checkBinaries(logger zerolog.Logger, ff config.FFmpegConfig) {
	for _, bin := range []string{ff.Bin, ff.FFprobeBin} {
		if bin == "" {
			continue
		}
		if p, err := exec.LookPath(bin); err != nil {
			logger.Warn().Str("binary", bin).Err(err).Msg("binary not found; thumbnails or durations will be unavailable")
		} else {
			logger.Info().Str("binary", p).Msg("binary available")
		}
	}
}
