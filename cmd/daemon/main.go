// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/vidserve/internal/config"
	"github.com/ManuGH/vidserve/internal/daemon"
	vslog "github.com/ManuGH/vidserve/internal/log"
	"github.com/ManuGH/vidserve/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	os.Exit(run(strings.TrimSpace(*configPath)))
}

func run(configPath string) int {
	// Safe defaults until config is loaded.
	vslog.Configure(vslog.Config{Level: "info", Service: "vidserve", Version: version.Version})
	logger := vslog.WithComponent("main")

	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		logger.Error().Err(err).Str("config", configPath).Msg("failed to load configuration")
		return 1
	}

	vslog.Configure(vslog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger = vslog.WithComponent("main")
	logger.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("config", configPath).
		Msg("starting vidserve")

	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	app, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		return 1
	}
	logger.Info().Msg("vidserve stopped")
	return 0
}
