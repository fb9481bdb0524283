// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidserve/internal/log"
)

// Runner is a background subsystem that runs until ctx ends.
type Runner interface {
	Run(ctx context.Context) error
}

// App owns the long-lived runtime lifecycle (background warmers) and
// delegates server management to Manager.
type App struct {
	logger     zerolog.Logger
	manager    Manager
	background map[string]Runner
}

// NewApp creates a new App orchestrator. background subsystems are
// best-effort: their failure is logged and never stops the servers.
func NewApp(logger zerolog.Logger, manager Manager, background map[string]Runner) *App {
	return &App{logger: logger, manager: manager, background: background}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)

	for name, r := range a.background {
		g.Go(func() error {
			if err := r.Run(gctx); err != nil {
				a.logger.Error().
					Err(err).
					Str(log.FieldEvent, "background.failed").
					Str("subsystem", name).
					Msg("background subsystem stopped")
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.manager.Start(gctx)
		if err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(gctx))
		}
		return err
	})

	return g.Wait()
}
