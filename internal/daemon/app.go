// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is a background subsystem owned by the App. Run must return once ctx
// is cancelled.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// App owns the long-lived runtime lifecycle (session sweeper, definitions
// watcher) and delegates server management to Manager.
type App struct {
	logger  zerolog.Logger
	manager Manager
	tasks   []Task
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, tasks ...Task) *App {
	return &App{
		logger:  logger,
		manager: manager,
		tasks:   tasks,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, gctx := errgroup.WithContext(ctx)

	// Background tasks are best-effort: a failing task is logged and the
	// servers keep running.
	for _, task := range a.tasks {
		g.Go(func() error {
			a.logger.Debug().Str("task", task.Name).Msg("background task started")
			if err := task.Run(gctx); err != nil {
				a.logger.Warn().
					Err(err).
					Str("event", "task.failed").
					Str("task", task.Name).
					Msg("background task stopped with error")
			}
			return nil
		})
	}

	// Main server lifecycle. Its return cancels gctx, which stops the tasks.
	g.Go(func() error {
		return a.manager.Start(gctx)
	})

	return g.Wait()
}
