// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"time"

	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// SweeperConfig defines the idle-reaping policy.
type SweeperConfig struct {
	Interval    time.Duration
	IdleTimeout time.Duration // sessions without poll/report activity for longer are reaped
}

// Sweeper periodically reaps idle sessions.
type Sweeper struct {
	Store *store.Store
	Conf  SweeperConfig
	Clock clockwork.Clock // optional; defaults to the real clock
}

// Run starts the sweeper loop. It periodically calls SweepOnce on a ticker
// and returns when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Conf.Interval <= 0 {
		return
	}
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ticker := clock.NewTicker(s.Conf.Interval)
	defer ticker.Stop()

	logger := log.WithComponent("sweeper")
	logger.Info().
		Dur("interval", s.Conf.Interval).
		Dur("idle_timeout", s.idleTimeout()).
		Msg("background sweeper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs exactly one sweep pass and returns the reaped sessions.
func (s *Sweeper) SweepOnce(ctx context.Context) []store.Reaped {
	reaped := s.Store.Sweep(s.idleTimeout())
	metrics.SetActiveSessions(s.Store.Len())
	if len(reaped) == 0 {
		return nil
	}

	ids := make([]string, 0, len(reaped))
	dropped := 0
	for _, r := range reaped {
		ids = append(ids, r.ID)
		dropped += r.DroppedCommands
	}
	metrics.RecordSessionsReaped(len(reaped), dropped)

	logger := log.WithComponentFromContext(ctx, "sweeper")
	logger.Info().
		Str(log.FieldEvent, "session.reaped").
		Strs("client_ids", ids).
		Int("dropped_commands", dropped).
		Msg("sweep removed idle sessions")
	return reaped
}

func (s *Sweeper) idleTimeout() time.Duration {
	if s.Conf.IdleTimeout <= 0 {
		return store.DefaultIdleTimeout
	}
	return s.Conf.IdleTimeout
}
