// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
)

// StatusSnapshot is the aggregated controller view across all sessions.
type StatusSnapshot struct {
	Clients            map[string]model.SessionStatus `json:"clients"`
	ActiveSessionCount int                            `json:"active_session_count"`
}

// StatusChannel synchronises playback state between displays and controllers.
type StatusChannel struct {
	store *store.Store
}

// NewStatusChannel returns a status channel over st.
func NewStatusChannel(st *store.Store) *StatusChannel {
	return &StatusChannel{store: st}
}

// Report stores a client's self-reported state, creating the session if it
// is unseen. Reports count as activity for the idle sweep.
func (c *StatusChannel) Report(_ context.Context, clientID string, r model.Report) error {
	if strings.TrimSpace(clientID) == "" {
		return fmt.Errorf("%w: client_id is required", model.ErrInvalidInput)
	}
	sess, created := c.store.GetOrCreate(clientID)
	if created {
		metrics.SetActiveSessions(c.store.Len())
	}
	sess.ApplyReport(r, c.store.Now())
	return nil
}

// Read returns queue length, reported state and idle time for every session.
func (c *StatusChannel) Read(_ context.Context) StatusSnapshot {
	now := c.store.Now()
	sessions := c.store.List()
	out := StatusSnapshot{
		Clients:            make(map[string]model.SessionStatus, len(sessions)),
		ActiveSessionCount: len(sessions),
	}
	for _, sess := range sessions {
		out.Clients[sess.ID()] = sess.Status(now)
	}
	return out
}

// Push sets mute and sync flags on the targeted sessions and returns how many
// were affected. An unknown single id affects none.
func (c *StatusChannel) Push(ctx context.Context, clientID string, flags model.ControlFlags) int {
	targets := ResolveTargets(c.store, clientID)
	for _, sess := range targets {
		sess.ApplyFlags(flags)
	}

	logger := log.WithComponentFromContext(ctx, "status")
	evt := logger.Info().
		Str(log.FieldEvent, "status.pushed").
		Str(log.FieldClientID, clientID).
		Int(log.FieldTargets, len(targets))
	if flags.IsMuted != nil {
		evt = evt.Bool("is_muted", *flags.IsMuted)
	}
	if flags.IsSyncEnabled != nil {
		evt = evt.Bool("is_sync_enabled", *flags.IsSyncEnabled)
	}
	evt.Msg("control flags pushed")

	return len(targets)
}
