// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/ManuGH/scenecue/internal/domain/session/ports"
	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
	"github.com/ManuGH/scenecue/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// PlaySceneRequest is a single scene command.
type PlaySceneRequest struct {
	Scene     string
	Loop      bool
	AudioURL  *string
	Msg       *string
	Interrupt bool
	ClientID  string
}

// PlayScenesRequest is an ordered scene batch.
type PlayScenesRequest struct {
	Scenes    []string
	Interrupt bool
	ClientID  string
}

// Result reports what a dispatch did.
type Result struct {
	Targets int
	// Queued lists the accepted scene names of a batch, in order.
	Queued []string
}

// Dispatcher builds commands and enqueues them onto resolved targets. It also
// serves client polls, the delivery side of the same queues.
type Dispatcher struct {
	store   *store.Store
	catalog ports.SceneCatalog
}

// NewDispatcher wires a dispatcher to its session store and scene catalog.
func NewDispatcher(st *store.Store, catalog ports.SceneCatalog) *Dispatcher {
	return &Dispatcher{store: st, catalog: catalog}
}

// Poll returns the oldest pending command for clientID, creating the session
// on first contact. ok is false when nothing is queued.
func (d *Dispatcher) Poll(_ context.Context, clientID string) (cmd model.Command, ok bool, err error) {
	if strings.TrimSpace(clientID) == "" {
		return model.Command{}, false, fmt.Errorf("%w: client_id is required", model.ErrInvalidInput)
	}
	sess, created := d.store.GetOrCreate(clientID)
	if created {
		metrics.SetActiveSessions(d.store.Len())
	}

	cmd, ok = sess.Dequeue()
	if ok {
		metrics.RecordPoll(metrics.PollCommand)
		metrics.RecordCommandDelivered(string(cmd.Kind()))
	} else {
		metrics.RecordPoll(metrics.PollEmpty)
	}
	return cmd, ok, nil
}

// ApplyProfile queues a profile command. Profile commands never interrupt.
func (d *Dispatcher) ApplyProfile(ctx context.Context, profile, clientID string) (Result, error) {
	if strings.TrimSpace(profile) == "" {
		return Result{}, fmt.Errorf("%w: profile is required", model.ErrInvalidInput)
	}

	cmd := model.NewApplyProfile(profile)
	targets := ResolveTargets(d.store, clientID)
	for _, sess := range targets {
		sess.Enqueue(cmd)
	}

	d.observe(ctx, cmd.Kind(), len(targets), len(targets), false, clientID)
	logger := log.WithComponentFromContext(ctx, "dispatcher")
	logger.Info().
		Str(log.FieldEvent, "command.dispatched").
		Str(log.FieldCommandKind, string(cmd.Kind())).
		Str(log.FieldProfile, profile).
		Str(log.FieldClientID, clientID).
		Int(log.FieldTargets, len(targets)).
		Msg("profile command queued")

	return Result{Targets: len(targets)}, nil
}

// PlayScene queues one scene command. The scene must exist; the check happens
// before any queue is touched, so an unknown scene never leaves a target with
// a cleared queue and no replacement.
func (d *Dispatcher) PlayScene(ctx context.Context, req PlaySceneRequest) (Result, error) {
	if strings.TrimSpace(req.Scene) == "" {
		return Result{}, fmt.Errorf("%w: scene is required", model.ErrInvalidInput)
	}
	known, err := d.catalog.SceneNames(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", model.ErrCatalogUnavailable, err)
	}
	if _, ok := known[req.Scene]; !ok {
		return Result{}, fmt.Errorf("%w: scene %q", model.ErrSceneNotFound, req.Scene)
	}

	cmd := model.NewPlayScene(model.ScenePayload{
		Scene:    req.Scene,
		Loop:     req.Loop,
		AudioURL: req.AudioURL,
		Msg:      req.Msg,
	}, req.Interrupt)

	targets := ResolveTargets(d.store, req.ClientID)
	dropped := 0
	for _, sess := range targets {
		if req.Interrupt {
			dropped += sess.ClearAndEnqueue(cmd)
		} else {
			sess.Enqueue(cmd)
		}
	}
	if req.Interrupt {
		metrics.RecordQueueClears(len(targets), dropped)
	}

	d.observe(ctx, cmd.Kind(), len(targets), len(targets), req.Interrupt, req.ClientID)
	logger := log.WithComponentFromContext(ctx, "dispatcher")
	logger.Info().
		Str(log.FieldEvent, "command.dispatched").
		Str(log.FieldCommandKind, string(cmd.Kind())).
		Str(log.FieldScene, req.Scene).
		Str(log.FieldClientID, req.ClientID).
		Bool(log.FieldInterrupt, req.Interrupt).
		Int(log.FieldTargets, len(targets)).
		Int("dropped", dropped).
		Msg("scene command queued")

	return Result{Targets: len(targets)}, nil
}

// PlayScenes queues a batch of scenes in order. Unknown names are skipped
// silently; only the accepted names are reported back. With Interrupt set,
// each target is cleared once and only the first accepted command carries the
// interrupt flag. Targets are cleared even when no scene is accepted.
func (d *Dispatcher) PlayScenes(ctx context.Context, req PlayScenesRequest) (Result, error) {
	if req.Scenes == nil {
		return Result{}, fmt.Errorf("%w: scenes is required", model.ErrInvalidInput)
	}
	known, err := d.catalog.SceneNames(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", model.ErrCatalogUnavailable, err)
	}

	queued := make([]string, 0, len(req.Scenes))
	cmds := make([]model.Command, 0, len(req.Scenes))
	for _, name := range req.Scenes {
		if _, ok := known[name]; !ok {
			continue
		}
		first := len(cmds) == 0
		cmds = append(cmds, model.NewSceneSequenceItem(name, first && req.Interrupt))
		queued = append(queued, name)
	}

	targets := ResolveTargets(d.store, req.ClientID)
	dropped := 0
	for _, sess := range targets {
		switch {
		case req.Interrupt:
			dropped += sess.ClearAndEnqueue(cmds...)
		case len(cmds) > 0:
			sess.Enqueue(cmds...)
		}
	}
	if req.Interrupt {
		metrics.RecordQueueClears(len(targets), dropped)
	}

	d.observe(ctx, model.KindSceneSequenceItem, len(targets), len(targets)*len(cmds), req.Interrupt, req.ClientID)
	logger := log.WithComponentFromContext(ctx, "dispatcher")
	logger.Info().
		Str(log.FieldEvent, "command.dispatched").
		Str(log.FieldCommandKind, string(model.KindSceneSequenceItem)).
		Strs("queued", queued).
		Int("skipped", len(req.Scenes)-len(queued)).
		Str(log.FieldClientID, req.ClientID).
		Bool(log.FieldInterrupt, req.Interrupt).
		Int(log.FieldTargets, len(targets)).
		Int("dropped", dropped).
		Msg("scene batch queued")

	return Result{Targets: len(targets), Queued: queued}, nil
}

func (d *Dispatcher) observe(ctx context.Context, kind model.CommandKind, targets, enqueued int, interrupt bool, clientID string) {
	metrics.RecordCommandsEnqueued(string(kind), enqueued)
	trace.SpanFromContext(ctx).SetAttributes(
		telemetry.CommandAttributes(string(kind), clientID, targets, interrupt)...,
	)
}
