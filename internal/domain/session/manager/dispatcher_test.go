// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/ManuGH/scenecue/internal/domain/session/ports"
	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(names ...string) ports.SceneCatalog {
	return ports.SceneCatalogFunc(func(context.Context) (map[string]struct{}, error) {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		return set, nil
	})
}

func drain(t *testing.T, d *Dispatcher, id string) []model.Command {
	t.Helper()
	var out []model.Command
	for {
		cmd, ok, err := d.Poll(context.Background(), id)
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, cmd)
	}
}

func sceneNames(cmds []model.Command) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		p, ok := c.Scene()
		if !ok {
			names = append(names, "<"+string(c.Kind())+">")
			continue
		}
		names = append(names, p.Scene)
	}
	return names
}

func TestPoll_RequiresClientID(t *testing.T) {
	d := NewDispatcher(store.New(), catalogOf())
	_, _, err := d.Poll(context.Background(), "  ")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPoll_CreatesSessionOnFirstContact(t *testing.T) {
	st := store.New()
	d := NewDispatcher(st, catalogOf())

	_, ok, err := d.Poll(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestApplyProfile_UnknownClientTargetsNobody(t *testing.T) {
	st := store.New()
	d := NewDispatcher(st, catalogOf())

	res, err := d.ApplyProfile(context.Background(), "Blue", "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Targets)
	assert.Equal(t, 0, st.Len(), "controllers must never create sessions")
}

func TestApplyProfile_RequiresProfile(t *testing.T) {
	d := NewDispatcher(store.New(), catalogOf())
	_, err := d.ApplyProfile(context.Background(), "", "")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestTwoClients_TargetedAndBroadcast(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	d := NewDispatcher(st, catalogOf("Sunset"))

	_, _, _ = d.Poll(ctx, "A")
	_, _, _ = d.Poll(ctx, "B")

	res, err := d.ApplyProfile(ctx, "Blue", "A")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Targets)

	cmds := drain(t, d, "A")
	require.Len(t, cmds, 1)
	p, ok := cmds[0].Profile()
	require.True(t, ok)
	assert.Equal(t, "Blue", p.Profile)
	assert.False(t, cmds[0].Interrupt())
	assert.Empty(t, drain(t, d, "B"))

	res, err = d.PlayScene(ctx, PlaySceneRequest{Scene: "Sunset", Loop: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Targets)
	for _, id := range []string{"A", "B"} {
		cmds := drain(t, d, id)
		require.Len(t, cmds, 1, id)
		sp, ok := cmds[0].Scene()
		require.True(t, ok)
		assert.Equal(t, "Sunset", sp.Scene)
		assert.True(t, sp.Loop)
	}
}

func TestPlayScene_UnknownSceneLeavesQueuesUntouched(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	d := NewDispatcher(st, catalogOf("Sunset"))

	_, _, _ = d.Poll(ctx, "A")
	_, err := d.ApplyProfile(ctx, "Blue", "A")
	require.NoError(t, err)

	_, err = d.PlayScene(ctx, PlaySceneRequest{Scene: "Missing", Interrupt: true, ClientID: "A"})
	require.ErrorIs(t, err, model.ErrSceneNotFound)

	sess, ok := st.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, 1, sess.QueueLen())
}

func TestPlayScene_CatalogFailure(t *testing.T) {
	boom := errors.New("disk gone")
	d := NewDispatcher(store.New(), ports.SceneCatalogFunc(func(context.Context) (map[string]struct{}, error) {
		return nil, boom
	}))

	_, err := d.PlayScene(context.Background(), PlaySceneRequest{Scene: "Sunset"})
	require.ErrorIs(t, err, model.ErrCatalogUnavailable)
	require.ErrorIs(t, err, boom)
}

func TestPlayScene_InterruptReplacesPending(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(store.New(), catalogOf("A1", "A2", "Alarm"))
	_, _, _ = d.Poll(ctx, "A")

	_, err := d.PlayScenes(ctx, PlayScenesRequest{Scenes: []string{"A1", "A2"}, ClientID: "A"})
	require.NoError(t, err)
	_, err = d.PlayScene(ctx, PlaySceneRequest{Scene: "Alarm", Interrupt: true, ClientID: "A"})
	require.NoError(t, err)

	cmds := drain(t, d, "A")
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"Alarm"}, sceneNames(cmds))
	assert.True(t, cmds[0].Interrupt())
}

func TestPlayScenes_SkipsUnknownAndMarksFirstInterrupt(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(store.New(), catalogOf("S1", "S3"))
	_, _, _ = d.Poll(ctx, "A")
	_, err := d.ApplyProfile(ctx, "Old", "A")
	require.NoError(t, err)

	res, err := d.PlayScenes(ctx, PlayScenesRequest{
		Scenes:    []string{"S1", "S2", "S3"},
		Interrupt: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S3"}, res.Queued)
	assert.Equal(t, 1, res.Targets)

	cmds := drain(t, d, "A")
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"S1", "S3"}, sceneNames(cmds))
	assert.True(t, cmds[0].Interrupt())
	assert.False(t, cmds[1].Interrupt())
	for _, c := range cmds {
		assert.Equal(t, model.KindSceneSequenceItem, c.Kind())
		sp, _ := c.Scene()
		assert.False(t, sp.Loop)
	}
}

func TestPlayScenes_InterruptClearsEvenWhenNothingAccepted(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	d := NewDispatcher(st, catalogOf("S1"))
	_, _, _ = d.Poll(ctx, "A")
	_, err := d.ApplyProfile(ctx, "Blue", "A")
	require.NoError(t, err)

	res, err := d.PlayScenes(ctx, PlayScenesRequest{Scenes: []string{"nope"}, Interrupt: true})
	require.NoError(t, err)
	assert.Empty(t, res.Queued)
	assert.Equal(t, 1, res.Targets)

	sess, _ := st.Lookup("A")
	assert.Equal(t, 0, sess.QueueLen())
}

func TestPlayScenes_NoInterruptNothingAcceptedKeepsQueue(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	d := NewDispatcher(st, catalogOf("S1"))
	_, _, _ = d.Poll(ctx, "A")
	_, err := d.ApplyProfile(ctx, "Blue", "A")
	require.NoError(t, err)

	_, err = d.PlayScenes(ctx, PlayScenesRequest{Scenes: []string{"nope"}})
	require.NoError(t, err)

	sess, _ := st.Lookup("A")
	assert.Equal(t, 1, sess.QueueLen())
}

func TestPlayScenes_EmptyBatch(t *testing.T) {
	d := NewDispatcher(store.New(), catalogOf("S1"))
	res, err := d.PlayScenes(context.Background(), PlayScenesRequest{Scenes: []string{}})
	require.NoError(t, err)
	assert.Empty(t, res.Queued)

	_, err = d.PlayScenes(context.Background(), PlayScenesRequest{})
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPlayScene_PreservesOptionalFields(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(store.New(), catalogOf("Sunset"))
	_, _, _ = d.Poll(ctx, "A")

	audio := "http://example.com/a.mp3"
	_, err := d.PlayScene(ctx, PlaySceneRequest{Scene: "Sunset", AudioURL: &audio, ClientID: "A"})
	require.NoError(t, err)

	cmds := drain(t, d, "A")
	require.Len(t, cmds, 1)
	sp, _ := cmds[0].Scene()
	require.NotNil(t, sp.AudioURL)
	assert.Equal(t, audio, *sp.AudioURL)
	assert.Nil(t, sp.Msg)
}
