// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyProfile_WireFormat(t *testing.T) {
	raw, err := json.Marshal(NewApplyProfile("test_a"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"apply_profile","payload":{"profile":"test_a"},"interrupt":false}`, string(raw))
}

func TestPlayScene_WireFormatWithNulls(t *testing.T) {
	raw, err := json.Marshal(NewPlayScene(ScenePayload{Scene: "intro", Loop: true}, true))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"kind":"play_scene","payload":{"scene":"intro","loop":true,"audio_url":null,"msg":null},"interrupt":true}`,
		string(raw))
}

func TestSceneSequenceItem_NeverLoops(t *testing.T) {
	c := NewSceneSequenceItem("outro", false)
	p, ok := c.Scene()
	require.True(t, ok)
	assert.False(t, p.Loop)
	assert.Nil(t, p.AudioURL)
	assert.Nil(t, p.Msg)
	assert.Equal(t, KindSceneSequenceItem, c.Kind())
}

func TestPlayScene_PayloadIsCopied(t *testing.T) {
	url := "http://example.test/a.mp3"
	c := NewPlayScene(ScenePayload{Scene: "intro", AudioURL: &url}, false)

	url = "mutated"
	p, _ := c.Scene()
	require.NotNil(t, p.AudioURL)
	assert.Equal(t, "http://example.test/a.mp3", *p.AudioURL)

	*p.AudioURL = "mutated again"
	again, _ := c.Scene()
	assert.Equal(t, "http://example.test/a.mp3", *again.AudioURL)
}

func TestAccessors_WrongKind(t *testing.T) {
	_, ok := NewApplyProfile("p").Scene()
	assert.False(t, ok)
	_, ok = NewPlayScene(ScenePayload{Scene: "s"}, false).Profile()
	assert.False(t, ok)
}

func TestDefaultReportedState(t *testing.T) {
	s := DefaultReportedState()
	assert.True(t, s.IsSyncEnabled)
	assert.False(t, s.IsMuted)
	assert.Nil(t, s.CurrentProfile)
}
