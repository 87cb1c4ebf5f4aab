// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package model defines the value types shared by the session store, the
// command dispatcher and the HTTP layer.
package model

import "encoding/json"

// CommandKind discriminates the payload carried by a Command.
type CommandKind string

const (
	KindApplyProfile      CommandKind = "apply_profile"
	KindPlayScene         CommandKind = "play_scene"
	KindSceneSequenceItem CommandKind = "play_scene_sequence"
)

// ProfilePayload asks a display to apply a named avatar profile.
type ProfilePayload struct {
	Profile string `json:"profile"`
}

// ScenePayload asks a display to play a named scene.
type ScenePayload struct {
	Scene    string  `json:"scene"`
	Loop     bool    `json:"loop"`
	AudioURL *string `json:"audio_url"`
	Msg      *string `json:"msg"`
}

func (p ScenePayload) clone() ScenePayload {
	out := p
	if p.AudioURL != nil {
		v := *p.AudioURL
		out.AudioURL = &v
	}
	if p.Msg != nil {
		v := *p.Msg
		out.Msg = &v
	}
	return out
}

// Command is one queued unit of work for a display client. Commands are
// immutable once built; every accessor returns a copy.
type Command struct {
	kind      CommandKind
	profile   ProfilePayload
	scene     ScenePayload
	interrupt bool
}

// NewApplyProfile builds a profile command. Profile commands never interrupt.
func NewApplyProfile(profile string) Command {
	return Command{
		kind:    KindApplyProfile,
		profile: ProfilePayload{Profile: profile},
	}
}

// NewPlayScene builds a single play-scene command.
func NewPlayScene(p ScenePayload, interrupt bool) Command {
	return Command{
		kind:      KindPlayScene,
		scene:     p.clone(),
		interrupt: interrupt,
	}
}

// NewSceneSequenceItem builds one entry of a scene batch. Batch entries never
// loop and carry no audio override or message.
func NewSceneSequenceItem(scene string, interrupt bool) Command {
	return Command{
		kind:      KindSceneSequenceItem,
		scene:     ScenePayload{Scene: scene},
		interrupt: interrupt,
	}
}

// Kind returns the command discriminator.
func (c Command) Kind() CommandKind { return c.kind }

// Interrupt reports whether the receiving client must abandon its current
// action. The queue it was taken from was cleared right before it was enqueued.
func (c Command) Interrupt() bool { return c.interrupt }

// Profile returns the profile payload for KindApplyProfile commands.
func (c Command) Profile() (ProfilePayload, bool) {
	if c.kind != KindApplyProfile {
		return ProfilePayload{}, false
	}
	return c.profile, true
}

// Scene returns the scene payload for play-scene and sequence commands.
func (c Command) Scene() (ScenePayload, bool) {
	if c.kind != KindPlayScene && c.kind != KindSceneSequenceItem {
		return ScenePayload{}, false
	}
	return c.scene.clone(), true
}

// Label names the referenced definition (profile or scene) for logs and metrics.
func (c Command) Label() string {
	if c.kind == KindApplyProfile {
		return c.profile.Profile
	}
	return c.scene.Scene
}

type wireCommand struct {
	Kind      CommandKind `json:"kind"`
	Payload   any         `json:"payload"`
	Interrupt bool        `json:"interrupt"`
}

// MarshalJSON renders the command as {kind, payload, interrupt} where payload
// is the kind-specific object.
func (c Command) MarshalJSON() ([]byte, error) {
	w := wireCommand{Kind: c.kind, Interrupt: c.interrupt}
	switch c.kind {
	case KindApplyProfile:
		w.Payload = c.profile
	default:
		w.Payload = c.scene
	}
	return json.Marshal(w)
}
