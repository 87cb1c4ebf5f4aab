// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

// ReportedState is the playback state a display last published about itself,
// plus the two flags controllers may push to it.
type ReportedState struct {
	CurrentProfile *string `json:"current_profile"`
	CurrentScene   *string `json:"current_scene"`
	// QueueSize is the client's own view of its local queue. It is
	// informational only; the server queue length is reported separately.
	QueueSize     int   `json:"queue_size"`
	IsLooping     bool  `json:"is_looping"`
	LastReportTS  int64 `json:"last_report_ts"`
	IsMuted       bool  `json:"is_muted"`
	IsSyncEnabled bool  `json:"is_sync_enabled"`
}

// DefaultReportedState is the state of a freshly created session.
func DefaultReportedState() ReportedState {
	return ReportedState{IsSyncEnabled: true}
}

// Clone returns a deep copy.
func (s ReportedState) Clone() ReportedState {
	out := s
	if s.CurrentProfile != nil {
		v := *s.CurrentProfile
		out.CurrentProfile = &v
	}
	if s.CurrentScene != nil {
		v := *s.CurrentScene
		out.CurrentScene = &v
	}
	return out
}

// Report is a client's self-reported playback state. Every field overwrites
// the stored value, absent fields included.
type Report struct {
	CurrentProfile *string
	CurrentScene   *string
	QueueSize      int
	IsLooping      bool
}

// ControlFlags are controller-settable flags; nil fields are left untouched.
type ControlFlags struct {
	IsMuted       *bool
	IsSyncEnabled *bool
}

// Empty reports whether the update would change nothing.
func (f ControlFlags) Empty() bool {
	return f.IsMuted == nil && f.IsSyncEnabled == nil
}

// SessionStatus is the controller-facing view of one session.
type SessionStatus struct {
	QueueLength        int           `json:"queue_length"`
	ModelState         ReportedState `json:"model_state"`
	LastSeenSecondsAgo int64         `json:"last_seen_seconds_ago"`
}
