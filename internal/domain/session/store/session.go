// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"sync"
	"time"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
)

// Session is the server-side state of one display client. All queue and
// state mutations take the session's own lock, so unrelated clients never
// contend with each other.
type Session struct {
	id string

	mu       sync.Mutex
	queue    Queue
	state    model.ReportedState
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:       id,
		state:    model.DefaultReportedState(),
		lastSeen: now,
	}
}

// ID returns the client-supplied identifier.
func (s *Session) ID() string { return s.id }

// Enqueue appends cmds in order as one atomic step.
func (s *Session) Enqueue(cmds ...model.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cmds {
		s.queue.Enqueue(c)
	}
}

// ClearAndEnqueue drops every pending command and appends cmds under a single
// lock hold. A concurrent Dequeue observes either the old queue or the new one,
// never the cleared-but-empty state in between. It returns the number of
// dropped commands.
func (s *Session) ClearAndEnqueue(cmds ...model.Command) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.queue.Clear()
	for _, c := range cmds {
		s.queue.Enqueue(c)
	}
	return dropped
}

// Dequeue removes and returns the oldest pending command.
func (s *Session) Dequeue() (model.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Dequeue()
}

// QueueLen returns the server-authoritative number of pending commands.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// ApplyReport overwrites the four client-reportable fields.
func (s *Session) ApplyReport(r model.Report, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentProfile = copyString(r.CurrentProfile)
	s.state.CurrentScene = copyString(r.CurrentScene)
	s.state.QueueSize = r.QueueSize
	s.state.IsLooping = r.IsLooping
	s.state.LastReportTS = at.Unix()
}

// ApplyFlags sets the controller flags that are present in f.
func (s *Session) ApplyFlags(f model.ControlFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.IsMuted != nil {
		s.state.IsMuted = *f.IsMuted
	}
	if f.IsSyncEnabled != nil {
		s.state.IsSyncEnabled = *f.IsSyncEnabled
	}
}

// State returns a copy of the reported state.
func (s *Session) State() model.ReportedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// LastSeen returns the time of the last poll or report.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Status returns a consistent snapshot of queue length, state and idle time.
func (s *Session) Status(now time.Time) model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	idle := now.Sub(s.lastSeen)
	if idle < 0 {
		idle = 0
	}
	return model.SessionStatus{
		QueueLength:        s.queue.Len(),
		ModelState:         s.state.Clone(),
		LastSeenSecondsAgo: int64(idle / time.Second),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idleSince reports whether the session was last seen more than timeout ago,
// and how many commands it still holds.
func (s *Session) idleSince(now time.Time, timeout time.Duration) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > timeout, s.queue.Len()
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
