// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store holds the process-wide registry of display sessions and
// their command queues. A Store is constructed once by the daemon and handed
// to every request path; tests build their own isolated instances.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultIdleTimeout is how long a session may go without a poll or report
// before the sweeper reaps it.
const DefaultIdleTimeout = 300 * time.Second

// Reaped describes a session removed by Sweep.
type Reaped struct {
	ID              string
	DroppedCommands int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source (tests use a fake clock).
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// Store maps client identifiers to sessions. The map lock only guards
// membership; per-session data is guarded by each Session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    clockwork.Clock
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// GetOrCreate returns the session for id, creating it with an empty queue and
// default state if needed, and marks it as seen now. Concurrent first calls
// for the same id create exactly one session. created reports whether this
// call inserted it.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	now := s.clock.Now()

	// The touch happens under the map lock so a concurrent Sweep cannot reap
	// the session between lookup and touch.
	s.mu.RLock()
	if existing, ok := s.sessions[id]; ok {
		existing.touch(now)
		s.mu.RUnlock()
		return existing, false
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		existing.touch(now)
		return existing, false
	}
	sess = newSession(id, now)
	s.sessions[id] = sess
	return sess, true
}

// Lookup returns the session for id without creating it or updating last-seen.
func (s *Store) Lookup(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// List returns a snapshot of all sessions ordered by id. Sessions created
// after the call are not included.
func (s *Store) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes every session idle for longer than timeout. Commands still
// queued for a reaped session are discarded.
func (s *Store) Sweep(timeout time.Duration) []Reaped {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var reaped []Reaped
	for id, sess := range s.sessions {
		idle, pending := sess.idleSince(now, timeout)
		if !idle {
			continue
		}
		delete(s.sessions, id)
		reaped = append(reaped, Reaped{ID: id, DroppedCommands: pending})
	}
	sort.Slice(reaped, func(i, j int) bool { return reaped[i].ID < reaped[j].ID })
	return reaped
}
