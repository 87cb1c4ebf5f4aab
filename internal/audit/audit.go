// SPDX-License-Identifier: MIT

// Package audit provides structured audit logging for operations that change
// stored state: scene and profile definitions and uploaded media.
// It follows the WHO/WHAT/WHEN pattern.
package audit

import (
	"net/http"
	"time"

	"github.com/ManuGH/scenecue/internal/log"
	"github.com/rs/zerolog"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Definition events
	EventSceneSaved     EventType = "scene.saved"
	EventSceneDeleted   EventType = "scene.deleted"
	EventProfileSaved   EventType = "profile.saved"
	EventProfileDeleted EventType = "profile.deleted"

	// Media events
	EventUploadStored EventType = "upload.stored"
)

// Results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`             // WHO: remote address or "system"
	Action     string            `json:"action"`            // WHAT: human-readable action description
	Resource   string            `json:"resource"`          // scene/profile name or stored file name
	Result     string            `json:"result"`            // success, failure
	RemoteAddr string            `json:"remote_addr"`       // Client IP address
	UserAgent  string            `json:"user_agent"`        // Client user agent
	RequestID  string            `json:"request_id"`        // Correlation ID
	Details    map[string]string `json:"details,omitempty"` // Additional context
}

// Logger provides audit logging functionality. A nil *Logger discards events.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewLogger creates a new audit logger with a dedicated "audit" component.
func NewLogger() *Logger {
	return New(log.WithComponent("audit"))
}

// New wraps an existing logger.
func New(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("log_type", "audit").Logger(),
		now:    time.Now,
	}
}

// Log writes an audit event to the audit log.
func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	logEvent := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str("event_type", string(event.Type)).
		Str("actor", event.Actor).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("result", event.Result)

	if event.RemoteAddr != "" {
		logEvent.Str("remote_addr", event.RemoteAddr)
	}
	if event.UserAgent != "" {
		logEvent.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		logEvent.Str("request_id", event.RequestID)
	}

	// Details are flattened into the entry
	for key, value := range event.Details {
		logEvent.Str(key, value)
	}

	logEvent.Msg("audit event")
}

// LogFromRequest fills the request metadata the caller left empty and logs.
func (l *Logger) LogFromRequest(r *http.Request, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = log.RequestIDFromContext(r.Context())
	}
	if event.RemoteAddr == "" {
		event.RemoteAddr = r.RemoteAddr
	}
	if event.UserAgent == "" {
		event.UserAgent = r.UserAgent()
	}
	if event.Actor == "" {
		event.Actor = event.RemoteAddr
	}
	l.Log(event)
}

var actions = map[EventType]string{
	EventSceneSaved:     "saved scene",
	EventSceneDeleted:   "deleted scene",
	EventProfileSaved:   "saved profile",
	EventProfileDeleted: "deleted profile",
	EventUploadStored:   "stored upload",
}

// Mutation logs a change to the named resource. A non-nil err marks the
// event as failed and is attached as the "error" detail.
func (l *Logger) Mutation(r *http.Request, typ EventType, resource string, err error) {
	if l == nil {
		return
	}
	event := Event{
		Type:     typ,
		Action:   actions[typ],
		Resource: resource,
		Result:   ResultSuccess,
	}
	if err != nil {
		event.Result = ResultFailure
		event.Details = map[string]string{"error": err.Error()}
	}
	l.LogFromRequest(r, event)
}
