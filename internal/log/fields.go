// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldClientID  = "client_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Command fields
	FieldCommandKind = "command_kind"
	FieldTargets     = "targets"
	FieldInterrupt   = "interrupt"
	FieldScene       = "scene"
	FieldProfile     = "profile"

	// HTTP fields
	FieldMethod   = "method"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldBytes    = "bytes"
	FieldDuration = "duration"

	// Path / URL fields
	FieldPath = "path"
	FieldURL  = "url"
)
