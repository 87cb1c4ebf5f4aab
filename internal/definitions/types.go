// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package definitions persists the named scene and profile definitions that
// commands refer to.
package definitions

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"
)

// Collection names one of the two definition documents.
type Collection string

const (
	Scenes   Collection = "scenes"
	Profiles Collection = "profiles"
)

// Document maps a definition name to its stored JSON value. Values are kept
// raw so entries written by other tools survive a rewrite untouched.
type Document map[string]json.RawMessage

// SceneStep is one step of a scene: a profile shown for a duration.
type SceneStep struct {
	Profile  string `json:"profile"`
	Duration int    `json:"duration"`
}

// Profile is a named set of display parameters.
type Profile struct {
	Scopes     []string       `json:"scopes"`
	Parameters map[string]any `json:"parameters"`
}

// Store persists the two collections.
type Store interface {
	// Load returns the whole collection. A collection that was never written
	// is empty, not an error.
	Load(ctx context.Context, c Collection) (Document, error)
	// Put inserts or replaces one entry.
	Put(ctx context.Context, c Collection, name string, value json.RawMessage) error
	// Delete removes one entry or returns ErrNotFound.
	Delete(ctx context.Context, c Collection, name string) error
	// Ping verifies the backing storage is readable.
	Ping(ctx context.Context) error
	Close() error
}

// forbiddenNameChars are rejected in addition to any whitespace.
const forbiddenNameChars = "\"'`/\\<>|:*?"

// ValidateName rejects empty names and names with whitespace (including the
// ideographic space) or path and quoting characters.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return ErrInvalidName
		}
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return ErrInvalidName
	}
	return nil
}
