// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import "errors"

var (
	// ErrInvalidInput is returned when a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSceneNotFound is returned when a single play-scene request names a
	// scene the catalog does not know.
	ErrSceneNotFound = errors.New("scene not found")

	// ErrCatalogUnavailable wraps failures to read scene definitions.
	ErrCatalogUnavailable = errors.New("scene definitions unavailable")
)
