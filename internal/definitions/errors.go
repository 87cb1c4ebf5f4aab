// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import "errors"

var (
	// ErrNotFound is returned when deleting a name that is not defined.
	ErrNotFound = errors.New("definition not found")
	// ErrInvalidName is returned for names that cannot be used as keys.
	ErrInvalidName = errors.New("name contains invalid characters")
	// ErrIO wraps any failure to read or write the backing documents.
	ErrIO = errors.New("definitions storage failure")
)
