// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package ports declares the collaborators the session domain depends on.
package ports

import "context"

// SceneCatalog exposes the externally persisted scene definitions.
type SceneCatalog interface {
	// SceneNames returns the set of currently defined scene names. An error
	// means the definitions could not be read at all.
	SceneNames(ctx context.Context) (map[string]struct{}, error)
}

// SceneCatalogFunc adapts a function to SceneCatalog.
type SceneCatalogFunc func(ctx context.Context) (map[string]struct{}, error)

// SceneNames implements SceneCatalog.
func (f SceneCatalogFunc) SceneNames(ctx context.Context) (map[string]struct{}, error) {
	return f(ctx)
}
