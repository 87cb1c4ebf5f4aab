// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
)

// Catalog is the typed facade over a Store used by the HTTP layer and by the
// command dispatcher.
type Catalog struct {
	store Store
}

// NewCatalog wraps store.
func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// Scenes returns every scene definition.
func (c *Catalog) Scenes(ctx context.Context) (Document, error) {
	return c.store.Load(ctx, Scenes)
}

// Profiles returns every profile definition.
func (c *Catalog) Profiles(ctx context.Context) (Document, error) {
	return c.store.Load(ctx, Profiles)
}

// SceneNames returns the set of defined scene names.
func (c *Catalog) SceneNames(ctx context.Context) (map[string]struct{}, error) {
	doc, err := c.store.Load(ctx, Scenes)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(doc))
	for name := range doc {
		names[name] = struct{}{}
	}
	return names, nil
}

// SaveScene inserts or replaces a scene. The name is validated before any I/O.
func (c *Catalog) SaveScene(ctx context.Context, name string, steps []SceneStep) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("scene %q: %w", name, err)
	}
	if steps == nil {
		steps = []SceneStep{}
	}
	return c.put(ctx, Scenes, name, steps)
}

// SaveProfile inserts or replaces a profile. Nil scopes and parameters are
// stored as empty values.
func (c *Catalog) SaveProfile(ctx context.Context, name string, p Profile) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("profile %q: %w", name, err)
	}
	if p.Scopes == nil {
		p.Scopes = []string{}
	}
	if p.Parameters == nil {
		p.Parameters = map[string]any{}
	}
	return c.put(ctx, Profiles, name, p)
}

// DeleteScene removes a scene or returns ErrNotFound.
func (c *Catalog) DeleteScene(ctx context.Context, name string) error {
	return c.delete(ctx, Scenes, name)
}

// DeleteProfile removes a profile or returns ErrNotFound.
func (c *Catalog) DeleteProfile(ctx context.Context, name string) error {
	return c.delete(ctx, Profiles, name)
}

// Ping reports whether the definitions can be read.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Catalog) put(ctx context.Context, coll Collection, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", coll, err)
	}
	err = c.store.Put(ctx, coll, name, raw)
	metrics.RecordDefinitionsWrite(string(coll), err)
	if err != nil {
		return err
	}
	logger := log.WithComponentFromContext(ctx, "definitions")
	logger.Info().
		Str(log.FieldEvent, "definition.saved").
		Str("collection", string(coll)).
		Str("name", name).
		Msg("definition saved")
	return nil
}

func (c *Catalog) delete(ctx context.Context, coll Collection, name string) error {
	err := c.store.Delete(ctx, coll, name)
	metrics.RecordDefinitionsWrite(string(coll), err)
	if err != nil {
		return err
	}
	logger := log.WithComponentFromContext(ctx, "definitions")
	logger.Info().
		Str(log.FieldEvent, "definition.deleted").
		Str("collection", string(coll)).
		Str("name", name).
		Msg("definition deleted")
	return nil
}
