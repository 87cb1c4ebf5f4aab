// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"context"
	"fmt"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects and locates the definitions backend.
type Config struct {
	Backend      string
	Dir          string
	SettingsFile string
	SQLitePath   string
}

// Open builds the configured Store. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir, cfg.SettingsFile), nil
	case BackendSQLite:
		st, err := OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown definitions backend %q (supported: file, sqlite)", cfg.Backend)
	}
}
