// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/scenecue/internal/persistence/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS definitions (
	collection TEXT NOT NULL,
	name       TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, name)
);`

// SQLiteStore keeps both collections in one table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := sqlite.Migrate(ctx, db, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, c Collection) (Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, body FROM definitions WHERE collection = ? ORDER BY name`, string(c))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", ErrIO, c, err)
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", ErrIO, c, err)
		}
		doc[name] = json.RawMessage(body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows %s: %w", ErrIO, c, err)
	}
	return doc, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, c Collection, name string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO definitions (collection, name, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(c), name, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", ErrIO, c, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, c Collection, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM definitions WHERE collection = ? AND name = ?`, string(c), name)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrIO, c, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrIO, c, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", c, name, ErrNotFound)
	}
	return nil
}

// Ping implements Store with a connectivity check followed by a quick
// integrity check of the database file.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	issues, err := sqlite.VerifyIntegrity(ctx, s.path, "quick")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: integrity: %v", ErrIO, issues)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
