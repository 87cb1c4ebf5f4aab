// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package uploads stores client-supplied media files in a served directory.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/metrics"
	platformfs "github.com/ManuGH/scenecue/internal/platform/fs"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes int64 = 64 << 20

var (
	// ErrInvalidFilename is returned for names that reduce to nothing usable.
	ErrInvalidFilename = errors.New("invalid upload filename")
	// ErrTooLarge is returned when the upload exceeds the size limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// Store writes uploads into a single flat directory.
type Store struct {
	dir      string
	maxBytes int64
}

// New creates dir if needed.
func New(dir string, maxBytes int64) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// MaxBytes returns the per-file size limit.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// CleanFilename strips any directory components a client sent along with the
// name. Backslashes count as separators.
func CleanFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// Save atomically writes r under the cleaned name, replacing any existing
// file, and returns the stored name.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	clean, err := CleanFilename(name)
	if err != nil {
		metrics.RecordUpload("rejected")
		return "", err
	}
	target, err := platformfs.ConfineRelPath(s.dir, clean)
	if err != nil {
		metrics.RecordUpload("rejected")
		return "", fmt.Errorf("%w: %w", ErrInvalidFilename, err)
	}

	pending, err := renameio.NewPendingFile(target, renameio.WithPermissions(0o644))
	if err != nil {
		metrics.RecordUpload("error")
		return "", fmt.Errorf("create pending upload: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	n, err := io.Copy(pending, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		metrics.RecordUpload("error")
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxBytes {
		metrics.RecordUpload("too_large")
		return "", ErrTooLarge
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		metrics.RecordUpload("error")
		return "", fmt.Errorf("commit upload: %w", err)
	}

	metrics.RecordUpload("stored")
	logger := log.WithComponentFromContext(ctx, "uploads")
	logger.Info().
		Str(log.FieldEvent, "upload.stored").
		Str("filename", clean).
		Int64(log.FieldBytes, n).
		Msg("upload stored")
	return clean, nil
}

// Ping verifies the directory is writable by creating and removing a probe.
func (s *Store) Ping(_ context.Context) error {
	probe := filepath.Join(s.dir, ".probe-"+uuid.NewString())
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	return os.Remove(probe)
}
