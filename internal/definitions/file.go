// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/scenecue/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSettingsFile is the settings document looked up in the directory.
const DefaultSettingsFile = "settings.json"

var defaultPaths = map[Collection]string{
	Scenes:   "scenes.json",
	Profiles: "profiles.json",
}

// settings is the subset of the frontend settings document that locates the
// definition files.
type settings struct {
	ScenesPath   string `json:"scenes_path"`
	ProfilesPath string `json:"profiles_path"`
}

// FileStore keeps each collection in a JSON document inside dir. The
// document locations come from the settings file and are resolved again on
// every uncached load, so edits to the settings take effect immediately.
type FileStore struct {
	dir          string
	settingsFile string

	// writeMu serializes read-modify-write cycles.
	writeMu sync.Mutex
	group   singleflight.Group

	// The cache is only consulted while the watcher is running; without
	// change notifications every load goes to disk.
	watching atomic.Bool
	cacheMu  sync.RWMutex
	cache    map[Collection]Document
	gen      uint64 // bumped on every invalidation, guarded by cacheMu
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir, settingsFile string) *FileStore {
	if settingsFile == "" {
		settingsFile = DefaultSettingsFile
	}
	return &FileStore{
		dir:          dir,
		settingsFile: settingsFile,
		cache:        make(map[Collection]Document),
	}
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, c Collection) (Document, error) {
	if s.watching.Load() {
		s.cacheMu.RLock()
		doc, ok := s.cache[c]
		s.cacheMu.RUnlock()
		if ok {
			return doc.clone(), nil
		}
	}

	v, err, _ := s.group.Do(string(c), func() (any, error) {
		s.cacheMu.RLock()
		gen := s.gen
		s.cacheMu.RUnlock()

		doc, _, err := s.read(c)
		if err != nil {
			return nil, err
		}
		if s.watching.Load() {
			s.cacheMu.Lock()
			// A change that raced the read must not be masked.
			if s.gen == gen {
				s.cache[c] = doc
			}
			s.cacheMu.Unlock()
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Document).clone(), nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, c Collection, name string, value json.RawMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, path, err := s.read(c)
	if err != nil {
		return err
	}
	doc[name] = value
	return s.write(c, path, doc)
}

// Delete implements Store. A document that does not exist yet holds no names.
func (s *FileStore) Delete(_ context.Context, c Collection, name string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, path, err := s.read(c)
	if err != nil {
		return err
	}
	if _, ok := doc[name]; !ok {
		return fmt.Errorf("%s %q: %w", c, name, ErrNotFound)
	}
	delete(doc, name)
	return s.write(c, path, doc)
}

// Ping implements Store by resolving and reading both documents.
func (s *FileStore) Ping(_ context.Context) error {
	for _, c := range []Collection{Scenes, Profiles} {
		if _, _, err := s.read(c); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

// Watch invalidates the load cache whenever anything in the directory
// changes. It enables caching for as long as it runs and returns when ctx is
// cancelled.
func (s *FileStore) Watch(ctx context.Context) error {
	logger := log.WithComponent("definitions")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dir); err != nil {
		logger.Warn().Err(err).Str(log.FieldPath, s.dir).
			Msg("definitions directory not watchable, caching disabled")
		<-ctx.Done()
		return nil
	}

	s.invalidate()
	s.watching.Store(true)
	defer func() {
		s.watching.Store(false)
		s.invalidate()
	}()

	logger.Info().
		Str(log.FieldEvent, "definitions.watch_started").
		Str(log.FieldPath, s.dir).
		Msg("watching definitions directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Debug().Str(log.FieldPath, ev.Name).Str("op", ev.Op.String()).Msg("definitions changed")
			s.invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("definitions watcher error")
			s.invalidate()
		}
	}
}

func (s *FileStore) invalidate() {
	s.cacheMu.Lock()
	clear(s.cache)
	s.gen++
	s.cacheMu.Unlock()
}

// read resolves the document path and decodes it.
func (s *FileStore) read(c Collection) (Document, string, error) {
	path, err := s.resolve(c)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, path, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %w", ErrIO, filepath.Base(path), err)
	}

	doc := Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, path, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %w", ErrIO, filepath.Base(path), err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, path, nil
}

// resolve reads the settings document and returns the path of c. A missing
// settings document means default locations.
func (s *FileStore) resolve(c Collection) (string, error) {
	var st settings
	data, err := os.ReadFile(filepath.Join(s.dir, s.settingsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("%w: read %s: %w", ErrIO, s.settingsFile, err)
	default:
		if err := json.Unmarshal(data, &st); err != nil {
			return "", fmt.Errorf("%w: decode %s: %w", ErrIO, s.settingsFile, err)
		}
	}

	rel := defaultPaths[c]
	switch c {
	case Scenes:
		if st.ScenesPath != "" {
			rel = st.ScenesPath
		}
	case Profiles:
		if st.ProfilesPath != "" {
			rel = st.ProfilesPath
		}
	}
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	return filepath.Join(s.dir, rel), nil
}

func (s *FileStore) write(c Collection, path string, doc Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, c, err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("%w: create pending %s: %w", ErrIO, filepath.Base(path), err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, filepath.Base(path), err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIO, filepath.Base(path), err)
	}

	s.invalidate()
	return nil
}

// encodeDocument renders doc indented by four spaces with a trailing newline,
// leaving non-ASCII and HTML characters unescaped.
func encodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
