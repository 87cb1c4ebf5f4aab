// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "defs.sqlite"))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	doc, err := s.Load(ctx, Scenes)
	require.NoError(t, err)
	assert.Empty(t, doc)

	require.NoError(t, s.Put(ctx, Scenes, "Sunset", json.RawMessage(`[{"profile":"Calm","duration":3}]`)))
	require.NoError(t, s.Put(ctx, Scenes, "Sunset", json.RawMessage(`[]`)))
	require.NoError(t, s.Put(ctx, Profiles, "Calm", json.RawMessage(`{"scopes":[],"parameters":{}}`)))

	doc, err = s.Load(ctx, Scenes)
	require.NoError(t, err)
	require.Len(t, doc, 1)
	assert.JSONEq(t, `[]`, string(doc["Sunset"]))

	require.ErrorIs(t, s.Delete(ctx, Scenes, "Calm"), ErrNotFound, "collections are separate")
	require.NoError(t, s.Delete(ctx, Profiles, "Calm"))
	require.NoError(t, s.Ping(ctx))
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	st, err = Open(ctx, Config{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "d.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Config{Backend: "etcd"})
	assert.Error(t, err)
}
