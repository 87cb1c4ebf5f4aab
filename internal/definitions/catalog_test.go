// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package definitions

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_SaveAndList(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(NewFileStore(t.TempDir(), ""))

	require.NoError(t, c.SaveScene(ctx, "Sunset", []SceneStep{{Profile: "Calm", Duration: 4}}))
	require.NoError(t, c.SaveScene(ctx, "Empty", nil))
	require.NoError(t, c.SaveProfile(ctx, "Calm", Profile{}))

	names, err := c.SceneNames(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]struct{}{"Sunset": {}, "Empty": {}}, names); diff != "" {
		t.Fatalf("scene names mismatch (-want +got):\n%s", diff)
	}

	scenes, err := c.Scenes(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"profile":"Calm","duration":4}]`, string(scenes["Sunset"]))
	assert.JSONEq(t, `[]`, string(scenes["Empty"]))

	profiles, err := c.Profiles(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scopes":[],"parameters":{}}`, string(profiles["Calm"]))
}

func TestCatalog_InvalidNameRejectedBeforeIO(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(NewFileStore(t.TempDir(), ""))

	require.ErrorIs(t, c.SaveScene(ctx, "bad name", nil), ErrInvalidName)
	require.ErrorIs(t, c.SaveProfile(ctx, "a/b", Profile{}), ErrInvalidName)

	scenes, err := c.Scenes(ctx)
	require.NoError(t, err)
	assert.Empty(t, scenes)
}

func TestCatalog_DeleteMissing(t *testing.T) {
	c := NewCatalog(NewFileStore(t.TempDir(), ""))
	require.ErrorIs(t, c.DeleteScene(context.Background(), "x"), ErrNotFound)
	require.ErrorIs(t, c.DeleteProfile(context.Background(), "x"), ErrNotFound)
}
