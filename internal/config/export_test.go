// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/scenecue/internal/testutil"
)

func TestToFileConfig_RoundTrip(t *testing.T) {
	want := Defaults()
	want.Version = "test"
	want.API.BasePath = "/panel"
	want.API.AllowedOrigins = []string{"https://panel.example.com"}
	want.Sessions.IdleTimeout = 90 * time.Second
	want.Proxy.AllowedHosts = []string{"cdn.example.com"}
	want.Proxy.Cache.Backend = CacheRedis
	want.Proxy.Cache.RedisDB = 2
	want.Proxy.BreakerThreshold = 3
	want.Proxy.BreakerResetTimeout = 45 * time.Second

	data, err := yaml.Marshal(ToFileConfig(want))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRedactSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Proxy.Cache.RedisPassword = "hunter2"

	fc := ToFileConfig(cfg)
	RedactSecrets(&fc)
	assert.Equal(t, "***", *fc.Proxy.Cache.RedisPassword)
	assert.Equal(t, "hunter2", cfg.Proxy.Cache.RedisPassword)

	empty := ToFileConfig(Defaults())
	RedactSecrets(&empty)
	assert.Equal(t, "", *empty.Proxy.Cache.RedisPassword)

	RedactSecrets(nil)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	got, err := NewLoader(testutil.RepoFile(t, "config.example.yaml"), "test").Load()
	require.NoError(t, err)

	want := Defaults()
	want.Version = "test"
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("config.example.yaml drifted from Defaults (-want +got):\n%s", diff)
	}
}
