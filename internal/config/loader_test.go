// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader("", "1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, ":8000", cfg.API.ListenAddr)
	assert.Equal(t, "/api", cfg.API.BasePath)
	assert.Equal(t, 300*time.Second, cfg.Sessions.IdleTimeout)
	assert.Equal(t, BackendFile, cfg.Definitions.Backend)
	assert.Equal(t, int64(64<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, CacheMemory, cfg.Proxy.Cache.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logLevel: debug
api:
  listenAddr: "127.0.0.1:9000"
  basePath: /control/
  allowedOrigins: ["http://panel.local"]
sessions:
  idleTimeout: 45s
definitions:
  backend: sqlite
  sqlitePath: /var/lib/scenecue/defs.db
proxy:
  allowedHosts: [media.example.org]
  cache:
    backend: none
`)
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.ListenAddr)
	assert.Equal(t, "/control", cfg.API.BasePath)
	assert.Equal(t, []string{"http://panel.local"}, cfg.API.AllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.Sessions.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Sessions.SweepInterval, "unset keys keep defaults")
	assert.Equal(t, BackendSQLite, cfg.Definitions.Backend)
	assert.Equal(t, []string{"media.example.org"}, cfg.Proxy.AllowedHosts)
	assert.Equal(t, CacheNone, cfg.Proxy.Cache.Backend)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yml", "api:\n  listenAddr: \":9000\"\n")
	t.Setenv("SCENECUE_LISTEN", ":9100")
	t.Setenv("SCENECUE_SESSION_IDLE_TIMEOUT", "2m")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.API.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Contains(t, l.ConsumedEnvKeys, "SCENECUE_LISTEN")
}

func TestLoad_StrictParsing(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown key", "c.yaml", "api:\n  listen: \":1\"\n"},
		{"multiple documents", "c.yaml", "logLevel: info\n---\nlogLevel: debug\n"},
		{"wrong extension", "c.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.file, tt.body), "dev").Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := NewLoader(writeConfig(t, "c.yaml", ""), "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().API.ListenAddr, cfg.API.ListenAddr)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("SCENECUE_SESSION_IDLE_TIMEOUT", "0s")
	_, err := NewLoader("", "dev").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions.idleTimeout")
}

func TestNormalizeBasePath(t *testing.T) {
	assert.Equal(t, "/api", NormalizeBasePath("api"))
	assert.Equal(t, "/api", NormalizeBasePath("/api/"))
	assert.Equal(t, "/a/b", NormalizeBasePath(" /a/b "))
	assert.Equal(t, "", NormalizeBasePath("/"))
	assert.Equal(t, "", NormalizeBasePath(""))
}
