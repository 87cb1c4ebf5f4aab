// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/scenecue/internal/definitions"
	"github.com/ManuGH/scenecue/internal/domain/session/manager"
	"github.com/ManuGH/scenecue/internal/domain/session/store"
	"github.com/ManuGH/scenecue/internal/uploads"
)

const testScenes = `{"intro":[{"profile":"calm","duration":3}],"outro":[]}`

type testEnv struct {
	srv        *Server
	defsDir    string
	uploadsDir string
}

// newTestEnv wires a server against a temporary definitions directory.
// scenes is written as scenes.json unless empty.
func newTestEnv(t *testing.T, scenes string, mutate func(*Deps)) *testEnv {
	t.Helper()
	defsDir := t.TempDir()
	if scenes != "" {
		require.NoError(t, os.WriteFile(filepath.Join(defsDir, "scenes.json"), []byte(scenes), 0o600))
	}
	catalog := definitions.NewCatalog(definitions.NewFileStore(defsDir, ""))

	uploadsDir := filepath.Join(t.TempDir(), "uploads")
	up, err := uploads.New(uploadsDir, 1024)
	require.NoError(t, err)

	st := store.New()
	deps := Deps{
		BasePath:   "/api",
		Dispatcher: manager.NewDispatcher(st, catalog),
		Status:     manager.NewStatusChannel(st),
		Catalog:    catalog,
		Uploads:    up,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testEnv{srv: New(deps), defsDir: defsDir, uploadsDir: uploadsDir}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

type wireCommand struct {
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	Interrupt bool           `json:"interrupt"`
}

// poll returns the next command for id, or nil when the queue is empty.
func (e *testEnv) poll(t *testing.T, id string) *wireCommand {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/queue?client_id="+id, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	if strings.TrimSpace(rec.Body.String()) == "null" {
		return nil
	}
	var cmd wireCommand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmd))
	return &cmd
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestTargetedAndBroadcastProfiles(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)

	require.Nil(t, env.poll(t, "A"))
	require.Nil(t, env.poll(t, "B"))

	rec := env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"test_a","client_id":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "queued", "targets": float64(1)}, decodeBody(t, rec))

	cmd := env.poll(t, "A")
	require.NotNil(t, cmd)
	assert.Equal(t, "apply_profile", cmd.Kind)
	assert.Equal(t, "test_a", cmd.Payload["profile"])
	assert.False(t, cmd.Interrupt)
	assert.Nil(t, env.poll(t, "B"))

	rec = env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"test_broadcast"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["targets"])

	for _, id := range []string{"A", "B"} {
		cmd := env.poll(t, id)
		require.NotNil(t, cmd, id)
		assert.Equal(t, "test_broadcast", cmd.Payload["profile"], id)
	}
}

func TestApplyProfile_UnknownClientIsNotCreated(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)

	rec := env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"p","client_id":"ghost"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["targets"])

	rec = env.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, float64(0), decodeBody(t, rec)["active_session_count"])
}

func TestPlayScene_MissingSceneLeavesQueuesUnchanged(t *testing.T) {
	env := newTestEnv(t, "", nil)
	require.Nil(t, env.poll(t, "A"))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"keep"}`).Code)

	rec := env.do(t, http.MethodPost, "/api/playScene", `{"scene":"missing"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Scene 'missing' not found", decodeBody(t, rec)["detail"])

	cmd := env.poll(t, "A")
	require.NotNil(t, cmd)
	assert.Equal(t, "keep", cmd.Payload["profile"])
	assert.Nil(t, env.poll(t, "A"))
}

func TestPlayScene_InterruptsByDefault(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"stale","client_id":"A"}`)
	}

	rec := env.do(t, http.MethodPost, "/api/playScene",
		`{"scene":"intro","loop":true,"audio_url":"http://cdn.example/a.mp3","msg":"hi","client_id":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "queued", "targets": float64(1)}, decodeBody(t, rec))

	cmd := env.poll(t, "A")
	require.NotNil(t, cmd)
	assert.Equal(t, "play_scene", cmd.Kind)
	assert.True(t, cmd.Interrupt)
	assert.Equal(t, "intro", cmd.Payload["scene"])
	assert.Equal(t, true, cmd.Payload["loop"])
	assert.Equal(t, "http://cdn.example/a.mp3", cmd.Payload["audio_url"])
	assert.Equal(t, "hi", cmd.Payload["msg"])
	assert.Nil(t, env.poll(t, "A"))
}

func TestPlayScene_NoInterruptAppends(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"first","client_id":"A"}`)

	rec := env.do(t, http.MethodPost, "/api/playScene", `{"scene":"outro","interrupt":false,"client_id":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	first := env.poll(t, "A")
	require.NotNil(t, first)
	assert.Equal(t, "first", first.Payload["profile"])
	second := env.poll(t, "A")
	require.NotNil(t, second)
	assert.Equal(t, "outro", second.Payload["scene"])
	assert.False(t, second.Interrupt)
	assert.Nil(t, second.Payload["audio_url"])
}

func TestPlayScene_UnreadableDefinitions(t *testing.T) {
	env := newTestEnv(t, `{not json`, nil)
	require.Nil(t, env.poll(t, "A"))

	rec := env.do(t, http.MethodPost, "/api/playScene", `{"scene":"intro"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to read scene definitions", decodeBody(t, rec)["detail"])
	assert.Nil(t, env.poll(t, "A"))
}

func TestPlayScenes_SkipsUnknownAndMarksFirstInterrupt(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"stale","client_id":"A"}`)

	rec := env.do(t, http.MethodPost, "/api/playScenes",
		`{"scenes":["nope","intro","outro"],"interrupt":true,"client_id":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []any{"intro", "outro"}, body["queued"])
	assert.Equal(t, float64(1), body["targets"])

	first := env.poll(t, "A")
	require.NotNil(t, first)
	assert.Equal(t, "intro", first.Payload["scene"])
	assert.True(t, first.Interrupt)

	second := env.poll(t, "A")
	require.NotNil(t, second)
	assert.Equal(t, "outro", second.Payload["scene"])
	assert.False(t, second.Interrupt)
	assert.Nil(t, env.poll(t, "A"))
}

func TestPlayScenes_InterruptWithNothingAcceptedClearsQueue(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"keep","client_id":"A"}`)

	rec := env.do(t, http.MethodPost, "/api/playScenes", `{"scenes":["nope"],"interrupt":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queued":[]`)
	assert.Contains(t, rec.Body.String(), `"targets":1`)

	assert.Nil(t, env.poll(t, "A"))
}

func TestCommandValidation(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"poll without client", http.MethodGet, "/api/queue", ""},
		{"poll blank client", http.MethodGet, "/api/queue?client_id=%20", ""},
		{"profile missing", http.MethodPost, "/api/applyProfile", `{}`},
		{"empty body", http.MethodPost, "/api/applyProfile", ""},
		{"malformed body", http.MethodPost, "/api/playScene", `{"scene":`},
		{"wrong type", http.MethodPost, "/api/playScenes", `{"scenes":"intro"}`},
		{"report without client", http.MethodPost, "/api/report", `{"is_looping":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["detail"])
		})
	}
}

func TestReportAndReadStatus(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	env.do(t, http.MethodPost, "/api/applyProfile", `{"profile":"p","client_id":"A"}`)

	rec := env.do(t, http.MethodPost, "/api/report",
		`{"client_id":"B","current_profile":"calm","current_scene":"intro","queue_size":4,"is_looping":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, decodeBody(t, rec))

	rec = env.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap struct {
		Clients map[string]struct {
			QueueLength int `json:"queue_length"`
			ModelState  struct {
				CurrentProfile *string `json:"current_profile"`
				CurrentScene   *string `json:"current_scene"`
				QueueSize      int     `json:"queue_size"`
				IsLooping      bool    `json:"is_looping"`
				IsMuted        bool    `json:"is_muted"`
				IsSyncEnabled  bool    `json:"is_sync_enabled"`
			} `json:"model_state"`
			LastSeenSecondsAgo int64 `json:"last_seen_seconds_ago"`
		} `json:"clients"`
		ActiveSessionCount int `json:"active_session_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.ActiveSessionCount)
	assert.Equal(t, 1, snap.Clients["A"].QueueLength)
	assert.Nil(t, snap.Clients["A"].ModelState.CurrentScene)
	assert.True(t, snap.Clients["A"].ModelState.IsSyncEnabled)

	b := snap.Clients["B"]
	assert.Equal(t, 0, b.QueueLength)
	require.NotNil(t, b.ModelState.CurrentScene)
	assert.Equal(t, "intro", *b.ModelState.CurrentScene)
	assert.Equal(t, 4, b.ModelState.QueueSize)
	assert.True(t, b.ModelState.IsLooping)
}

func TestPushStatus(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)
	require.Nil(t, env.poll(t, "A"))
	require.Nil(t, env.poll(t, "B"))

	rec := env.do(t, http.MethodPost, "/api/status", `{"is_muted":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "updated", "targets": float64(2)}, decodeBody(t, rec))

	rec = env.do(t, http.MethodPost, "/api/status", `{"client_id":"B","is_sync_enabled":false}`)
	assert.Equal(t, float64(1), decodeBody(t, rec)["targets"])

	rec = env.do(t, http.MethodPost, "/api/status", `{"client_id":"nobody","is_muted":false}`)
	assert.Equal(t, float64(0), decodeBody(t, rec)["targets"])

	snap := decodeBody(t, env.do(t, http.MethodGet, "/api/status", ""))
	clients := snap["clients"].(map[string]any)
	a := clients["A"].(map[string]any)["model_state"].(map[string]any)
	b := clients["B"].(map[string]any)["model_state"].(map[string]any)
	assert.Equal(t, true, a["is_muted"])
	assert.Equal(t, true, a["is_sync_enabled"])
	assert.Equal(t, true, b["is_muted"])
	assert.Equal(t, false, b["is_sync_enabled"])
}

func TestRootBasePath(t *testing.T) {
	env := newTestEnv(t, testScenes, func(d *Deps) { d.BasePath = "" })

	rec := env.do(t, http.MethodGet, "/queue?client_id=A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/queue?client_id=A", "").Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t, testScenes, nil)

	rec := env.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeBody(t, rec)["detail"])

	rec = env.do(t, http.MethodPut, "/api/queue", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
