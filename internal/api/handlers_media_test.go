// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformnet "github.com/ManuGH/scenecue/internal/platform/net"
	"github.com/ManuGH/scenecue/internal/proxy"
)

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndServe(t *testing.T) {
	env := newTestEnv(t, "", nil)

	rec := env.upload(t, "file", "../../etc/clip.mp3", []byte("ID3-audio"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{
		"status":   "uploaded",
		"filename": "clip.mp3",
		"url":      "/api/uploads/clip.mp3",
	}, decodeBody(t, rec))

	stored, err := os.ReadFile(filepath.Join(env.uploadsDir, "clip.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(stored))

	rec = env.do(t, http.MethodGet, "/api/uploads/clip.mp3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ID3-audio", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/clip.mp3", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	env.srv.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/uploads/missing.mp3", "").Code)
}

func TestUpload_Rejections(t *testing.T) {
	env := newTestEnv(t, "", nil)

	rec := env.upload(t, "file", "big.mp3", bytes.Repeat([]byte("x"), 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	_, err := os.Stat(filepath.Join(env.uploadsDir, "big.mp3"))
	assert.True(t, os.IsNotExist(err))

	rec = env.upload(t, "other", "a.mp3", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/upload", `{"file":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyAudio(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.ogg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OggS-bytes"))
	}))
	defer upstream.Close()

	env := newTestEnv(t, "", func(d *Deps) { d.Proxy = proxy.New(proxy.Options{Client: upstream.Client()}) })

	rec := env.do(t, http.MethodGet, "/api/proxy?url="+url.QueryEscape(upstream.URL+"/track.ogg"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/ogg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "OggS-bytes", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/proxy?url="+url.QueryEscape(upstream.URL+"/gone.ogg"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Remote audio fetch failed", decodeBody(t, rec)["detail"])

	rec = env.do(t, http.MethodGet, "/api/proxy?url=ftp://example.com/a.mp3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyExtras(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".json") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"lyrics":"la la"}`))
			return
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("plain text"))
	}))
	defer upstream.Close()

	env := newTestEnv(t, "", func(d *Deps) { d.Proxy = proxy.New(proxy.Options{Client: upstream.Client()}) })

	rec := env.do(t, http.MethodGet, "/api/extrasProxy?url="+url.QueryEscape(upstream.URL+"/meta.json"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lyrics":"la la"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/extrasProxy?url="+url.QueryEscape(upstream.URL+"/meta.txt"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_text":"plain text","_status":418}`, rec.Body.String())
}

func TestProxy_HostPolicy(t *testing.T) {
	policy, err := platformnet.NewHostPolicy([]string{"cdn.example.com"})
	require.NoError(t, err)
	env := newTestEnv(t, "", func(d *Deps) { d.Proxy = proxy.New(proxy.Options{Policy: policy}) })

	rec := env.do(t, http.MethodGet, "/api/extrasProxy?url="+url.QueryEscape("http://evil.example.net/x"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProxyRoutesAbsentWithoutService(t *testing.T) {
	env := newTestEnv(t, "", nil)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/proxy?url=http://x", "").Code)
}
