// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ManuGH/scenecue/internal/audit"
	"github.com/ManuGH/scenecue/internal/domain/session/model"
	"github.com/ManuGH/scenecue/internal/log"
	"github.com/ManuGH/scenecue/internal/proxy"
	"github.com/ManuGH/scenecue/internal/uploads"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 64 << 10

type uploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// handleUpload stores the multipart "file" field under its client-supplied
// base name, replacing any file of the same name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.Uploads.MaxBytes()+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: expected multipart/form-data: %v", model.ErrInvalidInput, err), "")
		return
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, r, uploadReadError(err), "")
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		name, err := s.deps.Uploads.Save(r.Context(), part.FileName(), part)
		_ = part.Close()
		if name == "" {
			name = part.FileName()
		}
		s.deps.Audit.Mutation(r, audit.EventUploadStored, name, err)
		if err != nil {
			writeError(w, r, uploadReadError(err), "")
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{Status: "uploaded", Filename: name, URL: s.uploadURL(name)})
		return
	}
	writeError(w, r, fmt.Errorf("%w: missing file field", model.ErrInvalidInput), "")
}

// uploadReadError folds the body limit into ErrTooLarge.
func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: %v", uploads.ErrTooLarge, err)
	}
	return err
}

// handleProxyAudio streams a remote audio file to the client.
func (s *Server) handleProxyAudio(w http.ResponseWriter, r *http.Request) {
	audio, err := s.deps.Proxy.OpenAudio(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		detail := ""
		var upstream *proxy.StatusError
		if errors.As(err, &upstream) {
			detail = "Remote audio fetch failed"
		}
		writeError(w, r, err, detail)
		return
	}
	defer func() { _ = audio.Body.Close() }()

	w.Header().Set("Content-Type", audio.ContentType)
	if audio.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(audio.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, audio.Body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Debug().
			Err(err).
			Str(log.FieldEvent, "proxy.stream_aborted").
			Msg("audio stream ended early")
	}
}

// handleProxyExtras relays a remote metadata document as JSON.
func (s *Server) handleProxyExtras(w http.ResponseWriter, r *http.Request) {
	body, err := s.deps.Proxy.FetchExtras(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
