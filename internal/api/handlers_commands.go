// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/scenecue/internal/domain/session/manager"
	"github.com/ManuGH/scenecue/internal/domain/session/model"
)

type applyProfileRequest struct {
	Profile  *string `json:"profile"`
	ClientID *string `json:"client_id"`
}

type playSceneRequest struct {
	Scene     *string `json:"scene"`
	Loop      *bool   `json:"loop"`
	AudioURL  *string `json:"audio_url"`
	Msg       *string `json:"msg"`
	Interrupt *bool   `json:"interrupt"`
	ClientID  *string `json:"client_id"`
}

type playScenesRequest struct {
	Scenes    []string `json:"scenes"`
	Interrupt *bool    `json:"interrupt"`
	ClientID  *string  `json:"client_id"`
}

type queuedResponse struct {
	Status  string `json:"status"`
	Targets int    `json:"targets"`
}

type batchResponse struct {
	Status  string   `json:"status"`
	Queued  []string `json:"queued"`
	Targets int      `json:"targets"`
}

// handlePoll returns the next command for client_id, or null.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	cmd, ok, err := s.deps.Dispatcher.Poll(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleApplyProfile(w http.ResponseWriter, r *http.Request) {
	var req applyProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := s.deps.Dispatcher.ApplyProfile(r.Context(), stringOr(req.Profile), stringOr(req.ClientID))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, queuedResponse{Status: "queued", Targets: res.Targets})
}

func (s *Server) handlePlayScene(w http.ResponseWriter, r *http.Request) {
	var req playSceneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	scene := stringOr(req.Scene)
	res, err := s.deps.Dispatcher.PlayScene(r.Context(), manager.PlaySceneRequest{
		Scene:     scene,
		Loop:      boolOr(req.Loop, false),
		AudioURL:  req.AudioURL,
		Msg:       req.Msg,
		Interrupt: boolOr(req.Interrupt, true),
		ClientID:  stringOr(req.ClientID),
	})
	if err != nil {
		writeError(w, r, err, commandErrorDetail(err, scene))
		return
	}
	writeJSON(w, http.StatusOK, queuedResponse{Status: "queued", Targets: res.Targets})
}

func (s *Server) handlePlayScenes(w http.ResponseWriter, r *http.Request) {
	var req playScenesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := s.deps.Dispatcher.PlayScenes(r.Context(), manager.PlayScenesRequest{
		Scenes:    req.Scenes,
		Interrupt: boolOr(req.Interrupt, false),
		ClientID:  stringOr(req.ClientID),
	})
	if err != nil {
		writeError(w, r, err, commandErrorDetail(err, ""))
		return
	}
	queued := res.Queued
	if queued == nil {
		queued = []string{}
	}
	writeJSON(w, http.StatusOK, batchResponse{Status: "ok", Queued: queued, Targets: res.Targets})
}

func commandErrorDetail(err error, scene string) string {
	switch {
	case errors.Is(err, model.ErrSceneNotFound):
		return fmt.Sprintf("Scene '%s' not found", scene)
	case errors.Is(err, model.ErrCatalogUnavailable):
		return "Failed to read scene definitions"
	}
	return ""
}
