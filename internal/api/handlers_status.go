// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"

	"github.com/ManuGH/scenecue/internal/domain/session/model"
)

type pushStatusRequest struct {
	ClientID      *string `json:"client_id"`
	IsMuted       *bool   `json:"is_muted"`
	IsSyncEnabled *bool   `json:"is_sync_enabled"`
}

type reportRequest struct {
	ClientID       *string `json:"client_id"`
	CurrentProfile *string `json:"current_profile"`
	CurrentScene   *string `json:"current_scene"`
	QueueSize      *int    `json:"queue_size"`
	IsLooping      *bool   `json:"is_looping"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Status.Read(r.Context()))
}

// handlePushStatus sets controller flags on one session or all of them.
func (s *Server) handlePushStatus(w http.ResponseWriter, r *http.Request) {
	var req pushStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	n := s.deps.Status.Push(r.Context(), stringOr(req.ClientID), model.ControlFlags{
		IsMuted:       req.IsMuted,
		IsSyncEnabled: req.IsSyncEnabled,
	})
	writeJSON(w, http.StatusOK, queuedResponse{Status: "updated", Targets: n})
}

// handleReport stores a client's self-reported state. Absent fields reset to
// their defaults.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	report := model.Report{
		CurrentProfile: req.CurrentProfile,
		CurrentScene:   req.CurrentScene,
		IsLooping:      boolOr(req.IsLooping, false),
	}
	if req.QueueSize != nil {
		report.QueueSize = *req.QueueSize
	}
	if err := s.deps.Status.Report(r.Context(), stringOr(req.ClientID), report); err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
