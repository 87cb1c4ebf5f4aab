// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/scenecue/internal/audit"
	"github.com/ManuGH/scenecue/internal/definitions"
	"github.com/ManuGH/scenecue/internal/domain/session/model"
)

type sceneSaveRequest struct {
	Name  string                  `json:"name"`
	Steps []definitions.SceneStep `json:"steps"`
}

type profileSaveRequest struct {
	Name       string         `json:"name"`
	Scopes     []string       `json:"scopes"`
	Parameters map[string]any `json:"parameters"`
}

type savedResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.Catalog.Scenes(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to read scenes")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveScene(w http.ResponseWriter, r *http.Request) {
	var req sceneSaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	err := s.deps.Catalog.SaveScene(r.Context(), req.Name, req.Steps)
	s.deps.Audit.Mutation(r, audit.EventSceneSaved, req.Name, err)
	if err != nil {
		writeError(w, r, err, definitionErrorDetail(err, "Scene", req.Name))
		return
	}
	writeJSON(w, http.StatusOK, savedResponse{Status: "ok", Name: req.Name})
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	err := s.deps.Catalog.DeleteScene(r.Context(), name)
	s.deps.Audit.Mutation(r, audit.EventSceneDeleted, name, err)
	if err != nil {
		writeError(w, r, err, definitionErrorDetail(err, "Scene", name))
		return
	}
	writeJSON(w, http.StatusOK, savedResponse{Status: "ok", Name: name})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.Catalog.Profiles(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to read profiles")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileSaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}
	p := definitions.Profile{Scopes: req.Scopes, Parameters: req.Parameters}
	err := s.deps.Catalog.SaveProfile(r.Context(), req.Name, p)
	s.deps.Audit.Mutation(r, audit.EventProfileSaved, req.Name, err)
	if err != nil {
		writeError(w, r, err, definitionErrorDetail(err, "Profile", req.Name))
		return
	}
	writeJSON(w, http.StatusOK, savedResponse{Status: "ok", Name: req.Name})
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(w, r)
	if !ok {
		return
	}
	err := s.deps.Catalog.DeleteProfile(r.Context(), name)
	s.deps.Audit.Mutation(r, audit.EventProfileDeleted, name, err)
	if err != nil {
		writeError(w, r, err, definitionErrorDetail(err, "Profile", name))
		return
	}
	writeJSON(w, http.StatusOK, savedResponse{Status: "ok", Name: name})
}

// nameParam reads the required ?name= query parameter.
func nameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, r, fmt.Errorf("%w: name is required", model.ErrInvalidInput), "")
		return "", false
	}
	return name, true
}

// definitionErrorDetail produces the client-facing message for a definition
// store failure. kind is "Scene" or "Profile".
func definitionErrorDetail(err error, kind, name string) string {
	switch {
	case errors.Is(err, definitions.ErrInvalidName):
		return kind + " name contains invalid characters"
	case errors.Is(err, definitions.ErrNotFound):
		return fmt.Sprintf("%s '%s' not found", kind, name)
	}
	return ""
}
