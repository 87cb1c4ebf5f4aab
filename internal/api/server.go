// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the command queue, status channel and definition
// stores over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/scenecue/internal/audit"
	"github.com/ManuGH/scenecue/internal/control/middleware"
	"github.com/ManuGH/scenecue/internal/definitions"
	"github.com/ManuGH/scenecue/internal/domain/session/manager"
	"github.com/ManuGH/scenecue/internal/health"
	"github.com/ManuGH/scenecue/internal/proxy"
	"github.com/ManuGH/scenecue/internal/uploads"
)

// Deps are the collaborators the HTTP layer routes into. Health, Proxy and
// FrontendDir are optional.
type Deps struct {
	BasePath    string
	Dispatcher  *manager.Dispatcher
	Status      *manager.StatusChannel
	Catalog     *definitions.Catalog
	Uploads     *uploads.Store
	Proxy       *proxy.Service
	Health      *health.Manager
	Audit       *audit.Logger // nil disables audit entries
	FrontendDir string
	Stack       middleware.StackConfig
}

// Server is the API HTTP handler.
type Server struct {
	deps    Deps
	handler http.Handler
}

// New builds the router. BasePath is used as given; callers normalize it.
func New(deps Deps) *Server {
	s := &Server{deps: deps}
	s.handler = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(s.deps.Stack)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	if s.deps.Health != nil {
		r.Get("/healthz", s.deps.Health.ServeHealth)
		r.Get("/readyz", s.deps.Health.ServeReady)
	}

	if s.deps.BasePath == "" {
		s.apiRoutes(r)
	} else {
		r.Route(s.deps.BasePath, s.apiRoutes)
	}

	if s.deps.FrontendDir != "" {
		r.Handle("/*", secureFileServer(s.deps.FrontendDir, fileServerOptions{indexFallback: true}))
	}

	return r
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Get("/queue", s.handlePoll)
	r.Post("/applyProfile", s.handleApplyProfile)
	r.Post("/playScene", s.handlePlayScene)
	r.Post("/playScenes", s.handlePlayScenes)

	r.Get("/status", s.handleGetStatus)
	r.Post("/status", s.handlePushStatus)
	r.Post("/report", s.handleReport)

	r.Get("/scenes", s.handleListScenes)
	r.Post("/scenes", s.handleSaveScene)
	r.Delete("/scenes", s.handleDeleteScene)
	r.Get("/profiles", s.handleListProfiles)
	r.Post("/profiles", s.handleSaveProfile)
	r.Delete("/profiles", s.handleDeleteProfile)

	r.Post("/upload", s.handleUpload)
	r.Handle("/uploads/*", http.StripPrefix(s.deps.BasePath+"/uploads", secureFileServer(s.deps.Uploads.Dir(), fileServerOptions{})))

	if s.deps.Proxy != nil {
		r.Get("/proxy", s.handleProxyAudio)
		r.Get("/extrasProxy", s.handleProxyExtras)
	}
}

// uploadURL is the public URL of a stored upload.
func (s *Server) uploadURL(name string) string {
	return s.deps.BasePath + "/uploads/" + name
}
