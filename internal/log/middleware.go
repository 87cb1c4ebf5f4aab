// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Middleware logs one access entry per request. Polls and health probes are
// logged at debug level; they arrive every few hundred milliseconds per client.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			logger := WithComponentFromContext(r.Context(), "http")
			var evt *zerolog.Event
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				evt = logger.Error()
			case isNoisy(r):
				evt = logger.Debug()
			default:
				evt = logger.Info()
			}
			evt.
				Str(FieldEvent, "request.handled").
				Str(FieldMethod, r.Method).
				Str(FieldRoute, route).
				Int(FieldStatus, ww.Status()).
				Int(FieldBytes, ww.BytesWritten()).
				Dur(FieldDuration, time.Since(start)).
				Msg("request handled")
		})
	}
}

func isNoisy(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	switch {
	case hasSuffix(r.URL.Path, "/queue"), hasSuffix(r.URL.Path, "/status"),
		r.URL.Path == "/healthz", r.URL.Path == "/readyz":
		return true
	}
	return false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
