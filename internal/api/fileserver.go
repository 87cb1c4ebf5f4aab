// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/scenecue/internal/log"
)

const indexFile = "index.html"

type fileServerOptions struct {
	// indexFallback serves root/index.html for "/" and for paths that do not
	// resolve to a file, so client-side routes of the panel keep working.
	indexFallback bool
}

// secureFileServer serves regular files below root. Traversal sequences,
// symlinks leaving root and directory listings are refused.
func secureFileServer(root string, opts fileServerOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithComponentFromContext(r.Context(), "api")

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			deny(w, logger, r.URL.Path, "method_not_allowed", http.StatusMethodNotAllowed)
			return
		}

		path := r.URL.Path
		if isPathTraversal(path) {
			deny(w, logger, path, "path_escape", http.StatusForbidden)
			return
		}
		if path == "" || strings.HasSuffix(path, "/") {
			if !opts.indexFallback {
				deny(w, logger, path, "directory_listing", http.StatusForbidden)
				return
			}
			path = "/" + indexFile
		}

		realRoot, err := resolveRoot(root)
		if err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Msg("could not resolve file root")
			deny(w, logger, path, "internal_error", http.StatusInternalServerError)
			return
		}

		realPath, status, reason := resolveFile(realRoot, path)
		if status == http.StatusNotFound && opts.indexFallback {
			realPath, status, reason = resolveFile(realRoot, "/"+indexFile)
		}
		if status != http.StatusOK {
			deny(w, logger, path, reason, status)
			return
		}

		// #nosec G304 -- realPath is confined to realRoot by resolveFile
		f, err := os.Open(realPath)
		if err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldPath, realPath).Msg("could not open file")
			deny(w, logger, path, "internal_error", http.StatusInternalServerError)
			return
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Warn().Err(err).Str(log.FieldPath, realPath).Msg("failed to close file")
			}
		}()

		info, err := f.Stat()
		if err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldPath, realPath).Msg("could not stat opened file")
			deny(w, logger, path, "internal_error", http.StatusInternalServerError)
			return
		}

		etag := fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
		w.Header().Set("ETag", etag)
		if info.Name() == indexFile {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}

		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			recordFileCacheHit()
			w.WriteHeader(http.StatusNotModified)
			return
		}

		logger.Debug().Str(log.FieldEvent, "file_req.allowed").Str(log.FieldPath, path).Msg("serving file")
		recordFileRequestAllowed()
		recordFileCacheMiss()
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

func deny(w http.ResponseWriter, logger zerolog.Logger, path, reason string, status int) {
	ev := logger.Warn()
	if status == http.StatusNotFound {
		ev = logger.Debug()
	}
	ev.Str(log.FieldEvent, "file_req.denied").Str(log.FieldPath, path).Str("reason", reason).Msg("file request denied")
	recordFileRequestDenied(reason)
	writeDetail(w, status, http.StatusText(status))
}

func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// resolveFile maps a request path to a regular file inside realRoot. It
// returns the status to answer with and, on failure, a metrics reason.
func resolveFile(realRoot, path string) (string, int, string) {
	fullPath := filepath.Join(realRoot, filepath.FromSlash(path))
	realPath, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", http.StatusNotFound, "not_found"
		}
		return "", http.StatusInternalServerError, "internal_error"
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", http.StatusForbidden, "path_escape"
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return "", http.StatusInternalServerError, "internal_error"
	}
	if info.IsDir() {
		index := filepath.Join(realPath, indexFile)
		if st, err := os.Stat(index); err == nil && !st.IsDir() {
			return index, http.StatusOK, ""
		}
		return "", http.StatusForbidden, "directory_listing"
	}
	return realPath, http.StatusOK, ""
}

// traversalPatterns are checked against every decoding stage. The raw byte
// forms catch overlong dots once the percent encoding is gone.
var traversalPatterns = []string{
	"..", "%00", "\x00",
	"%c0%ae", "%e0%80%ae",
	"\xc0\xae", "\xe0\x80\xae",
}

// isPathTraversal decodes p up to three times and checks the input, each
// decoded stage and the NFC normalized result for parent references, NUL
// bytes and overlong dot encodings.
func isPathTraversal(p string) bool {
	stages := []string{p}
	decoded := p
	for i := 0; i < 3; i++ {
		prev := decoded
		if d, err := url.PathUnescape(decoded); err == nil {
			decoded = d
		} else if d2, err2 := url.QueryUnescape(decoded); err2 == nil {
			decoded = d2
		}
		if decoded == prev {
			break
		}
		stages = append(stages, decoded)
	}
	stages = append(stages, norm.NFC.String(decoded))

	for _, stage := range stages {
		// ToLower rewrites invalid UTF-8, so raw bytes are matched on stage.
		lower := strings.ToLower(stage)
		for _, pat := range traversalPatterns {
			if strings.Contains(stage, pat) || strings.Contains(lower, pat) {
				return true
			}
		}
	}
	return false
}
