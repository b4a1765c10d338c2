// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/metrics"
)

// secureFileServer serves media files with range support and containment
// checks against path traversal and symlink escapes. http.ServeContent
// provides the 206/416 byte-range semantics.
func (s *Server) secureFileServer() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := xlog.WithComponentFromContext(r.Context(), "media")

		rel := chi.URLParam(r, "*")
		if rel == "" || strings.HasSuffix(rel, "/") {
			deny(w, logger, r.URL.Path, "directory_listing", http.StatusForbidden)
			return
		}
		if containsTraversal(rel) {
			deny(w, logger, r.URL.Path, "path_escape", http.StatusForbidden)
			return
		}

		fullPath := filepath.Join(s.cfg.MediaRoot, filepath.FromSlash(rel))

		realPath, err := filepath.EvalSymlinks(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("path", fullPath).Msg("symlink resolution failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		realRoot, err := filepath.EvalSymlinks(s.cfg.MediaRoot)
		if err != nil {
			logger.Error().Err(err).Msg("media root resolution failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		relReal, err := filepath.Rel(realRoot, realPath)
		if err != nil || strings.HasPrefix(relReal, "..") || filepath.IsAbs(relReal) {
			deny(w, logger, r.URL.Path, "path_escape", http.StatusForbidden)
			return
		}

		info, err := os.Stat(realPath)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if info.IsDir() {
			deny(w, logger, r.URL.Path, "directory_listing", http.StatusForbidden)
			return
		}

		f, err := os.Open(realPath)
		if err != nil {
			logger.Error().Err(err).Str("path", realPath).Msg("open failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Type", contentTypeFor(realPath))
		http.ServeContent(w, r, filepath.Base(realPath), info.ModTime(), f)
	})
}

func deny(w http.ResponseWriter, logger zerolog.Logger, path, reason string, code int) {
	metrics.FileRequestDeniedTotal.Inc()
	logger.Warn().Str("path", path).Str("reason", reason).Msg("media request denied")
	http.Error(w, http.StatusText(code), code)
}

// containsTraversal rejects dot-dot segments in either raw or encoded form.
func containsTraversal(rel string) bool {
	if strings.Contains(rel, "\x00") {
		return true
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
