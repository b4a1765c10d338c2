// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/framepress/renderd/internal/assets"
	"github.com/framepress/renderd/internal/engine"
	"github.com/framepress/renderd/internal/fgraph"
	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/store"
	"github.com/framepress/renderd/internal/timeline"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps the error taxonomy onto HTTP status codes and logs once
// at the boundary. Validation and graph-build failures are the caller's
// fault; asset, engine, and storage failures are ours; a deadline hit is a
// gateway timeout.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := xlog.WithComponentFromContext(r.Context(), "api")

	var vErr *timeline.ValidationError
	if errors.As(err, &vErr) {
		logger.Info().Err(err).Msg("timeline rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var bErr *fgraph.BuildError
	if errors.As(err, &bErr) {
		logger.Error().Err(err).Msg("graph build failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if errors.Is(err, engine.ErrTimeout) {
		logger.Error().Err(err).Msg("engine timed out")
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "render timed out"})
		return
	}

	var xErr *engine.ExitError
	if errors.As(err, &xErr) {
		logger.Error().Err(err).Int("exit_code", xErr.Code).Msg("engine failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "engine failed",
			"stderr": xErr.Stderr,
		})
		return
	}

	var aErr *assets.Error
	if errors.As(err, &aErr) {
		logger.Error().Err(err).Str("ref", aErr.Ref).Msg("asset localization failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful to send.
		logger.Info().Msg("request cancelled")
		return
	}

	logger.Error().Err(err).Msg("internal error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
