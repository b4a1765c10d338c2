// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"regexp"
	"strings"

	xlog "github.com/framepress/renderd/internal/log"
)

type ownerKey struct{}

// defaultOwner scopes artifacts when the caller does not select a sub-owner.
const defaultOwner = "default"

var ownerRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// auth enforces the static bearer token and resolves the artifact owner. The
// token compare is constant time. X-Render-Owner selects a sub-owner under
// the shared token; invalid values fall back to the default.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := xlog.WithComponentFromContext(r.Context(), "auth")
		token := bearerToken(r)
		if token == "" {
			logger.Warn().Msg("authorization header missing")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APIToken)) != 1 {
			logger.Warn().Msg("invalid api token")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		owner := r.Header.Get("X-Render-Owner")
		if !ownerRe.MatchString(owner) {
			owner = defaultOwner
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ownerFromContext returns the authenticated owner, defaulting when absent.
func ownerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ownerKey{}).(string); ok && v != "" {
		return v
	}
	return defaultOwner
}
