// SPDX-License-Identifier: MIT

// Package api exposes the render service over HTTP: authenticated render
// endpoints, the artifact listing, and range-aware media serving.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/framepress/renderd/internal/assets"
	"github.com/framepress/renderd/internal/config"
	"github.com/framepress/renderd/internal/engine"
	"github.com/framepress/renderd/internal/store"
)

// Server wires the HTTP surface to the render pipeline.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	localizer  *assets.Localizer
	dispatcher *engine.Dispatcher
}

// New returns a Server over the given collaborators.
func New(cfg *config.Config, st *store.Store, loc *assets.Localizer, disp *engine.Dispatcher) *Server {
	return &Server{
		cfg:        cfg,
		store:      st,
		localizer:  loc,
		dispatcher: disp,
	}
}

// Router builds the chi router with the full middleware stack and routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestID)
	r.Use(cors)
	r.Use(requestLogger)
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	media := s.secureFileServer()
	r.Method(http.MethodGet, "/media/*", media)
	r.Method(http.MethodHead, "/media/*", media)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/render", s.handleRenderFinal)
		r.Post("/render/preview", s.handleRenderPreview)
		r.Post("/render/image", s.handleImageFinal)
		r.Post("/render/image/preview", s.handleImagePreview)
		r.Get("/locked/list", s.handleLockedList)
	})

	return r
}
