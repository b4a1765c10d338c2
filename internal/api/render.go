// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/framepress/renderd/internal/engine"
	"github.com/framepress/renderd/internal/fgraph"
	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/store"
	"github.com/framepress/renderd/internal/timeline"
)

const maxTimelineBytes = 16 << 20

// prepare decodes, validates, and localizes the submitted timeline, then
// builds its filter-graph program.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request) (*timeline.Timeline, *fgraph.Program, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTimelineBytes))
	if err != nil {
		return nil, nil, &timeline.ValidationError{Field: "body", Msg: fmt.Sprintf("read request: %v", err)}
	}
	tl, err := timeline.Decode(body)
	if err != nil {
		return nil, nil, err
	}
	if err := s.localizer.LocalizeTimeline(r.Context(), tl); err != nil {
		return nil, nil, err
	}

	prog, err := fgraph.Build(tl, fgraph.Options{
		PositiveDuration: engine.PositiveDuration(tl),
		HasAudio: func(src string) bool {
			return s.dispatcher.Prober().HasAudio(r.Context(), src)
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return tl, prog, nil
}

func newRenderID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

func (s *Server) ensureMediaDir(subdir string) (string, error) {
	dir := filepath.Join(s.cfg.MediaRoot, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", subdir, err)
	}
	return dir, nil
}

// mediaURLFor builds an absolute URL for a path relative to the media root.
func (s *Server) mediaURLFor(r *http.Request, rel string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	prefix := s.cfg.MediaURL
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s://%s%s%s", scheme, r.Host, prefix, rel)
}

func artifactName(tl *timeline.Timeline) string {
	if name := strings.TrimSpace(tl.Name); name != "" {
		return name
	}
	return "Untitled " + time.Now().Format("2006-01-02 15:04:05")
}

// handleRenderPreview renders a throwaway preview MP4 into previews/.
func (s *Server) handleRenderPreview(w http.ResponseWriter, r *http.Request) {
	tl, prog, err := s.prepare(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rid := newRenderID()
	ctx := xlog.ContextWithRenderID(r.Context(), rid)

	dir, err := s.ensureMediaDir("previews")
	if err != nil {
		respondError(w, r, err)
		return
	}
	outPath := filepath.Join(dir, rid+".mp4")

	args := engine.VideoArgs(prog, tl.Width, tl.Height, engine.PositiveDuration(tl), true, outPath)
	if err := s.dispatcher.Run(ctx, engine.ModePreview, args); err != nil {
		_ = os.Remove(outPath)
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"preview_url": s.mediaURLFor(r, "previews/"+rid+".mp4"),
		"render_id":   rid,
	})
}

// handleImagePreview renders a throwaway preview PNG into previews/.
func (s *Server) handleImagePreview(w http.ResponseWriter, r *http.Request) {
	_, prog, err := s.prepare(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rid := newRenderID()
	ctx := xlog.ContextWithRenderID(r.Context(), rid)

	dir, err := s.ensureMediaDir("previews")
	if err != nil {
		respondError(w, r, err)
		return
	}
	outPath := filepath.Join(dir, rid+".png")

	args := engine.StillArgs(prog, "png", outPath)
	if err := s.dispatcher.Run(ctx, engine.ModeStill, args); err != nil {
		_ = os.Remove(outPath)
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"preview_url": s.mediaURLFor(r, "previews/"+rid+".png"),
		"render_id":   rid,
	})
}

// handleRenderFinal renders a final MP4 and records it as a saved artifact.
func (s *Server) handleRenderFinal(w http.ResponseWriter, r *http.Request) {
	tl, prog, err := s.prepare(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	owner := ownerFromContext(r.Context())
	duration := math.Max(1, math.Round(tl.Duration))

	s.renderArtifact(w, r, artifactSpec{
		owner:       owner,
		name:        artifactName(tl),
		kind:        store.TypeVideo,
		duration:    duration,
		orientation: tl.Orientation(),
		run: func(ctx context.Context, outPath string) error {
			args := engine.VideoArgs(prog, tl.Width, tl.Height, engine.PositiveDuration(tl), false, outPath)
			return s.dispatcher.Run(ctx, engine.ModeFinal, args)
		},
	})
}

// handleImageFinal renders a final PNG and records it as a saved artifact.
func (s *Server) handleImageFinal(w http.ResponseWriter, r *http.Request) {
	tl, prog, err := s.prepare(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	owner := ownerFromContext(r.Context())

	s.renderArtifact(w, r, artifactSpec{
		owner:       owner,
		name:        artifactName(tl),
		kind:        store.TypeImage,
		duration:    0,
		orientation: tl.Orientation(),
		run: func(ctx context.Context, outPath string) error {
			args := engine.StillArgs(prog, "png", outPath)
			return s.dispatcher.Run(ctx, engine.ModeStill, args)
		},
	})
}

type artifactSpec struct {
	owner       string
	name        string
	kind        string
	duration    float64
	orientation string
	run         func(ctx context.Context, outPath string) error
}

// renderArtifact drives the locked → saved lifecycle: create the record,
// render to a temp path, atomically swap the file into place, promote the
// record. Any failure rolls back record and partial file.
func (s *Server) renderArtifact(w http.ResponseWriter, r *http.Request, spec artifactSpec) {
	ctx := r.Context()

	art, err := s.store.CreateLocked(ctx, spec.owner, spec.name, spec.kind, spec.duration, spec.orientation, "png")
	if err != nil {
		respondError(w, r, err)
		return
	}
	ctx = xlog.ContextWithRenderID(ctx, art.ID)

	rollback := func() {
		rbCtx := context.WithoutCancel(ctx)
		if err := s.store.Delete(rbCtx, spec.owner, art.ID); err != nil {
			logger := xlog.WithComponentFromContext(rbCtx, "api")
			logger.Error().
				Err(err).
				Str("artifact_id", art.ID).
				Msg("artifact rollback failed")
		}
	}

	if _, err := s.ensureMediaDir("locked"); err != nil {
		rollback()
		respondError(w, r, err)
		return
	}
	outAbs := s.store.AbsolutePath(art)

	tmp, err := renameio.TempFile(filepath.Dir(outAbs), outAbs)
	if err != nil {
		rollback()
		respondError(w, r, fmt.Errorf("create temp output: %w", err))
		return
	}
	defer func() { _ = tmp.Cleanup() }()

	if err := spec.run(ctx, tmp.Name()); err != nil {
		rollback()
		respondError(w, r, err)
		return
	}
	if err := tmp.CloseAtomicallyReplace(); err != nil {
		rollback()
		respondError(w, r, fmt.Errorf("publish output: %w", err))
		return
	}

	if err := s.store.MarkSaved(ctx, spec.owner, art.ID); err != nil {
		rollback()
		respondError(w, r, err)
		return
	}
	art.Status = store.StatusSaved

	writeJSON(w, http.StatusOK, s.artifactJSON(r, art))
}

func (s *Server) artifactJSON(r *http.Request, a *store.Artifact) map[string]any {
	out := map[string]any{
		"id":               a.ID,
		"name":             a.Name,
		"type":             a.Type,
		"duration_seconds": a.Duration,
		"status":           a.Status,
		"orientation":      a.Orientation,
		"created_at":       a.CreatedAt,
		"file":             a.File,
	}
	if a.Status == store.StatusSaved && a.File != "" {
		out["file_url"] = s.mediaURLFor(r, a.File)
	}
	return out
}

// handleLockedList returns the caller's artifacts, newest first.
func (s *Server) handleLockedList(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	artifacts, err := s.store.List(r.Context(), owner)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, s.artifactJSON(r, a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
