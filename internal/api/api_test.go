// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framepress/renderd/internal/assets"
	"github.com/framepress/renderd/internal/config"
	"github.com/framepress/renderd/internal/engine"
	"github.com/framepress/renderd/internal/store"
)

const testToken = "test-token"

// newTestServer wires a Server over a temp media root, a real SQLite store,
// and a shell script standing in for the engine. The script writes a byte to
// its last argument, the output path.
func newTestServer(t *testing.T, engineScript string) (*Server, http.Handler) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a unix shell")
	}

	mediaRoot := t.TempDir()
	st, err := store.Open(filepath.Join(mediaRoot, "renderd.db"), mediaRoot)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bin := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+engineScript), 0o755))

	cfg := &config.Config{
		APIToken:  testToken,
		MediaRoot: mediaRoot,
		MediaURL:  "/media/",
	}
	loc := assets.New(assets.Config{MediaRoot: mediaRoot, MediaURL: "/media/", CacheDir: t.TempDir()})
	disp := engine.NewDispatcher(engine.Config{Binaries: engine.Binaries{FFmpeg: bin, FFprobe: bin}})

	srv := New(cfg, st, loc, disp)
	return srv, srv.Router()
}

func okEngineScript() string {
	return `out=""
for a; do out=$a; done
printf data > "$out"`
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func authed(extra ...string) map[string]string {
	h := map[string]string{"Authorization": "Bearer " + testToken}
	for i := 0; i+1 < len(extra); i += 2 {
		h[extra[i]] = extra[i+1]
	}
	return h
}

const minimalTimeline = `{
	"width": 640, "height": 480, "fps": 30, "duration": 2,
	"background": "#102030",
	"tracks": [{"id": "t1", "type": "text", "text": "hello", "x": 10, "y": 10, "end": 2}]
}`

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t, "exit 0")
	w, body := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuth(t *testing.T) {
	_, h := newTestServer(t, "exit 0")

	w, _ := doJSON(t, h, http.MethodGet, "/api/locked/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, h, http.MethodGet, "/api/locked/list", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, h, http.MethodGet, "/api/locked/list", "", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenderPreview(t *testing.T) {
	srv, h := newTestServer(t, okEngineScript())

	w, body := doJSON(t, h, http.MethodPost, "/api/render/preview", minimalTimeline, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	previewURL, _ := body["preview_url"].(string)
	require.NotEmpty(t, previewURL)
	assert.Contains(t, previewURL, "/media/previews/")
	assert.True(t, strings.HasSuffix(previewURL, ".mp4"))
	require.NotEmpty(t, body["render_id"])

	rel := previewURL[strings.Index(previewURL, "/media/")+len("/media/"):]
	_, err := os.Stat(filepath.Join(srv.cfg.MediaRoot, filepath.FromSlash(rel)))
	assert.NoError(t, err, "preview file must exist under the media root")
}

func TestImagePreview(t *testing.T) {
	_, h := newTestServer(t, okEngineScript())

	w, body := doJSON(t, h, http.MethodPost, "/api/render/image/preview", minimalTimeline, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url, _ := body["preview_url"].(string)
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestRenderFinal_SavesArtifact(t *testing.T) {
	srv, h := newTestServer(t, okEngineScript())

	w, body := doJSON(t, h, http.MethodPost, "/api/render", minimalTimeline, authed())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, store.StatusSaved, body["status"])
	assert.Equal(t, store.TypeVideo, body["type"])
	assert.Equal(t, 2.0, body["duration_seconds"])
	assert.Equal(t, "landscape", body["orientation"])
	assert.NotEmpty(t, body["file_url"])

	file, _ := body["file"].(string)
	require.True(t, strings.HasPrefix(file, "locked/"))
	_, err := os.Stat(filepath.Join(srv.cfg.MediaRoot, filepath.FromSlash(file)))
	assert.NoError(t, err, "final artifact must exist under locked/")

	// The saved artifact shows up in the listing.
	w, list := doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed())
	require.Equal(t, http.StatusOK, w.Code)
	items, _ := list["items"].([]any)
	require.Len(t, items, 1)
}

func TestRenderFinal_UntitledDefaultName(t *testing.T) {
	_, h := newTestServer(t, okEngineScript())

	w, body := doJSON(t, h, http.MethodPost, "/api/render", minimalTimeline, authed())
	require.Equal(t, http.StatusOK, w.Code)
	name, _ := body["name"].(string)
	assert.True(t, strings.HasPrefix(name, "Untitled "), "got %q", name)
}

func TestRenderFinal_EngineFailureRollsBack(t *testing.T) {
	srv, h := newTestServer(t, `echo "render exploded" >&2
exit 1`)

	w, body := doJSON(t, h, http.MethodPost, "/api/render", minimalTimeline, authed())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "engine failed", body["error"])
	stderr, _ := body["stderr"].([]any)
	require.NotEmpty(t, stderr)
	assert.Contains(t, stderr[0], "render exploded")

	// Record rolled back, nothing left on disk.
	_, list := doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed())
	items, _ := list["items"].([]any)
	assert.Empty(t, items)
	entries, _ := os.ReadDir(filepath.Join(srv.cfg.MediaRoot, "locked"))
	assert.Empty(t, entries)
}

func TestRender_InvalidTimeline(t *testing.T) {
	_, h := newTestServer(t, "exit 0")

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"canvas too small", `{"width": 1, "height": 1}`},
		{"unknown track type", `{"width": 640, "height": 480, "tracks": [{"id": "x", "type": "nope"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, h, http.MethodPost, "/api/render", tt.body, authed())
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRender_UnresolvableAssetIs500(t *testing.T) {
	_, h := newTestServer(t, "exit 0")
	doc := `{
		"width": 640, "height": 480, "duration": 2,
		"tracks": [{"id": "v", "type": "video", "src": "no/such/file.mp4", "end": 2}]
	}`
	w, body := doJSON(t, h, http.MethodPost, "/api/render", doc, authed())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, body["error"], "no/such/file.mp4")
}

func TestOwnerScoping(t *testing.T) {
	_, h := newTestServer(t, okEngineScript())

	w, _ := doJSON(t, h, http.MethodPost, "/api/render", minimalTimeline, authed("X-Render-Owner", "alice"))
	require.Equal(t, http.StatusOK, w.Code)

	_, aliceList := doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed("X-Render-Owner", "alice"))
	items, _ := aliceList["items"].([]any)
	assert.Len(t, items, 1)

	_, bobList := doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed("X-Render-Owner", "bob"))
	items, _ = bobList["items"].([]any)
	assert.Empty(t, items)

	// Invalid owner values fall back to the default owner.
	_, defList := doJSON(t, h, http.MethodGet, "/api/locked/list", "", authed("X-Render-Owner", "bad owner!"))
	items, _ = defList["items"].([]any)
	assert.Empty(t, items)
}

func TestMediaServing(t *testing.T) {
	srv, h := newTestServer(t, "exit 0")

	lockedDir := filepath.Join(srv.cfg.MediaRoot, "locked")
	require.NoError(t, os.MkdirAll(lockedDir, 0o755))
	content := []byte("0123456789")
	require.NoError(t, os.WriteFile(filepath.Join(lockedDir, "clip.mp4"), content, 0o644))

	t.Run("full body", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/locked/clip.mp4", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bytes", w.Header().Get("Accept-Ranges"))
		assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
		assert.Equal(t, content, w.Body.Bytes())
	})

	t.Run("range", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/locked/clip.mp4", "", map[string]string{"Range": "bytes=0-3"})
		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "bytes 0-3/10", w.Header().Get("Content-Range"))
		assert.Equal(t, "0123", w.Body.String())
	})

	t.Run("unsatisfiable range", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/locked/clip.mp4", "", map[string]string{"Range": "bytes=99-"})
		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, w.Code)
		assert.Equal(t, "bytes */10", w.Header().Get("Content-Range"))
	})

	t.Run("head", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodHead, "/media/locked/clip.mp4", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("missing file", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/locked/nope.mp4", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("traversal denied", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/../renderd.db", "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("directory listing denied", func(t *testing.T) {
		w, _ := doJSON(t, h, http.MethodGet, "/media/locked/", "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestContainsTraversal(t *testing.T) {
	assert.True(t, containsTraversal("../x"))
	assert.True(t, containsTraversal("a/../b"))
	assert.True(t, containsTraversal("a\x00b"))
	assert.False(t, containsTraversal("locked/clip.mp4"))
	assert.False(t, containsTraversal("a..b/c"))
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t, "exit 0")
	req := httptest.NewRequest(http.MethodOptions, "/api/render", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t, "exit 0")

	w, _ := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, _ = doJSON(t, h, http.MethodGet, "/healthz", "", map[string]string{"X-Request-ID": "fixed-id"})
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
