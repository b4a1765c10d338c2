// SPDX-License-Identifier: MIT

// Package assets resolves timeline source references to files the rendering
// engine can open. Local paths and host-mapped URLs resolve to disk directly;
// remote HTTP(S) references download once into a process-wide cache keyed by
// absolute URL.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/metrics"
	"github.com/framepress/renderd/internal/timeline"
)

// Error reports a failed localization with the original reference intact.
type Error struct {
	Ref string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("localize %q: %v", e.Ref, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Config holds the resolution roots for a Localizer.
type Config struct {
	// MediaRoot backs URL paths under MediaURL.
	MediaRoot string
	// MediaURL is the public path prefix mapped onto MediaRoot.
	MediaURL string
	// StaticRoot backs URL paths under StaticURL; optional.
	StaticRoot string
	StaticURL  string
	// FallbackRoots are probed, in order, for any unmatched relative path.
	FallbackRoots []string
	// CacheDir receives downloaded assets; defaults to the OS temp dir.
	CacheDir string
	// FetchTimeout bounds a single remote download; defaults to 30s.
	FetchTimeout time.Duration
	// Client overrides the HTTP client; defaults to http.DefaultClient.
	Client *http.Client
}

// Localizer maps source references to local files. It is safe for concurrent
// use; concurrent fetches of the same URL are collapsed into one download.
type Localizer struct {
	cfg    Config
	client *http.Client

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]string // absolute URL -> local path
}

// New returns a Localizer over cfg.
func New(cfg Config) *Localizer {
	if cfg.MediaURL == "" {
		cfg.MediaURL = "/media/"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.TempDir()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &Localizer{
		cfg:    cfg,
		client: client,
		cache:  make(map[string]string),
	}
}

// LocalizeTimeline rewrites every media source and the background image in
// place. The first failure aborts and is returned.
func (l *Localizer) LocalizeTimeline(ctx context.Context, tl *timeline.Timeline) error {
	if tl.BackgroundImage != "" {
		local, err := l.Resolve(ctx, tl.BackgroundImage)
		if err != nil {
			return err
		}
		tl.BackgroundImage = local
	}
	for _, track := range tl.Tracks {
		mt, ok := track.(timeline.MediaTrack)
		if !ok || mt.Source() == "" {
			continue
		}
		local, err := l.Resolve(ctx, mt.Source())
		if err != nil {
			return err
		}
		mt.SetSource(local)
	}
	return nil
}

// Resolve maps one reference to a local file path. Resolution order: existing
// local path, host URL-prefix mapping, fallback roots, then a one-time remote
// download for http/https references.
func (l *Localizer) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", &Error{Ref: ref, Err: fmt.Errorf("empty source")}
	}

	if isFile(ref) {
		return ref, nil
	}
	if local := l.mapToLocal(ref); local != "" {
		return local, nil
	}

	u, err := url.Parse(ref)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		local, err := l.downloadOnce(ctx, ref)
		if err != nil {
			return "", &Error{Ref: ref, Err: err}
		}
		return local, nil
	}

	return "", &Error{Ref: ref, Err: fmt.Errorf("not a local file and not a fetchable URL")}
}

// mapToLocal tries the URL-prefix mappings and fallback roots. It returns ""
// when no existing file matches.
func (l *Localizer) mapToLocal(ref string) string {
	var rel string
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		rel = strings.TrimLeft(u.Path, "/")
	} else {
		rel = strings.TrimLeft(ref, "/")
	}
	if unescaped, err := url.PathUnescape(rel); err == nil {
		rel = unescaped
	}
	if rel == "" {
		return ""
	}

	if hit := mapPrefix(rel, l.cfg.MediaURL, l.cfg.MediaRoot); hit != "" {
		return hit
	}
	if hit := mapPrefix(rel, l.cfg.StaticURL, l.cfg.StaticRoot); hit != "" {
		return hit
	}

	candidates := []string{rel}
	if trimmed := strings.TrimPrefix(rel, "videos/"); trimmed != rel {
		candidates = append(candidates, trimmed)
	}
	for _, root := range l.cfg.FallbackRoots {
		for _, c := range candidates {
			candidate := filepath.Join(root, filepath.FromSlash(c))
			if isFile(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func mapPrefix(rel, urlPrefix, root string) string {
	if urlPrefix == "" || root == "" {
		return ""
	}
	prefix := strings.TrimLeft(urlPrefix, "/")
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(rel, prefix) {
		return ""
	}
	candidate := filepath.Join(root, filepath.FromSlash(rel[len(prefix):]))
	if isFile(candidate) {
		return candidate
	}
	return ""
}

// downloadOnce fetches absURL into the cache dir exactly once per process.
// Concurrent callers for the same URL share one download.
func (l *Localizer) downloadOnce(ctx context.Context, absURL string) (string, error) {
	l.mu.Lock()
	if p, ok := l.cache[absURL]; ok {
		l.mu.Unlock()
		return p, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(absURL, func() (any, error) {
		l.mu.Lock()
		if p, ok := l.cache[absURL]; ok {
			l.mu.Unlock()
			return p, nil
		}
		l.mu.Unlock()

		p, err := l.fetch(ctx, absURL)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[absURL] = p
		l.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (l *Localizer) fetch(ctx context.Context, absURL string) (string, error) {
	logger := xlog.WithComponentFromContext(ctx, "assets")

	ext := path.Ext(path.Base(strings.SplitN(absURL, "?", 2)[0]))
	tmp, err := os.CreateTemp(l.cfg.CacheDir, "render_asset_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, absURL, nil)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cleanup()
		return "", fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close cache file: %w", err)
	}

	metrics.AssetFetchTotal.Inc()
	logger.Debug().
		Str("url", absURL).
		Int64("bytes", n).
		Str("path", tmpPath).
		Msg("asset downloaded")
	return tmpPath, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
