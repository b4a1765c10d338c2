// SPDX-License-Identifier: MIT

// Package config loads and validates the service configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the validated runtime configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string
	// APIToken authenticates the render endpoints. Required.
	APIToken string
	// LogLevel is a zerolog level name.
	LogLevel string

	// FFmpegBin and FFprobeBin name or path the engine binaries.
	FFmpegBin  string
	FFprobeBin string

	// MediaRoot is the directory holding previews/, locked/ and the
	// artifact database. Must exist.
	MediaRoot string
	// MediaURL is the public path prefix under which MediaRoot is served.
	MediaURL string
	// StaticRoot and StaticURL optionally map a second public prefix.
	StaticRoot string
	StaticURL  string
	// AssetRoots are extra directories probed for relative asset paths.
	AssetRoots []string
	// FontPaths are extra font files tried before the built-in fallbacks.
	FontPaths []string

	// DBPath locates the artifact database; defaults under MediaRoot.
	DBPath string

	// RenderConcurrency bounds simultaneous engine runs.
	RenderConcurrency int64
	// Render timeouts by mode.
	RenderTimeoutFinal   time.Duration
	RenderTimeoutPreview time.Duration
	// AssetFetchTimeout bounds one remote asset download.
	AssetFetchTimeout time.Duration

	// RateLimit caps requests per minute per client IP; 0 disables.
	RateLimit int
}

// FromEnv reads the configuration from the environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:           envStr("LISTEN_ADDR", ":8090"),
		APIToken:             os.Getenv("API_TOKEN"),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		FFmpegBin:            os.Getenv("FFMPEG_BIN"),
		FFprobeBin:           os.Getenv("FFPROBE_BIN"),
		MediaRoot:            envStr("MEDIA_ROOT", "./media"),
		MediaURL:             envStr("MEDIA_URL", "/media/"),
		StaticRoot:           os.Getenv("STATIC_ROOT"),
		StaticURL:            os.Getenv("STATIC_URL"),
		AssetRoots:           envList("ASSET_ROOTS"),
		FontPaths:            envList("FONT_PATHS"),
		DBPath:               os.Getenv("RENDERD_DB"),
		RenderTimeoutFinal:   envDuration("RENDER_TIMEOUT_FINAL", 10*time.Minute),
		RenderTimeoutPreview: envDuration("RENDER_TIMEOUT_PREVIEW", 2*time.Minute),
		AssetFetchTimeout:    envDuration("ASSET_FETCH_TIMEOUT", 30*time.Second),
		RateLimit:            envInt("RATE_LIMIT_PER_MINUTE", 0),
	}

	conc := envInt("RENDER_CONCURRENCY", 0)
	cfg.RenderConcurrency = int64(conc)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIToken == "" {
		return fmt.Errorf("config: API_TOKEN is required")
	}
	if c.RenderConcurrency < 0 {
		return fmt.Errorf("config: RENDER_CONCURRENCY must be non-negative")
	}
	if c.RenderTimeoutFinal <= 0 || c.RenderTimeoutPreview <= 0 {
		return fmt.Errorf("config: render timeouts must be positive")
	}

	abs, err := filepath.Abs(c.MediaRoot)
	if err != nil {
		return fmt.Errorf("config: MEDIA_ROOT: %w", err)
	}
	c.MediaRoot = abs
	info, err := os.Stat(c.MediaRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("config: MEDIA_ROOT %q is not a directory", c.MediaRoot)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.MediaRoot, "renderd.db")
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	// Accept either a Go duration or a bare seconds count.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
