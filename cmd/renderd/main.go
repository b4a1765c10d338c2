// SPDX-License-Identifier: MIT

// Command renderd is the timeline render service: it accepts declarative
// timelines over HTTP, drives the external rendering engine, and serves the
// resulting artifacts with range support.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/framepress/renderd/internal/api"
	"github.com/framepress/renderd/internal/assets"
	"github.com/framepress/renderd/internal/config"
	"github.com/framepress/renderd/internal/engine"
	"github.com/framepress/renderd/internal/fgraph"
	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("renderd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	xlog.Configure(xlog.Config{
		Level:   cfg.LogLevel,
		Service: "renderd",
	})
	logger := xlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fgraph.AddFontFallbacks(cfg.FontPaths...)

	bins, err := engine.ResolveBinaries(cfg.FFmpegBin, cfg.FFprobeBin)
	if err != nil {
		logger.Fatal().Err(err).Msg("engine binaries unavailable")
	}

	st, err := store.Open(cfg.DBPath, cfg.MediaRoot)
	if err != nil {
		logger.Fatal().Err(err).Msg("artifact store unavailable")
	}
	defer st.Close()

	localizer := assets.New(assets.Config{
		MediaRoot:     cfg.MediaRoot,
		MediaURL:      cfg.MediaURL,
		StaticRoot:    cfg.StaticRoot,
		StaticURL:     cfg.StaticURL,
		FallbackRoots: cfg.AssetRoots,
		FetchTimeout:  cfg.AssetFetchTimeout,
	})

	dispatcher := engine.NewDispatcher(engine.Config{
		Binaries:       bins,
		Concurrency:    cfg.RenderConcurrency,
		FinalTimeout:   cfg.RenderTimeoutFinal,
		PreviewTimeout: cfg.RenderTimeoutPreview,
	})

	server := api.New(cfg, st, localizer, dispatcher)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Str("media_root", cfg.MediaRoot).
			Str("ffmpeg", bins.FFmpeg).
			Str("version", version).
			Msg("renderd listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("renderd stopped")
}
