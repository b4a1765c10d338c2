// SPDX-License-Identifier: MIT

// Package engine locates and drives the external rendering engine: binary
// resolution, audio-stream probing, argument assembly per output mode, and a
// bounded-concurrency dispatcher with process-group teardown.
package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Binaries holds the resolved engine executables.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// ResolveBinaries resolves the ffmpeg and ffprobe executables. Explicit paths
// are env/home expanded and must exist; names are looked up on PATH; empty
// values default to the bare tool names.
func ResolveBinaries(ffmpeg, ffprobe string) (Binaries, error) {
	ff, err := resolveBinary(ffmpeg, "ffmpeg")
	if err != nil {
		return Binaries{}, err
	}
	fp, err := resolveBinary(ffprobe, "ffprobe")
	if err != nil {
		return Binaries{}, err
	}
	return Binaries{FFmpeg: ff, FFprobe: fp}, nil
}

func resolveBinary(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	name = os.ExpandEnv(name)
	if strings.HasPrefix(name, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			name = filepath.Join(home, name[2:])
		}
	}

	if strings.ContainsRune(name, os.PathSeparator) {
		info, err := os.Stat(name)
		if err != nil || !info.Mode().IsRegular() {
			return "", fmt.Errorf("engine binary %q not found", name)
		}
		return name, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("engine binary %q not on PATH: %w", name, err)
	}
	return path, nil
}
