// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"os/exec"

	xlog "github.com/framepress/renderd/internal/log"
)

// Prober answers whether a media source carries at least one audio stream.
type Prober struct {
	bin string
}

// NewProber returns a Prober using the given ffprobe binary.
func NewProber(ffprobeBin string) *Prober {
	return &Prober{bin: ffprobeBin}
}

// HasAudio probes src for audio streams. Probe failures report false so the
// graph never references a pad that may not exist.
func (p *Prober) HasAudio(ctx context.Context, src string) bool {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "json",
		src,
	)
	out, err := cmd.Output()
	if err != nil {
		logger := xlog.WithComponentFromContext(ctx, "engine")
		logger.Debug().
			Err(err).
			Str("src", src).
			Msg("audio probe failed, assuming silent")
		return false
	}

	var result struct {
		Streams []struct {
			Index int `json:"index"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return false
	}
	return len(result.Streams) > 0
}
