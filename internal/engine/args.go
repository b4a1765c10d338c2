// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/framepress/renderd/internal/fgraph"
	"github.com/framepress/renderd/internal/timeline"
)

// Mode selects the output profile of a render.
type Mode string

// Render modes.
const (
	ModeFinal   Mode = "final"
	ModePreview Mode = "preview"
	ModeStill   Mode = "still"
)

// Preview downscale bound.
const (
	previewMaxWidth  = 1280
	previewMaxHeight = 720
)

// PositiveDuration returns the timeline duration clamped to at least one
// frame, so stills and zero-duration timelines have a valid timebase at t=0.
func PositiveDuration(tl *timeline.Timeline) float64 {
	if tl.Duration > 0 {
		return tl.Duration
	}
	fps := tl.FPS
	if fps < 1 {
		fps = 1
	}
	return math.Max(1.0/float64(fps), 0.0334)
}

func globalFlags() []string {
	return []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
}

func threadFlags() []string {
	fcThreads := runtime.NumCPU() / 2
	if fcThreads < 2 {
		fcThreads = 2
	}
	return []string{"-threads", "0", "-filter_complex_threads", strconv.Itoa(fcThreads)}
}

func inputArgs(prog *fgraph.Program) []string {
	var args []string
	for _, in := range prog.Inputs {
		args = append(args, in.Flags...)
		args = append(args, "-i", in.Path)
	}
	return args
}

// VideoArgs assembles the engine invocation for a video render. Preview mode
// trades quality for speed and downscales canvases larger than 1280x720.
// Audio is mapped only when the program collected taps.
func VideoArgs(prog *fgraph.Program, width, height int, duration float64, preview bool, outputPath string) []string {
	args := globalFlags()
	args = append(args, inputArgs(prog)...)

	fc := prog.FilterComplex()
	mapV := prog.VideoOut
	if preview && (width > previewMaxWidth || height > previewMaxHeight) {
		// Bound both axes so portrait canvases shrink too.
		fc += ";" + fmt.Sprintf("%sscale=%d:%d:force_original_aspect_ratio=decrease:force_divisible_by=2:flags=fast_bilinear[vprev]",
			mapV, previewMaxWidth, previewMaxHeight)
		mapV = "[vprev]"
	}

	withAudio := len(prog.AudioTaps) > 0
	var mapA string
	if withAudio {
		mixFilters, label := prog.MixFilters()
		for _, f := range mixFilters {
			fc += ";" + f
		}
		mapA = label
	}

	args = append(args, threadFlags()...)
	args = append(args, "-filter_complex", fc, "-map", mapV)
	if withAudio {
		args = append(args, "-map", mapA, "-c:a", "aac")
	}

	preset, crf := "veryfast", "20"
	if preview {
		preset, crf = "ultrafast", "28"
	}
	args = append(args,
		"-r", strconv.Itoa(prog.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", preset,
		"-crf", crf,
		"-movflags", "+faststart",
		"-t", strconv.FormatFloat(duration, 'g', -1, 64),
		"-shortest",
		// Explicit muxer so output may go to an extension-less temp path.
		"-f", "mp4",
		"-y",
		outputPath,
	)
	return args
}

// StillArgs assembles the engine invocation for a single-frame render.
// format is "png" (default) or "jpg"; audio is never mapped.
func StillArgs(prog *fgraph.Program, format, outputPath string) []string {
	args := globalFlags()
	args = append(args, inputArgs(prog)...)
	args = append(args, threadFlags()...)
	args = append(args,
		"-filter_complex", prog.FilterComplex(),
		"-map", prog.VideoOut,
		"-frames:v", "1",
		"-f", "image2",
		"-y",
	)
	if format == "" || format == "png" {
		args = append(args, "-vcodec", "png", outputPath)
	} else {
		args = append(args, "-q:v", "2", outputPath)
	}
	return args
}
