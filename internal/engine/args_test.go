// SPDX-License-Identifier: MIT

package engine

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framepress/renderd/internal/fgraph"
	"github.com/framepress/renderd/internal/timeline"
)

func testProgram() *fgraph.Program {
	return &fgraph.Program{
		Inputs:   []fgraph.Input{{Path: "/tmp/bg.png", Flags: []string{"-loop", "1", "-t", "5"}}},
		Filters:  []string{"color=c=0x000000:s=640x480:r=30[base]"},
		VideoOut: "[base]",
		FPS:      30,
	}
}

func argsAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag {
			require.Less(t, i+1, len(args), "flag %s has no value", flag)
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestPositiveDuration(t *testing.T) {
	assert.Equal(t, 7.5, PositiveDuration(&timeline.Timeline{Duration: 7.5, FPS: 30}))
	// Zero duration clamps to at least one frame.
	got := PositiveDuration(&timeline.Timeline{Duration: 0, FPS: 30})
	assert.Greater(t, got, 0.0)
	assert.InDelta(t, 1.0/30, got, 0.01)
	// Degenerate fps still yields something positive.
	assert.Greater(t, PositiveDuration(&timeline.Timeline{Duration: 0, FPS: 0}), 0.0)
}

func TestVideoArgs_Final(t *testing.T) {
	args := VideoArgs(testProgram(), 640, 480, 5, false, "/out/final")

	assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "-nostdin"}, args[:4])
	assert.Contains(t, args, "-i")
	assert.Equal(t, "/tmp/bg.png", argsAfter(t, args, "-i"))
	assert.Equal(t, "libx264", argsAfter(t, args, "-c:v"))
	assert.Equal(t, "yuv420p", argsAfter(t, args, "-pix_fmt"))
	assert.Equal(t, "veryfast", argsAfter(t, args, "-preset"))
	assert.Equal(t, "20", argsAfter(t, args, "-crf"))
	assert.Equal(t, "+faststart", argsAfter(t, args, "-movflags"))
	assert.Equal(t, "5", argsAfter(t, args, "-t"))
	assert.Equal(t, "mp4", argsAfter(t, args, "-f"))
	assert.Equal(t, "[base]", argsAfter(t, args, "-map"))
	assert.Equal(t, "/out/final", args[len(args)-1])

	// No taps means no audio mapping at all.
	assert.NotContains(t, args, "-c:a")
	assert.NotContains(t, strings.Join(args, " "), "anullsrc")
}

func TestVideoArgs_PreviewProfile(t *testing.T) {
	args := VideoArgs(testProgram(), 640, 480, 5, true, "/out/p")
	assert.Equal(t, "ultrafast", argsAfter(t, args, "-preset"))
	assert.Equal(t, "28", argsAfter(t, args, "-crf"))
	// Small canvases are not downscaled.
	assert.NotContains(t, argsAfter(t, args, "-filter_complex"), "vprev")
	assert.Equal(t, "[base]", argsAfter(t, args, "-map"))
}

func TestVideoArgs_PreviewDownscalesLargeCanvas(t *testing.T) {
	args := VideoArgs(testProgram(), 3840, 2160, 5, true, "/out/p")
	fc := argsAfter(t, args, "-filter_complex")
	assert.Contains(t, fc, "scale=1280:720:force_original_aspect_ratio=decrease:force_divisible_by=2:flags=fast_bilinear[vprev]")
	assert.Equal(t, "[vprev]", argsAfter(t, args, "-map"))

	// A portrait canvas within width bounds downscales too, with the height
	// bound in the filter so 720x1280 actually shrinks.
	args = VideoArgs(testProgram(), 720, 1280, 5, true, "/out/p")
	fc = argsAfter(t, args, "-filter_complex")
	assert.Contains(t, fc, "scale=1280:720:force_original_aspect_ratio=decrease")
	assert.Equal(t, "[vprev]", argsAfter(t, args, "-map"))

	// Final renders never downscale.
	args = VideoArgs(testProgram(), 3840, 2160, 5, false, "/out/f")
	assert.Equal(t, "[base]", argsAfter(t, args, "-map"))
}

func TestVideoArgs_AudioMix(t *testing.T) {
	prog := testProgram()
	prog.Filters = append(prog.Filters, "[0:a]asetpts=PTS-STARTPTS,adelay=0:all=1[a0]")
	prog.AudioTaps = []string{"[a0]"}

	args := VideoArgs(prog, 640, 480, 5, false, "/out/a")
	assert.Equal(t, "aac", argsAfter(t, args, "-c:a"))

	// Both video and audio labels are mapped, in that order.
	var maps []string
	for i, a := range args {
		if a == "-map" {
			maps = append(maps, args[i+1])
		}
	}
	if diff := cmp.Diff([]string{"[base]", "[a0]"}, maps); diff != "" {
		t.Fatalf("map labels mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoArgs_FractionalDuration(t *testing.T) {
	args := VideoArgs(testProgram(), 640, 480, 2.5, false, "/out/v")
	assert.Equal(t, "2.5", argsAfter(t, args, "-t"))
}

func TestStillArgs(t *testing.T) {
	args := StillArgs(testProgram(), "png", "/out/still")
	assert.Equal(t, "1", argsAfter(t, args, "-frames:v"))
	assert.Equal(t, "image2", argsAfter(t, args, "-f"))
	assert.Equal(t, "png", argsAfter(t, args, "-vcodec"))
	assert.Equal(t, "/out/still", args[len(args)-1])

	jpg := StillArgs(testProgram(), "jpg", "/out/still")
	assert.Equal(t, "2", argsAfter(t, jpg, "-q:v"))
	assert.NotContains(t, jpg, "-vcodec")

	// Empty format defaults to png.
	def := StillArgs(testProgram(), "", "/out/still")
	assert.Equal(t, "png", argsAfter(t, def, "-vcodec"))
}
