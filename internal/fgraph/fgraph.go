// SPDX-License-Identifier: MIT

// Package fgraph translates a validated timeline into a deterministic
// filter-graph program for the external rendering engine. Build is a pure
// function of the timeline and its options: the same timeline always yields
// a byte-identical program.
//
// Assembly order is fixed: base color, background image, media overlays,
// text, shapes (circle, triangle, rectangle, line, ellipse), composites
// (sign, weather). Audio taps are collected during media emission and mixed
// by the caller's output stage.
package fgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/framepress/renderd/internal/timeline"
)

// Input is one ordered engine input (-i) with its per-input flags.
type Input struct {
	Path  string
	Flags []string
}

// Program is the complete filter-graph program for one render.
type Program struct {
	Inputs    []Input
	Filters   []string
	VideoOut  string   // final video label
	AudioTaps []string // labeled per-track audio chains, possibly empty
	FPS       int
}

// FilterComplex joins the filter chains into the engine's -filter_complex
// argument.
func (p *Program) FilterComplex() string {
	return strings.Join(p.Filters, ";")
}

// BuildError reports an internal inconsistency while assembling the graph.
// It indicates a programmer error, not bad input.
type BuildError struct {
	Msg string
}

func (e *BuildError) Error() string { return "graph build: " + e.Msg }

// Options parameterize graph assembly.
type Options struct {
	// PositiveDuration is the loop length for stills, always > 0.
	PositiveDuration float64
	// HasAudio reports whether a localized media source carries at least one
	// audio stream. A nil func treats every input as silent, which keeps the
	// graph safe when probing is unavailable.
	HasAudio func(src string) bool
}

type builder struct {
	prog   *Program
	lastV  string
	vcount int
	fps    int
}

// Build assembles the program for tl. Tracks render by z ascending with a
// stable tie-break on input order.
func Build(tl *timeline.Timeline, opts Options) (*Program, error) {
	if opts.PositiveDuration <= 0 {
		return nil, &BuildError{Msg: "positive duration required"}
	}

	tracks := make([]timeline.Track, len(tl.Tracks))
	copy(tracks, tl.Tracks)
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Info().Z < tracks[j].Info().Z
	})

	b := &builder{prog: &Program{FPS: tl.FPS}, fps: tl.FPS}

	// Engine inputs: background image first, then media tracks in render
	// order. Stills loop so the engine has a timebase at t=0.
	loopFlags := []string{"-loop", "1", "-t", ftoa(opts.PositiveDuration)}
	bgImageIdx := -1
	if tl.BackgroundImage != "" {
		b.prog.Inputs = append(b.prog.Inputs, Input{Path: tl.BackgroundImage, Flags: loopFlags})
		bgImageIdx = 0
	}
	inputIdx := map[timeline.Track]int{}
	hasAudio := map[timeline.Track]bool{}
	for _, track := range tracks {
		switch t := track.(type) {
		case *timeline.Image:
			b.prog.Inputs = append(b.prog.Inputs, Input{Path: t.Src, Flags: loopFlags})
			inputIdx[track] = len(b.prog.Inputs) - 1
		case *timeline.Video:
			b.prog.Inputs = append(b.prog.Inputs, Input{Path: t.Src})
			inputIdx[track] = len(b.prog.Inputs) - 1
			hasAudio[track] = opts.HasAudio != nil && opts.HasAudio(t.Src)
		case *timeline.Audio:
			b.prog.Inputs = append(b.prog.Inputs, Input{Path: t.Src})
			inputIdx[track] = len(b.prog.Inputs) - 1
			hasAudio[track] = opts.HasAudio != nil && opts.HasAudio(t.Src)
		}
	}

	bg := tl.Background
	if bg == "" {
		bg = "#000000"
	}
	b.emit("color=c=%s:s=%dx%d:r=%d[base]", FFColor(bg, nil), tl.Width, tl.Height, tl.FPS)
	b.lastV = "[base]"

	b.emitBackgroundImage(bgImageIdx, tl)
	b.emitMedia(tracks, inputIdx, hasAudio)

	for _, track := range tracks {
		switch t := track.(type) {
		case *timeline.Text:
			b.emitText(&t.TextAttrs, &t.TrackInfo, escText(t.Text))
		case *timeline.DateTime:
			b.emitText(&t.TextAttrs, &t.TrackInfo, dateTimeText(t))
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Circle); ok {
			b.emitCircle(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Triangle); ok {
			b.emitTriangle(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Rectangle); ok {
			b.emitRectangle(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Line); ok {
			b.emitLine(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Ellipse); ok {
			b.emitEllipse(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Sign); ok {
			b.emitSign(t)
		}
	}
	for _, track := range tracks {
		if t, ok := track.(*timeline.Weather); ok {
			b.emitWeather(t)
		}
	}

	b.prog.VideoOut = b.lastV
	return b.prog, nil
}

// MixFilters returns the audio mix chains and the final audio label for the
// collected taps. Zero taps synthesize silence; one tap maps directly.
func (p *Program) MixFilters() ([]string, string) {
	switch len(p.AudioTaps) {
	case 0:
		return []string{"anullsrc=channel_layout=stereo:sample_rate=48000[aout]"}, "[aout]"
	case 1:
		return nil, p.AudioTaps[0]
	default:
		mix := strings.Join(p.AudioTaps, "") + fmt.Sprintf("amix=inputs=%d:normalize=1[aout]", len(p.AudioTaps))
		return []string{mix}, "[aout]"
	}
}

func (b *builder) emit(format string, args ...any) {
	b.prog.Filters = append(b.prog.Filters, fmt.Sprintf(format, args...))
}

func enableWindow(info *timeline.TrackInfo) string {
	return fmt.Sprintf("enable='between(t,%s,%s)'", ftoa(info.Start), ftoa(info.End))
}
