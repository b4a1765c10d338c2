// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"

	"github.com/framepress/renderd/internal/timeline"
)

// emitMedia builds the video/image overlay chains and collects one labeled
// audio tap per audible track. The audio chain never references [idx:a]
// unless the probe confirmed an audio stream.
func (b *builder) emitMedia(tracks []timeline.Track, inputIdx map[timeline.Track]int, hasAudio map[timeline.Track]bool) {
	for _, track := range tracks {
		switch t := track.(type) {
		case *timeline.Video:
			b.emitVisualMedia(inputIdx[track], &t.TrackInfo, t.X, t.Y, t.W, t.H, t.SrcIn, t.SrcOut)
			if hasAudio[track] {
				b.emitAudioTap(inputIdx[track], &t.TrackInfo, t.Volume, t.Muted, t.SrcIn, t.SrcOut)
			}
		case *timeline.Image:
			b.emitVisualMedia(inputIdx[track], &t.TrackInfo, t.X, t.Y, t.W, t.H, nil, nil)
		case *timeline.Audio:
			if hasAudio[track] {
				b.emitAudioTap(inputIdx[track], &t.TrackInfo, t.Volume, t.Muted, t.SrcIn, t.SrcOut)
			}
		}
	}
}

func trimChain(prefix string, srcIn, srcOut *float64) string {
	reset := prefix + "setpts=PTS-STARTPTS"
	if srcIn == nil && srcOut == nil {
		return reset
	}
	in := 0.0
	if srcIn != nil {
		in = *srcIn
	}
	if srcOut == nil || *srcOut <= in {
		return reset
	}
	return fmt.Sprintf("%strim=start=%s:end=%s,%s", prefix, ftoa(in), ftoa(*srcOut), reset)
}

func (b *builder) emitVisualMedia(idx int, info *timeline.TrackInfo, x, y, w, h float64, srcIn, srcOut *float64) {
	scaled := fmt.Sprintf("[v%ds]", b.vcount)
	out := fmt.Sprintf("[v%do]", b.vcount)

	b.emit("[%d:v]scale=%d:%d,format=rgba,%s%s", idx, int(w), int(h), trimChain("", srcIn, srcOut), scaled)
	b.emit("%s%soverlay=%d:%d:%s%s", b.lastV, scaled, int(x), int(y), enableWindow(info), out)

	b.lastV = out
	b.vcount++
}

func (b *builder) emitAudioTap(idx int, info *timeline.TrackInfo, volume float64, muted bool, srcIn, srcOut *float64) {
	gain := clamp01(volume)
	if muted {
		gain = 0
	}
	delayMS := max(0, roundInt(info.Start*1000))

	chain := fmt.Sprintf("[%d:a]%s,adelay=%d:all=1", idx, trimChain("a", srcIn, srcOut), delayMS)
	if gain != 1.0 {
		chain += ",volume=" + f3(gain)
	}
	tap := fmt.Sprintf("[a%d]", idx)
	b.emit("%s%s", chain, tap)
	b.prog.AudioTaps = append(b.prog.AudioTaps, tap)
}
