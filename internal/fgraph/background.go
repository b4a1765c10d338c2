// SPDX-License-Identifier: MIT

package fgraph

import "github.com/framepress/renderd/internal/timeline"

// emitBackgroundImage scales the background input onto the base. cover crops
// after an aspect-preserving upscale, contain letterboxes, stretch distorts.
func (b *builder) emitBackgroundImage(inputIdx int, tl *timeline.Timeline) {
	if inputIdx < 0 {
		return
	}
	alpha := f3(clamp01(tl.BackgroundOpacity))
	switch tl.BackgroundFit {
	case "cover":
		b.emit("[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,format=rgba,colorchannelmixer=aa=%s[bgscaled]",
			inputIdx, tl.Width, tl.Height, tl.Width, tl.Height, alpha)
	case "contain":
		b.emit("[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,format=rgba,colorchannelmixer=aa=%s[bgscaled]",
			inputIdx, tl.Width, tl.Height, alpha)
	default: // stretch
		b.emit("[%d:v]scale=%d:%d,format=rgba,colorchannelmixer=aa=%s[bgscaled]",
			inputIdx, tl.Width, tl.Height, alpha)
	}
	b.emit("%s[bgscaled]overlay=0:0[vbg]", b.lastV)
	b.lastV = "[vbg]"
}
