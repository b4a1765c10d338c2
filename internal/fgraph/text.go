// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"

	"github.com/framepress/renderd/internal/timeline"
)

// emitText draws one text-like track: font, size, color, optional stroke,
// optional background box, gated by the enable window. body is the already
// escaped drawtext text value.
func (b *builder) emitText(attrs *timeline.TextAttrs, info *timeline.TrackInfo, body string) {
	out := fmt.Sprintf("[vtxt%d]", b.vcount)

	color := attrs.Color
	if color == "" {
		color = "white"
	}

	stroke := ""
	if attrs.StrokeColor != "" && attrs.StrokeWidth > 0 {
		stroke = fmt.Sprintf(":borderw=%s:bordercolor=%s", ftoa(attrs.StrokeWidth), FFColor(attrs.StrokeColor, nil))
	}

	box := ""
	if attrs.BGColor != "" {
		box = fmt.Sprintf(":box=1:boxcolor=%s:boxborderw=%d", FFColor(attrs.BGColor, nil), max(0, attrs.Padding))
	}

	b.emit("%sdrawtext=%s:text='%s':x=%d:y=%d:fontsize=%d:fontcolor=%s%s%s:%s%s",
		b.lastV, fontOption(attrs.FontPath, attrs.FontFamily), body,
		int(attrs.X), int(attrs.Y), attrs.FontSize, FFColor(color, nil),
		stroke, box, enableWindow(info), out)

	b.lastV = out
	b.vcount++
}

// dateTimeText returns the drawtext value for a datetime track. Live tracks
// expand a per-frame time function; otherwise the literal text is drawn.
func dateTimeText(t *timeline.DateTime) string {
	if !t.IsLive && t.Format == "" {
		return escText(t.Text)
	}
	format := t.Format
	if format == "" {
		format = "%Y-%m-%d %H:%M:%S"
	}
	fn := "localtime"
	if t.UseUTC {
		fn = "gmtime"
	}
	return fmt.Sprintf(`%%{%s\:%s}`, fn, escText(format))
}
