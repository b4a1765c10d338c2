// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/framepress/renderd/internal/timeline"
)

// Shape tracks draw outline first, then a fill shrunk by the outline width,
// each as its own clip overlaid within the enable window.

func (b *builder) emitCircle(t *timeline.Circle) {
	cx := roundInt(t.X)
	cy := roundInt(t.Y)
	r := max(1, roundInt(t.Radius))
	d := r * 2
	enable := enableWindow(&t.TrackInfo)

	strokeW := max(0, roundInt(t.OutlineWidth))
	stroked := strokeW > 0 && t.Outline != ""

	if stroked {
		label := fmt.Sprintf("circ_stroke_%d", b.vcount)
		b.circleClip(label, d, r, t.Outline, t.Opacity)
		out := fmt.Sprintf("[v%d_circ_s]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, cx-r, cy-r, enable, out)
		b.lastV = out
		b.vcount++
	}

	fill := t.Fill
	if fill == "" {
		fill = "#000000"
	}
	rFill := r
	if stroked {
		rFill = max(0, r-strokeW)
	}
	label := fmt.Sprintf("circ_fill_%d", b.vcount)
	b.circleClip(label, rFill*2, rFill, fill, t.Opacity)
	out := fmt.Sprintf("[v%d_circ_f]", b.vcount)
	b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, cx-rFill, cy-rFill, enable, out)
	b.lastV = out
	b.vcount++
}

func (b *builder) emitTriangle(t *timeline.Triangle) {
	x := roundInt(t.X)
	y := roundInt(t.Y)
	w := max(1, roundInt(t.Width))
	h := max(1, roundInt(t.Height))
	direction := strings.ToLower(t.Direction)
	if direction == "" {
		direction = "up"
	}
	enable := enableWindow(&t.TrackInfo)

	strokeW := max(0, roundInt(t.OutlineWidth))
	strokeColor := strings.TrimSpace(t.Outline)
	stroked := strokeW > 0 && strokeColor != ""

	if stroked {
		label := fmt.Sprintf("tri_border_%d", b.vcount)
		b.triangleClip(label, w, h, strokeColor, t.Opacity, direction, max(1, strokeW), true)
		out := fmt.Sprintf("[v%d_tri_b]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
		b.lastV = out
		b.vcount++
	}

	innerOff := 0
	if stroked {
		innerOff = max(1, strokeW)
	}
	label := fmt.Sprintf("tri_fill_%d", b.vcount)
	b.triangleClip(label, w, h, fillColor(t.Fill, t.Color), t.Opacity, direction, innerOff, false)
	out := fmt.Sprintf("[v%d_tri_f]", b.vcount)
	b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
	b.lastV = out
	b.vcount++
}

func (b *builder) emitRectangle(t *timeline.Rectangle) {
	x := roundInt(t.X)
	y := roundInt(t.Y)
	w := max(1, roundInt(t.Width))
	h := max(1, roundInt(t.Height))
	radius := max(0, roundInt(t.BorderRadius))
	enable := enableWindow(&t.TrackInfo)

	strokeW := max(0, roundInt(t.OutlineWidth))
	strokeColor := strings.TrimSpace(t.Outline)
	stroked := strokeW > 0 && strokeColor != ""

	if stroked {
		label := fmt.Sprintf("rect_border_%d", b.vcount)
		b.rectangleClip(label, w, h, strokeColor, t.Opacity, radius, max(1, strokeW), true)
		out := fmt.Sprintf("[v%d_rect_b]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
		b.lastV = out
		b.vcount++
	}

	innerOff := 0
	if stroked {
		innerOff = max(1, strokeW)
	}
	label := fmt.Sprintf("rect_fill_%d", b.vcount)
	b.rectangleClip(label, w, h, fillColor(t.Fill, t.Color), t.Opacity, radius, innerOff, false)
	out := fmt.Sprintf("[v%d_rect_f]", b.vcount)
	b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
	b.lastV = out
	b.vcount++
}

func (b *builder) emitEllipse(t *timeline.Ellipse) {
	x := roundInt(t.X)
	y := roundInt(t.Y)
	w := max(1, roundInt(t.Width))
	h := max(1, roundInt(t.Height))
	enable := enableWindow(&t.TrackInfo)

	strokeW := max(0, roundInt(t.OutlineWidth))
	strokeColor := strings.TrimSpace(t.Outline)
	stroked := strokeW > 0 && strokeColor != ""

	if stroked {
		label := fmt.Sprintf("ell_border_%d", b.vcount)
		b.ellipseClip(label, w, h, strokeColor, t.Opacity, max(1, strokeW), true)
		out := fmt.Sprintf("[v%d_ell_b]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
		b.lastV = out
		b.vcount++
	}

	innerOff := 0
	if stroked {
		innerOff = max(1, strokeW)
	}
	label := fmt.Sprintf("ell_fill_%d", b.vcount)
	b.ellipseClip(label, w, h, fillColor(t.Fill, t.Color), t.Opacity, innerOff, false)
	out := fmt.Sprintf("[v%d_ell_f]", b.vcount)
	b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, label, x, y, enable, out)
	b.lastV = out
	b.vcount++
}

// emitLine draws a solid bar, pads it into a 2L square with the bar's left
// middle at the center, rotates around that center, and overlays so the
// center lands on the start anchor.
func (b *builder) emitLine(t *timeline.Line) {
	x := roundInt(t.X)
	y := roundInt(t.Y)
	length := max(1, roundInt(t.Length))
	thickness := max(1, roundInt(t.Thickness))
	rad := t.Rotation * math.Pi / 180
	color := t.Color
	if color == "" {
		color = "#000000"
	}
	enable := enableWindow(&t.TrackInfo)

	body := fmt.Sprintf("line_body_%d", b.vcount)
	b.emit("color=c=%s:s=%dx%d:r=%d,format=rgba[%s]",
		FFColor(color, &t.Opacity), length, thickness, b.fps, body)

	pad := fmt.Sprintf("line_pad_%d", b.vcount)
	b.emit("[%s]pad=width=%d:height=%d:x=%d:y=%d:color=black@0[%s]",
		body, 2*length, 2*length, length, length-thickness/2, pad)

	rot := fmt.Sprintf("line_rot_%d", b.vcount)
	b.emit("[%s]rotate=%s:ow=rotw(iw):oh=roth(ih):c=black@0[%s]", pad, ftoa(rad), rot)

	out := fmt.Sprintf("[v%d_line]", b.vcount)
	b.emit("%s[%s]overlay=%d:%d:%s%s", b.lastV, rot, x-length, y-length, enable, out)
	b.lastV = out
	b.vcount++
}

// fillColor picks the fill, falling back to the legacy color field, then black.
func fillColor(fill, legacy string) string {
	if fill != "" {
		return fill
	}
	if legacy != "" {
		return legacy
	}
	return "#000000"
}
