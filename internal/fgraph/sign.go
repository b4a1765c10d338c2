// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/framepress/renderd/internal/timeline"
)

// symbolChars maps symbol type names to the glyph drawn on a sign panel.
var symbolChars = map[string]string{
	"copyright":  "©",
	"registered": "®",
	"trademark":  "™",
	"service":    "℠",
	"paragraph":  "§",
	"sound":      "℗",
	"info":       "ℹ",
}

func symbolChar(symbolType, custom string) string {
	if custom != "" {
		return custom
	}
	if c, ok := symbolChars[strings.ToLower(strings.TrimSpace(symbolType))]; ok {
		return c
	}
	return "©"
}

// emitSign composes the panel off-screen on a transparent canvas, renders the
// enabled components onto it, applies the overall opacity, rotates around the
// panel center, and overlays so the center lands at the panel midpoint.
func (b *builder) emitSign(t *timeline.Sign) {
	x := roundInt(t.X)
	y := roundInt(t.Y)
	w := max(1, roundInt(t.Width))
	h := max(1, roundInt(t.Height))
	rotRad := t.Rotation * math.Pi / 180
	enable := enableWindow(&t.TrackInfo)
	opacity := clamp01(t.Opacity)

	colText := t.Colors.Text
	if colText == "" {
		colText = "#000000"
	}
	colBorder := t.Colors.Border
	if colBorder == "" {
		colBorder = "#000000"
	}
	colIcon := orColor(t.Colors.Icon, colText)
	colArrow := orColor(t.Colors.Arrow, colText)
	colSymbol := orColor(t.Colors.Symbol, colText)

	fsText := t.FontSizes.Text
	if fsText <= 0 {
		fsText = max(1, roundInt(math.Min(float64(h)*0.35, 48)))
	}
	fsSymbol := t.FontSizes.Symbol
	if fsSymbol <= 0 {
		fsSymbol = max(1, roundInt(math.Min(float64(h)*0.40, 56)))
	}
	iconSize := t.IconSize
	if iconSize <= 0 {
		iconSize = max(1, roundInt(math.Min(float64(h)*0.40, 36)))
	}

	margin := max(4, roundInt(float64(h)*0.08))
	const borderW = 2
	bgRadius := roundInt(float64(h) * 0.12)

	base := fmt.Sprintf("sign_base_%d", b.vcount)
	b.emit("color=c=black@0:s=%dx%d:r=%d,format=rgba[%s]", w, h, b.fps, base)
	vo := fmt.Sprintf("[v%d_sign_0]", b.vcount)
	b.emit("[%s]copy%s", base, vo)
	b.vcount++

	one := 1.0
	if t.Show.Background && t.Colors.Background != "" {
		label := fmt.Sprintf("sign_bg_%d", b.vcount)
		b.rectangleClip(label, w, h, t.Colors.Background, one, bgRadius, 0, false)
		next := fmt.Sprintf("[v%d_sign_bg]", b.vcount)
		b.emit("%s[%s]overlay=0:0%s", vo, label, next)
		vo = next
		b.vcount++
	}

	if t.Show.Border {
		label := fmt.Sprintf("sign_bor_%d", b.vcount)
		b.rectangleClip(label, w, h, colBorder, one, bgRadius, max(1, borderW), true)
		next := fmt.Sprintf("[v%d_sign_bor]", b.vcount)
		b.emit("%s[%s]overlay=0:0%s", vo, label, next)
		vo = next
		b.vcount++
	}

	if t.Show.Icon {
		r := max(1, iconSize/2)
		label := fmt.Sprintf("sign_icon_%d", b.vcount)
		b.circleClip(label, r*2, r, colIcon, one)
		cx := margin + r
		cy := h / 2
		next := fmt.Sprintf("[v%d_sign_icon]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d%s", vo, label, cx-r, cy-r, next)
		vo = next
		b.vcount++
	}

	if t.Show.Arrow {
		tw := max(6, roundInt(float64(h)*0.35))
		th := max(6, roundInt(float64(h)*0.35))
		label := fmt.Sprintf("sign_arrow_%d", b.vcount)
		b.triangleClip(label, tw, th, colArrow, one, "right", 0, false)
		next := fmt.Sprintf("[v%d_sign_arrow]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d%s", vo, label, w-margin-tw, (h-th)/2, next)
		vo = next
		b.vcount++
	}

	if t.Show.Symbol || t.Show.Text {
		fontOpt := fontOption(t.FontPath, t.FontFamily)
		gap := roundInt(float64(h) * 0.05)

		switch {
		case t.Show.Symbol && t.Show.Text:
			// Symbol above, text below, stacked around the vertical center.
			next := fmt.Sprintf("[v%d_sign_sym]", b.vcount)
			b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=(h/2 - %d)-text_h%s",
				vo, fontOpt, escText(symbolChar(t.SymbolType, t.CustomSymbol)), fsSymbol, FFColor(colSymbol, nil), gap, next)
			vo = next
			b.vcount++

			next = fmt.Sprintf("[v%d_sign_txt]", b.vcount)
			b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=(h/2 + %d)%s",
				vo, fontOpt, escText(t.Text), fsText, FFColor(colText, nil), gap, next)
			vo = next
			b.vcount++

		case t.Show.Symbol:
			next := fmt.Sprintf("[v%d_sign_sym2]", b.vcount)
			b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=(h-text_h)/2%s",
				vo, fontOpt, escText(symbolChar(t.SymbolType, t.CustomSymbol)), fsSymbol, FFColor(colSymbol, nil), next)
			vo = next
			b.vcount++

		default:
			next := fmt.Sprintf("[v%d_sign_txt2]", b.vcount)
			b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=(h-text_h)/2%s",
				vo, fontOpt, escText(t.Text), fsText, FFColor(colText, nil), next)
			vo = next
			b.vcount++
		}
	}

	alphaOut := fmt.Sprintf("[v%d_sign_alpha]", b.vcount)
	b.emit("%sformat=rgba,colorchannelmixer=aa=%s%s", vo, f3(opacity), alphaOut)
	vo = alphaOut
	b.vcount++

	rotOut := fmt.Sprintf("[v%d_sign_rot]", b.vcount)
	b.emit("%srotate=%s:ow=rotw(iw):oh=roth(ih):c=black@0%s", vo, ftoa(rotRad), rotOut)
	b.vcount++

	// Land the rotated panel's center on the unrotated panel's center. The
	// overlay vars w/h are the overlay input size, not the main size.
	cx := float64(x) + float64(w)/2
	cy := float64(y) + float64(h)/2
	out := fmt.Sprintf("[v%d_sign_out]", b.vcount)
	b.emit("%s%soverlay=%s-w/2:%s-h/2:%s%s", b.lastV, rotOut, ftoa(cx), ftoa(cy), enable, out)
	b.lastV = out
	b.vcount++
}

func orColor(c, fallback string) string {
	if c != "" {
		return c
	}
	return fallback
}
