// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/framepress/renderd/internal/timeline"
)

// weatherGeom carries the panel-level values shared by the weather emit
// helpers.
type weatherGeom struct {
	x, y, w, h int
	margin     int
	hAlign     string
	layout     map[string]timeline.LayoutBox
}

// localBox resolves a layout box for key into panel coordinates. Boxes whose
// origin lies outside the panel are treated as screen-space and translated by
// the track position; a box that still does not fit is ignored.
func (g *weatherGeom) localBox(key string) (bx, by, bw, bh int, ok bool) {
	box, present := g.layout[key]
	if !present || box.Width <= 0 || box.Height <= 0 {
		return 0, 0, 0, 0, false
	}
	fx, fy := box.X, box.Y
	if fx >= float64(g.w) || fy >= float64(g.h) {
		fx -= float64(g.x)
		fy -= float64(g.y)
	}
	if fx < 0 || fy < 0 || fx+box.Width > float64(g.w) || fy+box.Height > float64(g.h) {
		return 0, 0, 0, 0, false
	}
	return roundInt(fx), roundInt(fy), roundInt(box.Width), roundInt(box.Height), true
}

// anchorX positions a drawtext expression horizontally inside the panel.
func (g *weatherGeom) anchorX() string {
	switch g.hAlign {
	case "center":
		return fmt.Sprintf("(%d-text_w)/2", g.w)
	case "right":
		return fmt.Sprintf("%d-text_w-%d", g.w, g.margin)
	default:
		return fmt.Sprintf("%d", g.margin)
	}
}

// emitWeather composes a weather card off-screen: rounded background and
// border, optional icon circle, then a top-down text flow of location,
// summary, the toggled observation pieces (temperature, max/min, humidity,
// wind), date, and attribution. Layout boxes override flow positions.
func (b *builder) emitWeather(t *timeline.Weather) {
	g := &weatherGeom{
		x:      roundInt(t.X),
		y:      roundInt(t.Y),
		w:      max(1, roundInt(t.Width)),
		h:      max(1, roundInt(t.Height)),
		hAlign: strings.ToLower(t.HorizontalAlign),
		layout: t.Layout,
	}
	g.margin = max(6, roundInt(float64(g.h)*0.08))
	enable := enableWindow(&t.TrackInfo)

	colTxt := t.Colors.Text
	if colTxt == "" {
		colTxt = "#000000"
	}
	colHigh := orColor(t.Colors.Highlight, colTxt)
	colIcon := orColor(t.Colors.IconBG, "#DDDDDD")
	colAttr := orColor(t.Colors.Attribution, "#666666")
	colDate := orColor(t.Colors.Date, colTxt)

	fsLocation := autoFontSize(t.FontSizes.Location, 10, float64(g.h)*0.18, 28)
	fsSummary := autoFontSize(t.FontSizes.Summary, 10, float64(g.h)*0.14, 22)
	fsDate := autoFontSize(t.FontSizes.Date, 8, float64(g.h)*0.12, 18)
	fsAttr := autoFontSize(t.FontSizes.Attribution, 8, float64(g.h)*0.10, 14)

	iconSize := t.IconSize
	if iconSize <= 0 {
		iconSize = max(1, roundInt(math.Min(float64(g.h)*0.35, 56)))
	}

	radius := roundInt(math.Min(float64(g.w), float64(g.h)) * 0.08)

	base := fmt.Sprintf("wx_base_%d", b.vcount)
	b.emit("color=c=black@0:s=%dx%d:r=%d,format=rgba[%s]", g.w, g.h, b.fps, base)
	vo := fmt.Sprintf("[v%d_wx_0]", b.vcount)
	b.emit("[%s]copy%s", base, vo)
	b.vcount++

	if t.Colors.Background != "" {
		label := fmt.Sprintf("wx_bg_%d", b.vcount)
		b.rectangleClip(label, g.w, g.h, t.Colors.Background, 1.0, radius, 0, false)
		next := fmt.Sprintf("[v%d_wx_bg]", b.vcount)
		b.emit("%s[%s]overlay=0:0%s", vo, label, next)
		vo = next
		b.vcount++
	}

	if t.Colors.Border != "" {
		label := fmt.Sprintf("wx_bo_%d", b.vcount)
		b.rectangleClip(label, g.w, g.h, t.Colors.Border, 1.0, radius, 1, true)
		next := fmt.Sprintf("[v%d_wx_bo]", b.vcount)
		b.emit("%s[%s]overlay=0:0%s", vo, label, next)
		vo = next
		b.vcount++
	}

	fontOpt := fontOption(t.FontPath, t.FontFamily)

	if t.Show.Icon {
		r := max(1, iconSize/2)
		d := r * 2
		label := fmt.Sprintf("wx_icon_%d", b.vcount)
		b.circleClip(label, d, r, colIcon, 1.0)
		var ix, iy int
		if bx, by, bw, bh, ok := g.localBox("icon"); ok {
			ix = bx + (bw-d)/2
			iy = by + (bh-d)/2
		} else {
			ix = g.margin
			switch strings.ToLower(t.VerticalAlign) {
			case "middle":
				iy = (g.h - d) / 2
			case "bottom":
				iy = g.h - d - g.margin
			default:
				iy = g.margin
			}
		}
		next := fmt.Sprintf("[v%d_wx_icon]", b.vcount)
		b.emit("%s[%s]overlay=%d:%d%s", vo, label, ix, iy, next)
		vo = next
		b.vcount++
	}

	yCursor := g.margin

	locText := strings.TrimSpace(t.Location)
	if locText == "" {
		locText = strings.TrimSpace(t.Name)
	}
	if t.Show.Location && locText != "" {
		vo = b.emitWeatherText(g, vo, fontOpt, locText, fsLocation, colHigh, "location", yCursor, "wx_loc")
		yCursor += fsLocation + int(float64(g.margin)*0.5)
	}

	summaryText := ""
	if t.Data != nil {
		summaryText = strings.TrimSpace(t.Data.Summary)
	}
	if t.Show.Summary && summaryText != "" {
		vo = b.emitWeatherText(g, vo, fontOpt, summaryText, fsSummary, colTxt, "summary", yCursor, "wx_sum")
		yCursor += fsSummary + int(float64(g.margin)*0.4)
	}

	tempUnit, speedUnit := weatherUnits(t.Units)
	if t.Data != nil {
		fsTemp := autoFontSize(t.FontSizes.Temperature, 10, float64(g.h)*0.20, 32)

		if t.Show.Temperature && t.Data.Temperature != nil {
			text := ftoa(*t.Data.Temperature) + tempUnit
			col := orColor(t.Colors.Temperature, colHigh)
			vo = b.emitWeatherText(g, vo, fontOpt, text, fsTemp, col, "temperature", yCursor, "wx_temp")
			yCursor += fsTemp + int(float64(g.margin)*0.4)
		}
		if t.Show.MaxTemp && t.Data.MaxTemp != nil {
			size := autoFontSize(t.FontSizes.MaxTemp, 8, float64(g.h)*0.12, 18)
			text := "Max " + ftoa(*t.Data.MaxTemp) + tempUnit
			col := orColor(t.Colors.MaxTemp, colTxt)
			vo = b.emitWeatherText(g, vo, fontOpt, text, size, col, "maxTemp", yCursor, "wx_max")
			yCursor += size + int(float64(g.margin)*0.3)
		}
		if t.Show.MinTemp && t.Data.MinTemp != nil {
			size := autoFontSize(t.FontSizes.MinTemp, 8, float64(g.h)*0.12, 18)
			text := "Min " + ftoa(*t.Data.MinTemp) + tempUnit
			col := orColor(t.Colors.MinTemp, colTxt)
			vo = b.emitWeatherText(g, vo, fontOpt, text, size, col, "minTemp", yCursor, "wx_min")
			yCursor += size + int(float64(g.margin)*0.3)
		}
		if t.Show.Humidity && t.Data.Humidity != nil {
			size := autoFontSize(t.FontSizes.Humidity, 8, float64(g.h)*0.12, 18)
			text := "Humidity " + ftoa(*t.Data.Humidity) + "%"
			col := orColor(t.Colors.Humidity, colTxt)
			vo = b.emitWeatherText(g, vo, fontOpt, text, size, col, "humidity", yCursor, "wx_hum")
			yCursor += size + int(float64(g.margin)*0.3)
		}
		if t.Show.WindSpeed && t.Data.WindSpeed != nil {
			size := autoFontSize(t.FontSizes.WindSpeed, 8, float64(g.h)*0.12, 18)
			text := ftoa(*t.Data.WindSpeed) + " " + speedUnit
			if t.Show.WindDirection && t.Data.WindDirection != "" {
				text += " " + strings.TrimSpace(t.Data.WindDirection)
			}
			col := orColor(t.Colors.WindSpeed, colTxt)
			vo = b.emitWeatherText(g, vo, fontOpt, text, size, col, "windSpeed", yCursor, "wx_wind")
			yCursor += size + int(float64(g.margin)*0.3)
		} else if t.Show.WindDirection && t.Data.WindDirection != "" {
			size := autoFontSize(t.FontSizes.WindDirection, 8, float64(g.h)*0.12, 18)
			col := orColor(t.Colors.WindDirection, colTxt)
			vo = b.emitWeatherText(g, vo, fontOpt, strings.TrimSpace(t.Data.WindDirection), size, col, "windDirection", yCursor, "wx_wdir")
			yCursor += size + int(float64(g.margin)*0.3)
		}
	}

	if t.Show.Date {
		next := fmt.Sprintf("[v%d_wx_date]", b.vcount)
		xExpr, yExpr := g.textPosition("date", yCursor)
		// A pre-formatted date from the data block wins over the live clock.
		dateText := `%{localtime\:%Y-%m-%d}`
		if t.Data != nil && strings.TrimSpace(t.Data.DateText) != "" {
			dateText = escText(strings.TrimSpace(t.Data.DateText))
		}
		b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=%s:y=%s%s",
			vo, fontOpt, dateText, fsDate, FFColor(colDate, nil), xExpr, yExpr, next)
		vo = next
		b.vcount++
		yCursor += fsDate + int(float64(g.margin)*0.3)
	}

	if t.Show.Attribution {
		attrText := ""
		if t.Data != nil {
			attrText = strings.TrimSpace(t.Data.AttributionText)
		}
		if attrText == "" {
			attrText = strings.TrimSpace(t.Name)
		}
		if attrText == "" {
			attrText = "Weather"
		}
		next := fmt.Sprintf("[v%d_wx_attr]", b.vcount)
		var xExpr, yExpr string
		if bx, by, bw, bh, ok := g.localBox("attribution"); ok {
			xExpr = fmt.Sprintf("%d + ( %d - text_w )/2", bx, bw)
			yExpr = fmt.Sprintf("%d + ( %d - text_h )/2", by, bh)
		} else {
			xExpr = fmt.Sprintf("%d", g.margin)
			yExpr = fmt.Sprintf("%d", g.h-fsAttr-g.margin)
		}
		b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=%s:y=%s%s",
			vo, fontOpt, escText(attrText), fsAttr, FFColor(colAttr, nil), xExpr, yExpr, next)
		vo = next
		b.vcount++
	}

	alphaOut := fmt.Sprintf("[v%d_wx_alpha]", b.vcount)
	b.emit("%sformat=rgba,colorchannelmixer=aa=%s%s", vo, f3(clamp01(t.Opacity)), alphaOut)
	vo = alphaOut
	b.vcount++

	out := fmt.Sprintf("[v%d_wx_out]", b.vcount)
	b.emit("%s%soverlay=%d:%d:%s%s", b.lastV, vo, g.x, g.y, enable, out)
	b.lastV = out
	b.vcount++
}

// textPosition picks the drawtext x/y, preferring a layout box, falling back
// to the aligned flow position.
func (g *weatherGeom) textPosition(boxKey string, flowY int) (xExpr, yExpr string) {
	if bx, by, bw, bh, ok := g.localBox(boxKey); ok {
		return fmt.Sprintf("%d + ( %d - text_w )/2", bx, bw),
			fmt.Sprintf("%d + ( %d - text_h )/2", by, bh)
	}
	return g.anchorX(), fmt.Sprintf("%d", flowY)
}

func (b *builder) emitWeatherText(g *weatherGeom, vo, fontOpt, text string, size int, color, boxKey string, flowY int, label string) string {
	out := fmt.Sprintf("[%s_%d]", label, b.vcount)
	xExpr, yExpr := g.textPosition(boxKey, flowY)
	b.emit("%sdrawtext=%s:text='%s':fontsize=%d:fontcolor=%s:x=%s:y=%s%s",
		vo, fontOpt, escText(text), size, FFColor(color, nil), xExpr, yExpr, out)
	b.vcount++
	return out
}

// weatherUnits maps the units choice to display suffixes. Observation values
// arrive already converted; only the labels differ.
func weatherUnits(units string) (temp, speed string) {
	if strings.EqualFold(units, "imperial") {
		return "°F", "mph"
	}
	return "°C", "km/h"
}

// autoFontSize resolves a configured size, deriving from the panel height
// with a cap when unset.
func autoFontSize(configured, floor int, derived, limit float64) int {
	if configured > 0 {
		return max(floor, configured)
	}
	return max(floor, roundInt(math.Min(derived, limit)))
}
