// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"strings"
)

// Vector primitives render as independent RGBA clips of the exact bounding
// box, with per-pixel alpha expressions over the clip-local (X,Y). Borders
// subtract a shifted inner mask from the outer mask; the shift re-expresses
// the inner mask in outer coordinates.

// circleClip emits a d×d clip whose alpha is opaque inside the radius-r disk.
func (b *builder) circleClip(label string, d, r int, color string, alpha float64) {
	col := FFColor(color, &alpha)
	b.emit("color=c=%s:s=%dx%d:r=%d,format=rgba,geq=r='r(X,Y)':g='g(X,Y)':b='b(X,Y)':a='if(lte((X-%d)*(X-%d)+(Y-%d)*(Y-%d),%d),255,0)'[%s]",
		col, d, d, b.fps, r, r, r, r, r*r, label)
}

// ellipseInsideExpr is the 0/1 inside test for an axis-aligned ellipse
// filling a w×h box: ((X-a)^2)*b^2 + ((Y-b)^2)*a^2 <= a^2*b^2.
func ellipseInsideExpr(w, h int) string {
	a := float64(w) / 2
	bb := float64(h) / 2
	a2 := a * a
	b2 := bb * bb
	return fmt.Sprintf("lte(((X-%s)*(X-%s))*%s+((Y-%s)*(Y-%s))*%s,%s)",
		ftoa(a), ftoa(a), ftoa(b2), ftoa(bb), ftoa(bb), ftoa(a2), ftoa(a2*b2))
}

// roundRectInsideExpr is the 0/1 inside test for a rounded w×h rectangle:
// the union of the two middle bands and the four corner disks, encoded as a
// sum of 0/1 terms compared against zero.
func roundRectInsideExpr(w, h, r int) string {
	r = max(0, min(r, min(w, h)/2))
	inXMid := fmt.Sprintf("(gte(X,%d)*lte(X,%d))", r, w-r)
	inYMid := fmt.Sprintf("(gte(Y,0)*lte(Y,%d))", h)
	inYMid2 := fmt.Sprintf("(gte(Y,%d)*lte(Y,%d))", r, h-r)
	inXFull := fmt.Sprintf("(gte(X,0)*lte(X,%d))", w)

	disk := func(cx, cy int) string {
		return fmt.Sprintf("lte((X-%d)*(X-%d)+(Y-%d)*(Y-%d),%d)", cx, cx, cy, cy, r*r)
	}
	corners := fmt.Sprintf("(%s+%s+%s+%s)", disk(r, r), disk(w-r, r), disk(r, h-r), disk(w-r, h-r))

	return fmt.Sprintf("gt((%s*%s)+(%s*%s)+%s,0)", inXMid, inYMid, inYMid2, inXFull, corners)
}

// shiftExpr re-expresses a clip-local mask in coordinates offset by off.
func shiftExpr(expr string, off int) string {
	expr = strings.ReplaceAll(expr, "X", fmt.Sprintf("(X-%d)", off))
	return strings.ReplaceAll(expr, "Y", fmt.Sprintf("(Y-%d)", off))
}

// rectangleClip emits a w×h clip with a rounded-rectangle fill or border.
// innerOffset shrinks the inner mask by that many pixels per side; with
// onlyBorder the alpha is outer && !inner.
func (b *builder) rectangleClip(label string, w, h int, color string, alpha float64, radius, innerOffset int, onlyBorder bool) {
	col := FFColor(color, &alpha)
	r := max(0, radius)
	off := max(0, innerOffset)
	wIn := max(1, w-2*off)
	hIn := max(1, h-2*off)
	rIn := max(0, min(r-off, min(wIn, hIn)/2))

	outer := roundRectInsideExpr(w, h, r)
	inner := roundRectInsideExpr(wIn, hIn, rIn)

	var mask string
	switch {
	case onlyBorder && off > 0:
		mask = fmt.Sprintf("((%s)*(1-(%s)))", outer, shiftExpr(inner, off))
	case off > 0:
		mask = fmt.Sprintf("(%s)", shiftExpr(inner, off))
	default:
		mask = fmt.Sprintf("(%s)", outer)
	}

	b.emit("color=c=%s:s=%dx%d:r=%d,format=rgba,geq=r='r(X,Y)':g='g(X,Y)':b='b(X,Y)':a='if(%s,255,0)'[%s]",
		col, w, h, b.fps, mask, label)
}

// ellipseClip emits a w×h clip with an ellipse fill or border, same
// inner-offset scheme as rectangleClip.
func (b *builder) ellipseClip(label string, w, h int, color string, alpha float64, innerOffset int, onlyBorder bool) {
	col := FFColor(color, &alpha)
	off := max(0, innerOffset)

	outer := ellipseInsideExpr(w, h)
	inner := outer
	if off > 0 {
		inner = shiftExpr(ellipseInsideExpr(max(1, w-2*off), max(1, h-2*off)), off)
	}

	var mask string
	if onlyBorder && off > 0 {
		mask = fmt.Sprintf("((%s)*(1-(%s)))", outer, inner)
	} else {
		mask = fmt.Sprintf("(%s)", inner)
	}

	b.emit("color=c=%s:s=%dx%d:r=%d,format=rgba,geq=r='r(X,Y)':g='g(X,Y)':b='b(X,Y)':a='if(%s,255,0)'[%s]",
		col, w, h, b.fps, mask, label)
}

type vertex struct{ x, y int }

// triVertices returns the outer vertices for a cardinal-direction triangle
// filling a w×h box.
func triVertices(w, h int, direction string) [3]vertex {
	switch direction {
	case "down":
		return [3]vertex{{0, 0}, {w, 0}, {w / 2, h}}
	case "left":
		return [3]vertex{{0, h / 2}, {w, 0}, {w, h}}
	case "right":
		return [3]vertex{{0, 0}, {w, h / 2}, {0, h}}
	default: // up
		return [3]vertex{{w / 2, 0}, {0, h}, {w, h}}
	}
}

// triInsideExpr is the same-sign barycentric inside test: all three edge
// cross products non-negative, or all non-positive.
func triInsideExpr(v [3]vertex) string {
	s1 := fmt.Sprintf("((X-%d)*(%d)-(Y-%d)*(%d))", v[2].x, v[1].y-v[2].y, v[2].y, v[1].x-v[2].x)
	s2 := fmt.Sprintf("((X-%d)*(%d)-(Y-%d)*(%d))", v[0].x, v[2].y-v[0].y, v[0].y, v[2].x-v[0].x)
	s3 := fmt.Sprintf("((X-%d)*(%d)-(Y-%d)*(%d))", v[1].x, v[0].y-v[1].y, v[1].y, v[0].x-v[1].x)

	pos := fmt.Sprintf("(gte(%s,0)*gte(%s,0)*gte(%s,0))", s1, s2, s3)
	neg := fmt.Sprintf("(lte(%s,0)*lte(%s,0)*lte(%s,0))", s1, s2, s3)
	return fmt.Sprintf("gt(%s+%s,0)", pos, neg)
}

// triInnerVertices approximates an inward offset for cardinal triangles.
func triInnerVertices(w, h, off int, direction string) [3]vertex {
	switch direction {
	case "down":
		return [3]vertex{{off, off}, {w - off, off}, {w / 2, h - off}}
	case "left":
		return [3]vertex{{off, h / 2}, {w - off, off}, {w - off, h - off}}
	case "right":
		return [3]vertex{{off, off}, {w - off, h / 2}, {off, h - off}}
	default: // up
		return [3]vertex{{w / 2, off}, {off, h - off}, {w - off, h - off}}
	}
}

// triangleClip emits a w×h clip with a triangle fill or border.
func (b *builder) triangleClip(label string, w, h int, color string, alpha float64, direction string, innerOffset int, onlyBorder bool) {
	col := FFColor(color, &alpha)
	outer := triInsideExpr(triVertices(w, h, direction))
	inner := outer
	if innerOffset > 0 {
		inner = triInsideExpr(triInnerVertices(w, h, innerOffset, direction))
	}

	var mask string
	if onlyBorder && innerOffset > 0 {
		mask = fmt.Sprintf("((%s)*(1-(%s)))", outer, inner)
	} else {
		mask = fmt.Sprintf("(%s)", inner)
	}

	b.emit("color=c=%s:s=%dx%d:r=%d,format=rgba,geq=r='r(X,Y)':g='g(X,Y)':b='b(X,Y)':a='if(%s,255,0)'[%s]",
		col, w, h, b.fps, mask, label)
}
