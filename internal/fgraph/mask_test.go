// SPDX-License-Identifier: MIT

package fgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRectInsideExpr_ZeroRadiusIsFullBox(t *testing.T) {
	expr := roundRectInsideExpr(100, 60, 0)

	// The middle bands span the whole box.
	assert.Contains(t, expr, "(gte(X,0)*lte(X,100))*(gte(Y,0)*lte(Y,60))")
	assert.Contains(t, expr, "(gte(Y,0)*lte(Y,60))*(gte(X,0)*lte(X,100))")
	// Corner disks collapse to single points (radius squared of zero).
	assert.Contains(t, expr, "lte((X-0)*(X-0)+(Y-0)*(Y-0),0)")
	assert.Contains(t, expr, "lte((X-100)*(X-100)+(Y-60)*(Y-60),0)")
	assert.NotContains(t, expr, ",900)")
}

func TestRoundRectInsideExpr_HalfMinRadiusIsStadium(t *testing.T) {
	expr := roundRectInsideExpr(100, 60, 30)

	// Bands are inset by the radius on their rounded axis.
	assert.Contains(t, expr, "(gte(X,30)*lte(X,70))")
	assert.Contains(t, expr, "(gte(Y,30)*lte(Y,30))")
	// Corner disks carry r^2 = 900 and sit on the band edges.
	assert.Contains(t, expr, "lte((X-30)*(X-30)+(Y-30)*(Y-30),900)")
	assert.Contains(t, expr, "lte((X-70)*(X-70)+(Y-30)*(Y-30),900)")
}

func TestRoundRectInsideExpr_RadiusClampsToHalfMin(t *testing.T) {
	assert.Equal(t, roundRectInsideExpr(100, 60, 30), roundRectInsideExpr(100, 60, 999))
	// Negative radii behave like zero.
	assert.Equal(t, roundRectInsideExpr(100, 60, 0), roundRectInsideExpr(100, 60, -5))
}

func TestRectangle_BorderRadiusInGraph(t *testing.T) {
	square := buildFC(t, `{
		"width": 640, "height": 480, "duration": 10,
		"tracks": [{"id": "r", "type": "rectangle", "x": 10, "y": 10, "width": 100, "height": 60,
		            "fill": "#00ff00", "end": 10}]
	}`)
	// No borderRadius means a plain box mask with point corners.
	assert.Contains(t, square, "(gte(X,0)*lte(X,100))*(gte(Y,0)*lte(Y,60))")
	assert.NotContains(t, square, ",900)")

	rounded := buildFC(t, `{
		"width": 640, "height": 480, "duration": 10,
		"tracks": [{"id": "r", "type": "rectangle", "x": 10, "y": 10, "width": 100, "height": 60,
		            "fill": "#00ff00", "borderRadius": 500, "end": 10}]
	}`)
	// An oversized radius clamps to min(w,h)/2 and rounds the corners.
	assert.Contains(t, rounded, "lte((X-30)*(X-30)+(Y-30)*(Y-30),900)")
	assert.Equal(t, 1, strings.Count(rounded, "geq="))
}
