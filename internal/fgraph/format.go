// SPDX-License-Identifier: MIT

package fgraph

import (
	"math"
	"strconv"
)

// ftoa renders a float without trailing zeros, matching the shortest
// representation that round-trips.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// f3 renders a float with exactly three decimals, the canonical precision
// for alpha factors.
func f3(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
