// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rgbFuncRe = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)

// parseHexColor accepts #rgb, #rgba, #rrggbb, and #rrggbbaa.
func parseHexColor(s string) (string, *float64, bool) {
	hs := strings.TrimSpace(s)
	if !strings.HasPrefix(hs, "#") {
		return "", nil, false
	}
	hs = hs[1:]
	if len(hs) == 3 || len(hs) == 4 {
		var expanded strings.Builder
		for _, c := range hs {
			expanded.WriteRune(c)
			expanded.WriteRune(c)
		}
		hs = expanded.String()
	}
	switch len(hs) {
	case 6:
		if _, err := strconv.ParseUint(hs, 16, 32); err != nil {
			return "", nil, false
		}
		return "0x" + strings.ToUpper(hs), nil, true
	case 8:
		if _, err := strconv.ParseUint(hs, 16, 64); err != nil {
			return "", nil, false
		}
		av, err := strconv.ParseUint(hs[6:8], 16, 16)
		if err != nil {
			return "", nil, false
		}
		a := float64(av) / 255.0
		return "0x" + strings.ToUpper(hs[:6]), &a, true
	default:
		return "", nil, false
	}
}

// parseRGBFunc accepts rgb(r,g,b) and rgba(r,g,b,a).
func parseRGBFunc(s string) (string, *float64, bool) {
	m := rgbFuncRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", nil, false
	}
	comp := func(v string) int {
		n, _ := strconv.Atoi(v)
		return max(0, min(255, n))
	}
	rgb := fmt.Sprintf("0x%02X%02X%02X", comp(m[1]), comp(m[2]), comp(m[3]))
	if m[4] == "" {
		return rgb, nil, true
	}
	a, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return rgb, nil, true
	}
	return rgb, &a, true
}

// parseEngineToken accepts the canonical forms this package emits:
// 0xRRGGBB and 0xRRGGBB@A.AAA.
func parseEngineToken(s string) (string, *float64, bool) {
	ts := strings.TrimSpace(s)
	body, alphaPart, hasAlpha := strings.Cut(ts, "@")
	if !strings.HasPrefix(strings.ToLower(body), "0x") || len(body) != 8 {
		return "", nil, false
	}
	if _, err := strconv.ParseUint(body[2:], 16, 32); err != nil {
		return "", nil, false
	}
	rgb := "0x" + strings.ToUpper(body[2:])
	if !hasAlpha {
		return rgb, nil, true
	}
	a, err := strconv.ParseFloat(alphaPart, 64)
	if err != nil {
		return "", nil, false
	}
	return rgb, &a, true
}

// ParseColor normalizes a CSS-like color to its RGB token and optional alpha.
// The second return is nil when no alpha was specified.
func ParseColor(s string) (string, *float64, bool) {
	if rgb, a, ok := parseHexColor(s); ok {
		return rgb, a, true
	}
	if rgb, a, ok := parseRGBFunc(s); ok {
		return rgb, a, true
	}
	return parseEngineToken(s)
}

// FFColor normalizes a CSS-like color to an engine color token:
// 0xRRGGBB, 0xRRGGBB@A.AAA, or a named color optionally suffixed with @A.
// An explicit alphaOverride replaces any parsed alpha. Unparseable input
// passes through as a name so the engine's own fallback applies; empty input
// falls back to white.
func FFColor(c string, alphaOverride *float64) string {
	c = strings.TrimSpace(c)
	if c == "" {
		c = "white"
	}

	rgb, a, ok := ParseColor(c)
	if ok {
		if alphaOverride != nil {
			v := clamp01(*alphaOverride)
			a = &v
		}
		if a != nil {
			return rgb + "@" + f3(*a)
		}
		return rgb
	}

	if alphaOverride != nil {
		return c + "@" + f3(clamp01(*alphaOverride))
	}
	return c
}

// escText escapes the characters that terminate or quote drawtext values.
func escText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}
