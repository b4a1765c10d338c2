// SPDX-License-Identifier: MIT

package fgraph

import (
	"fmt"
	"os"
	"strings"
)

// fontFallbacks are probed in order when a track names no usable fontPath.
// Overridable for tests.
var fontFallbacks = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// AddFontFallbacks prepends configured font files to the fallback chain so
// they win over the built-in system locations. Call before building graphs.
func AddFontFallbacks(paths ...string) {
	if len(paths) == 0 {
		return
	}
	fontFallbacks = append(append([]string{}, paths...), fontFallbacks...)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func escFontPath(p string) string {
	p = strings.ReplaceAll(p, ":", `\:`)
	return strings.ReplaceAll(p, "'", `\'`)
}

// fontOption selects the drawtext font argument: an explicit fontPath when it
// exists, then a well-known system font file, then the family name as a hint.
func fontOption(fontPath, fontFamily string) string {
	if fontPath != "" && isFile(fontPath) {
		return fmt.Sprintf("fontfile='%s'", escFontPath(fontPath))
	}
	for _, candidate := range fontFallbacks {
		if isFile(candidate) {
			return fmt.Sprintf("fontfile='%s'", escFontPath(candidate))
		}
	}
	if fontFamily == "" {
		fontFamily = "Arial"
	}
	return fmt.Sprintf("font='%s'", fontFamily)
}
