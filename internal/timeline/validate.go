// SPDX-License-Identifier: MIT

package timeline

import (
	"errors"
	"fmt"
)

// MinCanvas is the smallest accepted canvas edge in pixels.
const MinCanvas = 16

// ValidationError reports a schema or invariant violation at field
// granularity. It is non-retriable.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func fieldErr(id, field, format string, args ...any) error {
	f := field
	if id != "" {
		f = fmt.Sprintf("track %q %s", id, field)
	}
	return &ValidationError{Field: f, Msg: fmt.Sprintf(format, args...)}
}

func (tl *Timeline) validate() error {
	if tl.Width < MinCanvas || tl.Height < MinCanvas {
		return &ValidationError{Field: "width/height", Msg: fmt.Sprintf("canvas must be at least %dx%d", MinCanvas, MinCanvas)}
	}
	if tl.FPS < 1 {
		return &ValidationError{Field: "fps", Msg: "must be a positive integer"}
	}
	if tl.Duration < 0 {
		return &ValidationError{Field: "duration", Msg: "must be non-negative"}
	}
	if tl.BackgroundOpacity < 0 || tl.BackgroundOpacity > 1 {
		return &ValidationError{Field: "backgroundOpacity", Msg: "must be in [0,1]"}
	}
	switch tl.BackgroundFit {
	case "cover", "contain", "stretch":
	default:
		return &ValidationError{Field: "backgroundFit", Msg: fmt.Sprintf("unknown fit %q", tl.BackgroundFit)}
	}

	for _, track := range tl.Tracks {
		if err := validateTrack(track, tl.Duration); err != nil {
			return err
		}
	}
	return nil
}

func validateTrack(track Track, duration float64) error {
	info := track.Info()
	id := info.ID
	if id == "" {
		return &ValidationError{Field: "id", Msg: "track id is required"}
	}
	if info.Start < 0 || info.End < 0 {
		return fieldErr(id, "start/end", "must be non-negative")
	}
	if info.End < info.Start {
		return fieldErr(id, "end", "must be >= start")
	}
	if duration > 0 && (info.Start > duration || info.End > duration) {
		return fieldErr(id, "end", "exceeds timeline duration (%gs)", duration)
	}

	switch t := track.(type) {
	case *Video:
		if t.Src == "" {
			return fieldErr(id, "src", "is required")
		}
		if err := validateVolume(id, t.Volume); err != nil {
			return err
		}
		if err := validateCut(id, t.SrcIn, t.SrcOut); err != nil {
			return err
		}
	case *Audio:
		if t.Src == "" {
			return fieldErr(id, "src", "is required")
		}
		if err := validateVolume(id, t.Volume); err != nil {
			return err
		}
		if err := validateCut(id, t.SrcIn, t.SrcOut); err != nil {
			return err
		}
	case *Image:
		if t.Src == "" {
			return fieldErr(id, "src", "is required")
		}
	case *Text:
		if t.FontSize < 1 {
			return fieldErr(id, "fontSize", "must be positive")
		}
	case *DateTime:
		if t.FontSize < 1 {
			return fieldErr(id, "fontSize", "must be positive")
		}
	case *Circle:
		if t.Radius < 0.5 {
			return fieldErr(id, "radius", "must be at least 0.5")
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Triangle:
		if err := validateBox(id, t.Width, t.Height); err != nil {
			return err
		}
		switch t.Direction {
		case "up", "down", "left", "right":
		default:
			return fieldErr(id, "direction", "unknown direction %q", t.Direction)
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Rectangle:
		if err := validateBox(id, t.Width, t.Height); err != nil {
			return err
		}
		if t.BorderRadius < 0 {
			return fieldErr(id, "borderRadius", "must be non-negative")
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Line:
		if t.Length < 1 {
			return fieldErr(id, "length", "must be at least 1")
		}
		if t.Thickness < 1 {
			return fieldErr(id, "thickness", "must be at least 1")
		}
		if t.Color == "" {
			return fieldErr(id, "color", "is required")
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Ellipse:
		if err := validateBox(id, t.Width, t.Height); err != nil {
			return err
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Sign:
		if err := validateBox(id, t.Width, t.Height); err != nil {
			return err
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
	case *Weather:
		if err := validateBox(id, t.Width, t.Height); err != nil {
			return err
		}
		if err := validateOpacity(id, t.Opacity); err != nil {
			return err
		}
		for key, box := range t.Layout {
			if box.Width < 1 || box.Height < 1 {
				return fieldErr(id, "layout."+key, "box must have positive size")
			}
		}
	}
	return nil
}

func validateVolume(id string, v float64) error {
	if v < 0 || v > 1 {
		return fieldErr(id, "volume", "must be in [0,1]")
	}
	return nil
}

func validateOpacity(id string, v float64) error {
	if v < 0 || v > 1 {
		return fieldErr(id, "opacity", "must be in [0,1]")
	}
	return nil
}

func validateBox(id string, w, h float64) error {
	if w < 1 || h < 1 {
		return fieldErr(id, "width/height", "must be at least 1")
	}
	return nil
}

func validateCut(id string, in, out *float64) error {
	if in != nil && *in < 0 {
		return fieldErr(id, "srcIn", "must be non-negative")
	}
	if out != nil && *out < 0 {
		return fieldErr(id, "srcOut", "must be non-negative")
	}
	if in != nil && out != nil && *out <= *in {
		return fieldErr(id, "srcOut", "must be greater than srcIn")
	}
	return nil
}
