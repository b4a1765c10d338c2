// SPDX-License-Identifier: MIT

package timeline

import (
	"encoding/json"
	"fmt"
)

// Decode parses a timeline JSON document, applies defaults, and validates it.
// Unknown object fields are ignored; an unknown track type is an error.
func Decode(data []byte) (*Timeline, error) {
	var raw struct {
		Width    int     `json:"width"`
		Height   int     `json:"height"`
		FPS      *int    `json:"fps"`
		Duration float64 `json:"duration"`
		Name     string  `json:"name"`

		Background        string   `json:"background"`
		BackgroundImage   string   `json:"backgroundImage"`
		BackgroundOpacity *float64 `json:"backgroundOpacity"`
		BackgroundFit     string   `json:"backgroundFit"`

		Tracks []json.RawMessage `json:"tracks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Field: "timeline", Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	tl := &Timeline{
		Width:             raw.Width,
		Height:            raw.Height,
		FPS:               30,
		Duration:          raw.Duration,
		Name:              raw.Name,
		Background:        raw.Background,
		BackgroundImage:   raw.BackgroundImage,
		BackgroundOpacity: 1.0,
		BackgroundFit:     "cover",
	}
	if raw.FPS != nil {
		tl.FPS = *raw.FPS
	}
	if raw.BackgroundOpacity != nil {
		tl.BackgroundOpacity = *raw.BackgroundOpacity
	}
	if raw.BackgroundFit != "" {
		tl.BackgroundFit = raw.BackgroundFit
	}

	for i, msg := range raw.Tracks {
		track, err := decodeTrack(msg)
		if err != nil {
			return nil, fmt.Errorf("tracks[%d]: %w", i, err)
		}
		tl.Tracks = append(tl.Tracks, track)
	}

	if err := tl.validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// decodeTrack dispatches on the "type" tag and unmarshals the matching
// variant. Defaults are seeded into the value before unmarshalling so absent
// fields keep them.
func decodeTrack(msg json.RawMessage) (Track, error) {
	var tag struct {
		Kind Kind `json:"type"`
	}
	if err := json.Unmarshal(msg, &tag); err != nil {
		return nil, &ValidationError{Field: "type", Msg: fmt.Sprintf("invalid track: %v", err)}
	}

	var track Track
	switch tag.Kind {
	case KindVideo:
		track = &Video{Volume: 1, PlaybackRate: 1}
	case KindAudio:
		track = &Audio{Volume: 1}
	case KindImage:
		track = &Image{}
	case KindText:
		track = &Text{TextAttrs: defaultTextAttrs()}
	case KindDateTime:
		track = &DateTime{TextAttrs: defaultTextAttrs()}
	case KindCircle:
		track = &Circle{Opacity: 1}
	case KindTriangle:
		track = &Triangle{Direction: "up", Opacity: 1}
	case KindRectangle:
		track = &Rectangle{Opacity: 1}
	case KindLine:
		track = &Line{Opacity: 1}
	case KindEllipse:
		track = &Ellipse{Opacity: 1}
	case KindSign:
		track = &Sign{Opacity: 1}
	case KindWeather:
		track = &Weather{
			Opacity:         1,
			Units:           "metric",
			Language:        "en",
			HorizontalAlign: "left",
			VerticalAlign:   "top",
			IconSize:        48,
			Show:            WeatherComponents{Location: true},
		}
	default:
		return nil, &ValidationError{Field: "type", Msg: fmt.Sprintf("unknown track type: %q", tag.Kind)}
	}

	if err := json.Unmarshal(msg, track); err != nil {
		return nil, &ValidationError{Field: string(tag.Kind), Msg: fmt.Sprintf("invalid %s track: %v", tag.Kind, err)}
	}
	track.Info().Kind = tag.Kind
	return track, nil
}

func defaultTextAttrs() TextAttrs {
	return TextAttrs{FontSize: 48, Align: "left", Padding: 6}
}
