// SPDX-License-Identifier: MIT

package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	tl, err := Decode([]byte(`{"width":1920,"height":1080}`))
	require.NoError(t, err)

	assert.Equal(t, 30, tl.FPS)
	assert.Equal(t, 1.0, tl.BackgroundOpacity)
	assert.Equal(t, "cover", tl.BackgroundFit)
	assert.Empty(t, tl.Tracks)
	assert.Equal(t, "landscape", tl.Orientation())
}

func TestDecode_ExplicitValuesOverrideDefaults(t *testing.T) {
	tl, err := Decode([]byte(`{
		"width": 720, "height": 1280, "fps": 25, "duration": 12.5,
		"background": "#112233", "backgroundOpacity": 0.5, "backgroundFit": "contain"
	}`))
	require.NoError(t, err)

	assert.Equal(t, 25, tl.FPS)
	assert.Equal(t, 12.5, tl.Duration)
	assert.Equal(t, 0.5, tl.BackgroundOpacity)
	assert.Equal(t, "contain", tl.BackgroundFit)
	assert.Equal(t, "portrait", tl.Orientation())
}

func TestDecode_TrackDefaults(t *testing.T) {
	tl, err := Decode([]byte(`{
		"width": 640, "height": 480, "duration": 10,
		"tracks": [
			{"id": "v1", "type": "video", "src": "a.mp4", "end": 10},
			{"id": "t1", "type": "text", "text": "hi", "end": 10},
			{"id": "c1", "type": "circle", "radius": 10, "end": 10},
			{"id": "w1", "type": "weather", "width": 200, "height": 100, "end": 10}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, tl.Tracks, 4)

	video := tl.Tracks[0].(*Video)
	assert.Equal(t, 1.0, video.Volume)
	assert.Equal(t, 1.0, video.PlaybackRate)
	assert.Equal(t, KindVideo, video.Kind)

	text := tl.Tracks[1].(*Text)
	assert.Equal(t, 48, text.FontSize)
	assert.Equal(t, "left", text.Align)
	assert.Equal(t, 6, text.Padding)

	circle := tl.Tracks[2].(*Circle)
	assert.Equal(t, 1.0, circle.Opacity)

	weather := tl.Tracks[3].(*Weather)
	assert.Equal(t, "metric", weather.Units)
	assert.Equal(t, "en", weather.Language)
	assert.Equal(t, "left", weather.HorizontalAlign)
	assert.Equal(t, "top", weather.VerticalAlign)
	assert.Equal(t, 48, weather.IconSize)
	assert.True(t, weather.Show.Location)
}

func TestDecode_EnableFlagCarried(t *testing.T) {
	tl, err := Decode([]byte(`{
		"width": 640, "height": 480, "duration": 10,
		"tracks": [
			{"id": "a", "type": "text", "text": "x", "end": 10, "enable": false},
			{"id": "b", "type": "text", "text": "y", "end": 10}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, tl.Tracks, 2)

	a := tl.Tracks[0].(*Text)
	require.NotNil(t, a.Enable)
	assert.False(t, *a.Enable)
	assert.Nil(t, tl.Tracks[1].(*Text).Enable)
}

func TestDecode_UnknownTrackType(t *testing.T) {
	_, err := Decode([]byte(`{
		"width": 640, "height": 480,
		"tracks": [{"id": "x", "type": "hologram"}]
	}`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "hologram")
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"width":`))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	tl, err := Decode([]byte(`{
		"width": 640, "height": 480, "futureFlag": true,
		"tracks": [{"id": "t", "type": "text", "text": "x", "sparkle": 1}]
	}`))
	require.NoError(t, err)
	assert.Len(t, tl.Tracks, 1)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "canvas too small",
			doc:  `{"width": 8, "height": 1080}`,
			want: "canvas",
		},
		{
			name: "zero fps",
			doc:  `{"width": 640, "height": 480, "fps": 0}`,
			want: "fps",
		},
		{
			name: "negative duration",
			doc:  `{"width": 640, "height": 480, "duration": -1}`,
			want: "duration",
		},
		{
			name: "background opacity out of range",
			doc:  `{"width": 640, "height": 480, "backgroundOpacity": 1.5}`,
			want: "backgroundOpacity",
		},
		{
			name: "unknown background fit",
			doc:  `{"width": 640, "height": 480, "backgroundFit": "tile"}`,
			want: "backgroundFit",
		},
		{
			name: "missing track id",
			doc:  `{"width": 640, "height": 480, "tracks": [{"type": "text", "text": "x"}]}`,
			want: "id",
		},
		{
			name: "end before start",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "t", "type": "text", "text": "x", "start": 5, "end": 2}]}`,
			want: "end",
		},
		{
			name: "window past duration",
			doc:  `{"width": 640, "height": 480, "duration": 5, "tracks": [{"id": "t", "type": "text", "text": "x", "end": 9}]}`,
			want: "exceeds",
		},
		{
			name: "video without src",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "v", "type": "video"}]}`,
			want: "src",
		},
		{
			name: "volume out of range",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "v", "type": "video", "src": "a.mp4", "volume": 2}]}`,
			want: "volume",
		},
		{
			name: "srcOut before srcIn",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "v", "type": "video", "src": "a.mp4", "srcIn": 5, "srcOut": 2}]}`,
			want: "srcOut",
		},
		{
			name: "tiny circle",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "c", "type": "circle", "radius": 0.1}]}`,
			want: "radius",
		},
		{
			name: "bad triangle direction",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "t", "type": "triangle", "width": 10, "height": 10, "direction": "sideways"}]}`,
			want: "direction",
		},
		{
			name: "negative border radius",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "r", "type": "rectangle", "width": 10, "height": 10, "borderRadius": -2}]}`,
			want: "borderRadius",
		},
		{
			name: "line without color",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "l", "type": "line", "length": 10, "thickness": 2}]}`,
			want: "color",
		},
		{
			name: "degenerate weather layout box",
			doc:  `{"width": 640, "height": 480, "tracks": [{"id": "w", "type": "weather", "width": 200, "height": 100, "layout": {"icon": {"x": 0, "y": 0, "width": 0, "height": 10}}}]}`,
			want: "layout.icon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected a validation error, got %T", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ZeroDurationAllowsAnyWindow(t *testing.T) {
	// Duration 0 means a still; windows are not bounded by it.
	_, err := Decode([]byte(`{
		"width": 640, "height": 480, "duration": 0,
		"tracks": [{"id": "t", "type": "text", "text": "x", "end": 99}]
	}`))
	assert.NoError(t, err)
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Field: "fps", Msg: "must be a positive integer"}
	assert.Equal(t, "fps: must be a positive integer", err.Error())

	bare := &ValidationError{Msg: "broken"}
	assert.Equal(t, "broken", bare.Error())
}
