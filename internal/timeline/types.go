// SPDX-License-Identifier: MIT

// Package timeline defines the declarative render timeline: a canvas plus
// z-ordered tracks of media, text, and vector primitives. It owns decoding
// from JSON, per-variant validation, and default normalization so later
// stages consume a fully typed value.
package timeline

// Kind identifies a track variant.
type Kind string

// Track kinds accepted on the wire.
const (
	KindVideo     Kind = "video"
	KindAudio     Kind = "audio"
	KindImage     Kind = "image"
	KindText      Kind = "text"
	KindDateTime  Kind = "datetime"
	KindCircle    Kind = "circle"
	KindTriangle  Kind = "triangle"
	KindRectangle Kind = "rectangle"
	KindLine      Kind = "line"
	KindEllipse   Kind = "ellipse"
	KindSign      Kind = "sign"
	KindWeather   Kind = "weather"
)

// Timeline is the root of a render request.
type Timeline struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      int     `json:"fps"`
	Duration float64 `json:"duration"`
	Name     string  `json:"name"`

	Background        string  `json:"background"`
	BackgroundImage   string  `json:"backgroundImage"`
	BackgroundOpacity float64 `json:"backgroundOpacity"`
	BackgroundFit     string  `json:"backgroundFit"`

	Tracks []Track `json:"-"`
}

// Orientation derives the artifact orientation from the canvas.
func (tl *Timeline) Orientation() string {
	if tl.Width >= tl.Height {
		return "landscape"
	}
	return "portrait"
}

// TrackInfo carries the fields common to every track variant. Enable is
// accepted for forward compatibility with editor payloads; emission is
// governed by the start/end window alone.
type TrackInfo struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"type"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Z      int     `json:"z"`
	Enable *bool   `json:"enable"`
}

// Info exposes the common fields; every variant embeds TrackInfo.
func (t *TrackInfo) Info() *TrackInfo { return t }

// Track is the tagged sum over all variants.
type Track interface {
	Info() *TrackInfo
}

// MediaTrack is implemented by tracks that reference an external source and
// therefore occupy an engine input slot.
type MediaTrack interface {
	Track
	Source() string
	SetSource(string)
}

// Video places a scaled, optionally trimmed video on the canvas.
type Video struct {
	TrackInfo
	Src          string   `json:"src"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	W            float64  `json:"w"`
	H            float64  `json:"h"`
	Volume       float64  `json:"volume"`
	Muted        bool     `json:"muted"`
	PlaybackRate float64  `json:"playbackRate"`
	SrcIn        *float64 `json:"srcIn"`
	SrcOut       *float64 `json:"srcOut"`
}

func (t *Video) Source() string     { return t.Src }
func (t *Video) SetSource(s string) { t.Src = s }

// Audio contributes to the mix without any visible output.
type Audio struct {
	TrackInfo
	Src    string   `json:"src"`
	Volume float64  `json:"volume"`
	Muted  bool     `json:"muted"`
	GainDB float64  `json:"gainDb"`
	SrcIn  *float64 `json:"srcIn"`
	SrcOut *float64 `json:"srcOut"`
}

func (t *Audio) Source() string     { return t.Src }
func (t *Audio) SetSource(s string) { t.Src = s }

// Image places a scaled still, looped for the timeline duration.
type Image struct {
	TrackInfo
	Src string  `json:"src"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	W   float64 `json:"w"`
	H   float64 `json:"h"`
}

func (t *Image) Source() string     { return t.Src }
func (t *Image) SetSource(s string) { t.Src = s }

// TextAttrs is the field group shared by text-like tracks.
type TextAttrs struct {
	Text        string  `json:"text"`
	FontFamily  string  `json:"fontFamily"`
	FontPath    string  `json:"fontPath"`
	FontSize    int     `json:"fontSize"`
	Color       string  `json:"color"`
	Align       string  `json:"align"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	ShadowColor string  `json:"shadowColor"`
	ShadowBlur  float64 `json:"shadowBlur"`
	BGColor     string  `json:"bgColor"`
	Padding     int     `json:"padding"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Text draws a literal string.
type Text struct {
	TrackInfo
	TextAttrs
}

// DateTime draws a clock. Live tracks substitute a per-frame time expression
// for the literal text; UseUTC switches from server-local time to UTC.
type DateTime struct {
	TrackInfo
	TextAttrs
	IsLive     bool    `json:"isLive"`
	UseUTC     bool    `json:"useUTC"`
	Format     string  `json:"ffFormat"`
	OffsetDays float64 `json:"offsetDays"`
}

// Circle is centered at (X, Y).
type Circle struct {
	TrackInfo
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       float64 `json:"radius"`
	Fill         string  `json:"fill"`
	Outline      string  `json:"outline"`
	OutlineWidth float64 `json:"outlineWidth"`
	Opacity      float64 `json:"opacity"`
}

// Triangle fills a bounding box pointing in a cardinal direction.
type Triangle struct {
	TrackInfo
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Direction    string  `json:"direction"`
	Fill         string  `json:"fill"`
	Color        string  `json:"color"`
	Outline      string  `json:"outline"`
	OutlineWidth float64 `json:"outlineWidth"`
	Opacity      float64 `json:"opacity"`
}

// Rectangle is positioned by its top-left corner.
type Rectangle struct {
	TrackInfo
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	BorderRadius float64 `json:"borderRadius"`
	Fill         string  `json:"fill"`
	Color        string  `json:"color"`
	Outline      string  `json:"outline"`
	OutlineWidth float64 `json:"outlineWidth"`
	Opacity      float64 `json:"opacity"`
}

// Line starts at anchor (X, Y) and extends Length pixels at Rotation degrees.
type Line struct {
	TrackInfo
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Length    float64 `json:"length"`
	Thickness float64 `json:"thickness"`
	Rotation  float64 `json:"rotation"`
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
}

// Ellipse fills a bounding box positioned by its top-left corner.
type Ellipse struct {
	TrackInfo
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Fill         string  `json:"fill"`
	Color        string  `json:"color"`
	Outline      string  `json:"outline"`
	OutlineWidth float64 `json:"outlineWidth"`
	Opacity      float64 `json:"opacity"`
}

// SignComponents toggles the parts of a sign panel.
type SignComponents struct {
	Text       bool `json:"text"`
	Icon       bool `json:"icon"`
	Arrow      bool `json:"arrow"`
	Symbol     bool `json:"symbol"`
	Background bool `json:"background"`
	Border     bool `json:"border"`
}

// SignColors carries per-part colors; empty means the part default.
type SignColors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Highlight  string `json:"highlight"`
	Border     string `json:"border"`
	Icon       string `json:"icon"`
	Arrow      string `json:"arrow"`
	Symbol     string `json:"symbol"`
}

// SignFontSizes carries per-part font sizes; zero means auto from panel height.
type SignFontSizes struct {
	Text   int `json:"text"`
	Symbol int `json:"symbol"`
}

// ImageSettings configures an optional embedded image on a composite panel.
type ImageSettings struct {
	URL                 string   `json:"url"`
	Width               int      `json:"width"`
	Height              int      `json:"height"`
	BorderRadius        int      `json:"borderRadius"`
	BorderWidth         int      `json:"borderWidth"`
	BorderColor         string   `json:"borderColor"`
	MaintainAspectRatio bool     `json:"maintainAspectRatio"`
	Opacity             *float64 `json:"opacity"`
}

// Sign is a rotatable panel composed of background, border, icon, arrow,
// and a centered symbol/text stack.
type Sign struct {
	TrackInfo
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`

	Text         string `json:"text"`
	SymbolType   string `json:"symbolType"`
	CustomSymbol string `json:"customSymbol"`
	FontFamily   string `json:"fontFamily"`
	FontPath     string `json:"fontPath"`

	Show      SignComponents `json:"showComponents"`
	Colors    SignColors     `json:"colors"`
	FontSizes SignFontSizes  `json:"fontSizes"`
	IconSize  int            `json:"iconSize"`
	Image     *ImageSettings `json:"image"`
}

// WeatherComponents toggles the parts of a weather panel.
type WeatherComponents struct {
	Summary       bool `json:"summary"`
	Temperature   bool `json:"temperature"`
	MaxTemp       bool `json:"maxTemp"`
	MinTemp       bool `json:"minTemp"`
	Humidity      bool `json:"humidity"`
	WindSpeed     bool `json:"windSpeed"`
	WindDirection bool `json:"windDirection"`
	Icon          bool `json:"icon"`
	Date          bool `json:"date"`
	Attribution   bool `json:"attribution"`
	Image         bool `json:"image"`
	Location      bool `json:"location"`
}

// WeatherColors carries per-part colors; empty means the part default.
type WeatherColors struct {
	Background    string `json:"background"`
	Text          string `json:"text"`
	Highlight     string `json:"highlight"`
	Border        string `json:"border"`
	Temperature   string `json:"temperature"`
	MaxTemp       string `json:"maxTemp"`
	MinTemp       string `json:"minTemp"`
	Humidity      string `json:"humidity"`
	WindSpeed     string `json:"windSpeed"`
	WindDirection string `json:"windDirection"`
	IconBG        string `json:"iconBg"`
	Date          string `json:"date"`
	Attribution   string `json:"attribution"`
	ImageBorder   string `json:"imageBorder"`
}

// WeatherFontSizes carries per-part font sizes; zero means auto.
type WeatherFontSizes struct {
	Location      int `json:"location"`
	Summary       int `json:"summary"`
	Temperature   int `json:"temperature"`
	MaxTemp       int `json:"maxTemp"`
	MinTemp       int `json:"minTemp"`
	Humidity      int `json:"humidity"`
	WindSpeed     int `json:"windSpeed"`
	WindDirection int `json:"windDirection"`
	Date          int `json:"date"`
	Attribution   int `json:"attribution"`
}

// LayoutBox is an absolute placement box for one weather panel part, either
// panel-local or screen-space (auto-converted during emission).
type LayoutBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WeatherData is the pre-fetched observation block rendered on the panel.
type WeatherData struct {
	Summary         string   `json:"summary"`
	Icon            string   `json:"icon"`
	Temperature     *float64 `json:"temperature"`
	MaxTemp         *float64 `json:"maxTemp"`
	MinTemp         *float64 `json:"minTemp"`
	Humidity        *float64 `json:"humidity"`
	WindSpeed       *float64 `json:"windSpeed"`
	WindDirection   string   `json:"windDirection"`
	DateText        string   `json:"dateText"`
	AttributionText string   `json:"attributionText"`
}

// Weather is a panel showing a pre-fetched weather observation.
type Weather struct {
	TrackInfo
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`

	Location        string   `json:"location"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
	Units           string   `json:"units"`
	Language        string   `json:"language"`
	ShowDaytimeOnly bool     `json:"showDaytimeOnly"`
	HorizontalAlign string   `json:"horizontalAlign"`
	VerticalAlign   string   `json:"verticalAlign"`
	Name            string   `json:"name"`
	FontFamily      string   `json:"fontFamily"`
	FontPath        string   `json:"fontPath"`

	Show      WeatherComponents    `json:"showComponents"`
	Colors    WeatherColors        `json:"colors"`
	FontSizes WeatherFontSizes     `json:"fontSizes"`
	IconSize  int                  `json:"iconSize"`
	Image     *ImageSettings       `json:"image"`
	Layout    map[string]LayoutBox `json:"layout"`
	Data      *WeatherData         `json:"data"`
}
