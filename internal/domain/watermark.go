package domain

import "image"

// ShadowEffect - пресет интенсивности тени
type ShadowEffect string

const (
	ShadowNone   ShadowEffect = "none"
	ShadowLight  ShadowEffect = "light"
	ShadowMedium ShadowEffect = "medium"
	ShadowStrong ShadowEffect = "strong"
)

// TextAlign - выравнивание строк внутри блока
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Position - точка привязки водяного знака
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenter      Position = "center"
)

// OutputFormat - формат итогового файла
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatWebP OutputFormat = "webp"
)

// OutputExtensions maps an output format to the file extension it is written with.
var OutputExtensions = map[OutputFormat]string{
	FormatJPEG: ".jpg",
	FormatPNG:  ".png",
	FormatWebP: ".webp",
}

// Extension returns the file extension for the format, ".jpg" when unknown.
func (f OutputFormat) Extension() string {
	if ext, ok := OutputExtensions[f]; ok {
		return ext
	}
	return ".jpg"
}

const (
	DefaultColor         = "#FFFFFF"
	DefaultOpacity       = 0.85
	DefaultShadowColor   = "rgba(0,0,0,0.6)"
	DefaultStrokeColor   = "#000000"
	DefaultOutputQuality = 92
)

// WatermarkConfig - полный набор параметров отрисовки.
// Every field has a default, so a partial config is valid after WithDefaults.
type WatermarkConfig struct {
	Color        string       `json:"watermark_color,omitempty" validate:"omitempty,max=32,css_color"`
	Opacity      *float64     `json:"watermark_opacity,omitempty" validate:"omitempty,gte=0,lte=1"`
	ShadowColor  string       `json:"shadow_color,omitempty" validate:"omitempty,max=32,css_color"`
	ShadowEffect ShadowEffect `json:"shadow_effect,omitempty" validate:"omitempty,oneof=none light medium strong"`
	StrokeWidth  *int         `json:"stroke_width,omitempty" validate:"omitempty,gte=0,lte=64"`
	StrokeColor  string       `json:"stroke_color,omitempty" validate:"omitempty,max=32,css_color"`
	FontFamily   string       `json:"font_family,omitempty" validate:"omitempty,max=128"`
	FontSize     int          `json:"font_size,omitempty" validate:"omitempty,gte=1,lte=2000"`
	FontBold     bool         `json:"font_bold,omitempty"`
	FontItalic   bool         `json:"font_italic,omitempty"`
	TextAlign    TextAlign    `json:"text_align,omitempty" validate:"omitempty,oneof=left center right"`
	Position     Position     `json:"watermark_position,omitempty" validate:"omitempty,oneof=top-left top-right bottom-left bottom-right center"`
	OutputFormat OutputFormat `json:"output_format,omitempty" validate:"omitempty,oneof=jpeg png webp"`
	Quality      int          `json:"output_quality,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// WithDefaults returns a copy with every unset field filled in. StrokeWidth and
// FontSize stay unset: their defaults depend on the image size.
func (c WatermarkConfig) WithDefaults() WatermarkConfig {
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if c.Opacity == nil {
		v := DefaultOpacity
		c.Opacity = &v
	}
	if c.ShadowColor == "" {
		c.ShadowColor = DefaultShadowColor
	}
	if c.ShadowEffect == "" {
		c.ShadowEffect = ShadowMedium
	}
	if c.StrokeColor == "" {
		c.StrokeColor = DefaultStrokeColor
	}
	if c.TextAlign == "" {
		c.TextAlign = AlignLeft
	}
	if c.Position == "" {
		c.Position = PositionBottomRight
	}
	if c.OutputFormat == "" {
		c.OutputFormat = FormatJPEG
	}
	if c.Quality == 0 {
		c.Quality = DefaultOutputQuality
	}
	return c
}

// CompositeInstruction - слой для наложения на исходное изображение
type CompositeInstruction struct {
	Layer *image.NRGBA
	Top   int
	Left  int
}
