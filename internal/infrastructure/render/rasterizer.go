package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/photo-watermark/internal/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Alignment of lines inside the text block.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCentre Alignment = "centre"
	AlignRight  Alignment = "right"
)

// Options selects how markup is rasterized.
type Options struct {
	Align Alignment
	// FontFile is the font to load; empty uses the embedded fallback.
	FontFile string
}

// Rasterizer turns span markup into an anti-aliased RGBA buffer sized to the text.
type Rasterizer interface {
	Rasterize(markup string, opts Options) (*image.NRGBA, error)
}

type glyphRasterizer struct {
	fonts  *fontLoader
	logger *zap.Logger
}

func NewRasterizer(logger *zap.Logger) Rasterizer {
	return &glyphRasterizer{
		fonts:  newFontLoader(logger),
		logger: logger,
	}
}

func (r *glyphRasterizer) Rasterize(markup string, opts Options) (*image.NRGBA, error) {
	m, err := ParseMarkup(markup)
	if err != nil {
		return nil, err
	}

	fg, err := utils.ParseColor(m.Foreground)
	if err != nil {
		return nil, fmt.Errorf("invalid markup: %w", err)
	}

	face, err := r.fonts.face(opts.FontFile, m.Bold, m.Italic, m.Size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lines := strings.Split(m.Text, "\n")
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	widths := make([]int, len(lines))
	blockW := 1
	for i, line := range lines {
		widths[i] = font.MeasureString(face, line).Ceil()
		if widths[i] > blockW {
			blockW = widths[i]
		}
	}
	blockH := lineHeight * len(lines)
	if blockH < 1 {
		blockH = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, blockW, blockH))
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg.Opaque()),
		Face: face,
	}

	for i, line := range lines {
		x := 0
		switch opts.Align {
		case AlignCentre:
			x = (blockW - widths[i]) / 2
		case AlignRight:
			x = blockW - widths[i]
		}
		drawer.Dot = fixed.P(x, i*lineHeight+ascent)
		drawer.DrawString(line)
	}

	return dst, nil
}
