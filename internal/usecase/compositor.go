package usecase

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/infrastructure/render"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"go.uber.org/zap"
)

// FontResolver maps a requested family to something the rasterizer can load.
type FontResolver interface {
	ResolveFamily(ctx context.Context, name string) string
	ResolveFile(ctx context.Context, family string, bold, italic bool) string
}

// ShadowPreset - параметры тени для уровня эффекта
type ShadowPreset struct {
	Blur   float64
	Offset int
	Alpha  float64
}

// ShadowPresetFor scales the preset to the font size. Unknown effects behave as medium.
func ShadowPresetFor(effect domain.ShadowEffect, fontSize int) ShadowPreset {
	fs := float64(fontSize)
	switch effect {
	case domain.ShadowNone:
		return ShadowPreset{}
	case domain.ShadowLight:
		return ShadowPreset{
			Blur:   math.Max(fs*0.08, 1),
			Offset: max(utils.RoundHalfUp(fs*0.03), 1),
			Alpha:  0.3,
		}
	case domain.ShadowStrong:
		return ShadowPreset{
			Blur:   math.Max(fs*0.25, 2),
			Offset: max(utils.RoundHalfUp(fs*0.08), 2),
			Alpha:  0.85,
		}
	default:
		return ShadowPreset{
			Blur:   math.Max(fs*0.15, 1.5),
			Offset: max(utils.RoundHalfUp(fs*0.06), 1),
			Alpha:  0.6,
		}
	}
}

// DefaultFontSize - 2.8% of the shorter side, never below 16px.
func DefaultFontSize(width, height int) int {
	return max(utils.RoundHalfUp(float64(min(width, height))*0.028), 16)
}

// DefaultStrokeWidth - 8% of the font size, at least 1px.
func DefaultStrokeWidth(fontSize int) int {
	return max(utils.RoundHalfUp(float64(fontSize)*0.08), 1)
}

// overlayPlan holds everything derived from the config and the image size.
type overlayPlan struct {
	fontSize    int
	padding     int
	strokeWidth int
	strokePad   int
	opacity     float64
	main        utils.Color
	stroke      utils.Color
	shadow      utils.Color
	shadowOn    bool
	preset      ShadowPreset
	position    domain.Position
	align       render.Alignment
	fontDesc    string
}

// Compositor рендерит строки в слои водяного знака
type Compositor struct {
	fonts      FontResolver
	rasterizer render.Rasterizer
	logger     *zap.Logger
}

func NewCompositor(fonts FontResolver, rasterizer render.Rasterizer, logger *zap.Logger) *Compositor {
	return &Compositor{
		fonts:      fonts,
		rasterizer: rasterizer,
		logger:     logger,
	}
}

// Render returns composite instructions back to front, nil when there are no lines.
func (c *Compositor) Render(ctx context.Context, lines []string, width, height int, cfg domain.WatermarkConfig) ([]domain.CompositeInstruction, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()
	plan, err := c.plan(ctx, width, height, cfg)
	if err != nil {
		return nil, apperrors.ErrRenderFailed.Wrap(err)
	}

	family := c.fonts.ResolveFamily(ctx, cfg.FontFamily)
	plan.fontDesc = FontDescription(family, cfg.FontBold, cfg.FontItalic, plan.fontSize)
	fontFile := c.fonts.ResolveFile(ctx, family, cfg.FontBold, cfg.FontItalic)

	markup := BuildMarkup(lines, plan.main.Hex(), plan.fontDesc)
	glyphs, err := c.rasterizer.Rasterize(markup, render.Options{Align: plan.align, FontFile: fontFile})
	if err != nil {
		return nil, apperrors.ErrRenderFailed.Wrap(err)
	}

	c.logger.Debug("Watermark text rasterized",
		zap.String("font_desc", plan.fontDesc),
		zap.String("font_file", fontFile),
		zap.Int("text_width", glyphs.Bounds().Dx()),
		zap.Int("text_height", glyphs.Bounds().Dy()))

	return blendStage(
		mainStage(glyphs, plan.opacity),
		strokeStage(glyphs, plan.stroke, plan.strokeWidth),
		shadowStage(glyphs, plan.shadow, plan.preset, plan.shadowOn),
		plan, width, height,
	), nil
}

func (c *Compositor) plan(_ context.Context, width, height int, cfg domain.WatermarkConfig) (overlayPlan, error) {
	p := overlayPlan{
		fontSize: cfg.FontSize,
		opacity:  *cfg.Opacity,
		position: cfg.Position,
		align:    alignment(cfg.TextAlign),
		shadowOn: cfg.ShadowEffect != domain.ShadowNone,
	}
	if p.fontSize <= 0 {
		p.fontSize = DefaultFontSize(width, height)
	}
	p.padding = utils.RoundHalfUp(float64(p.fontSize) * 1.2)

	p.strokeWidth = DefaultStrokeWidth(p.fontSize)
	if cfg.StrokeWidth != nil {
		p.strokeWidth = max(*cfg.StrokeWidth, 0)
	}
	if p.strokeWidth > 0 {
		p.strokePad = 2 * p.strokeWidth
	}
	p.preset = ShadowPresetFor(cfg.ShadowEffect, p.fontSize)

	var err error
	if p.main, err = utils.ParseColor(cfg.Color); err != nil {
		return p, fmt.Errorf("watermark color: %w", err)
	}
	if p.stroke, err = utils.ParseColor(cfg.StrokeColor); err != nil {
		return p, fmt.Errorf("stroke color: %w", err)
	}
	if p.shadow, err = utils.ParseColor(cfg.ShadowColor); err != nil {
		return p, fmt.Errorf("shadow color: %w", err)
	}
	return p, nil
}

func alignment(a domain.TextAlign) render.Alignment {
	switch a {
	case domain.AlignCenter:
		return render.AlignCentre
	case domain.AlignRight:
		return render.AlignRight
	default:
		return render.AlignLeft
	}
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// FontDescription builds "Family [Bold] [Italic] size", skipping empty parts.
func FontDescription(family string, bold, italic bool, size int) string {
	parts := make([]string, 0, 4)
	if family != "" {
		parts = append(parts, family)
	}
	if bold {
		parts = append(parts, "Bold")
	}
	if italic {
		parts = append(parts, "Italic")
	}
	if size > 0 {
		parts = append(parts, strconv.Itoa(size))
	}
	return strings.Join(parts, " ")
}

// BuildMarkup wraps the escaped lines in a single span.
func BuildMarkup(lines []string, foreground, fontDesc string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = markupEscaper.Replace(l)
	}
	return fmt.Sprintf(`<span foreground="%s" font_desc="%s">%s</span>`,
		foreground, markupEscaper.Replace(fontDesc), strings.Join(escaped, "\n"))
}

// mainStage applies the flat text opacity.
func mainStage(glyphs *image.NRGBA, opacity float64) *image.NRGBA {
	if opacity >= 1 {
		return glyphs
	}
	return scaleAlpha(glyphs, opacity)
}

// strokeStage stamps tinted glyphs around the origin onto a canvas padded by
// 2*width on every side, then softens the result. nil when width is 0.
func strokeStage(glyphs *image.NRGBA, c utils.Color, width int) *image.NRGBA {
	if width <= 0 {
		return nil
	}
	pad := 2 * width
	b := glyphs.Bounds()
	tinted := tint(glyphs, c)

	canvas := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.NRGBA{})
	step := max(1, utils.RoundHalfUp(float64(width)/2))
	for dx := -width; dx <= width; dx += step {
		for dy := -width; dy <= width; dy += step {
			if dx == 0 && dy == 0 {
				continue
			}
			canvas = imaging.Overlay(canvas, tinted, image.Pt(pad+dx, pad+dy), 1)
		}
	}

	if c.Alpha < 1 {
		canvas = scaleAlpha(canvas, c.Alpha)
	}
	return imaging.Blur(canvas, math.Max(float64(width)*0.4, 0.5))
}

// shadowStage returns the blurred shadow glyphs, nil when the effect is off.
func shadowStage(glyphs *image.NRGBA, c utils.Color, preset ShadowPreset, enabled bool) *image.NRGBA {
	if !enabled {
		return nil
	}
	shadow := tint(glyphs, c)
	if preset.Blur > 0 {
		shadow = imaging.Blur(shadow, preset.Blur)
	}
	if alpha := math.Min(c.Alpha, preset.Alpha); alpha < 1 {
		shadow = scaleAlpha(shadow, alpha)
	}
	return shadow
}

// blendStage merges stroke and text into one layer and places both layers.
func blendStage(main, stroke, shadow *image.NRGBA, p overlayPlan, width, height int) []domain.CompositeInstruction {
	combined := main
	if stroke != nil {
		combined = imaging.Overlay(stroke, main, image.Pt(p.strokePad, p.strokePad), 1)
	}

	cb := combined.Bounds()
	x, y := AnchorPosition(p.position, width, height, cb.Dx(), cb.Dy(), p.padding, p.strokePad)

	composites := make([]domain.CompositeInstruction, 0, 2)
	if shadow != nil {
		composites = append(composites, domain.CompositeInstruction{
			Layer: shadow,
			Top:   max(0, y+p.strokePad+p.preset.Offset),
			Left:  max(0, x+p.strokePad+p.preset.Offset),
		})
	}
	composites = append(composites, domain.CompositeInstruction{
		Layer: combined,
		Top:   max(0, y),
		Left:  max(0, x),
	})
	return composites
}

// AnchorPosition returns the top-left of a layer so that the glyphs inside its
// stroke padding sit padding pixels from the anchored edges. The result is
// clamped to [-strokePad, dim-layer+strokePad] on both axes.
func AnchorPosition(pos domain.Position, imgW, imgH, layerW, layerH, padding, strokePad int) (x, y int) {
	near := padding - strokePad
	farX := imgW - layerW - padding + strokePad
	farY := imgH - layerH - padding + strokePad

	switch pos {
	case domain.PositionTopLeft:
		x, y = near, near
	case domain.PositionTopRight:
		x, y = farX, near
	case domain.PositionBottomLeft:
		x, y = near, farY
	case domain.PositionCenter:
		x = utils.RoundHalfUp(float64(imgW-layerW) / 2)
		y = utils.RoundHalfUp(float64(imgH-layerH) / 2)
	default:
		x, y = farX, farY
	}

	x = max(-strokePad, min(x, imgW-layerW+strokePad))
	y = max(-strokePad, min(y, imgH-layerH+strokePad))
	return x, y
}

// ApplyComposites draws the layers onto a copy of img in order.
func ApplyComposites(img image.Image, composites []domain.CompositeInstruction) *image.NRGBA {
	out := imaging.Clone(img)
	for _, ci := range composites {
		out = imaging.Overlay(out, ci.Layer, image.Pt(ci.Left, ci.Top), 1)
	}
	return out
}

// tint keeps the coverage of glyphs and replaces their colour.
func tint(glyphs *image.NRGBA, c utils.Color) *image.NRGBA {
	return imaging.AdjustFunc(glyphs, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: px.A}
	})
}

func scaleAlpha(img *image.NRGBA, alpha float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		px.A = uint8(math.Round(float64(px.A) * alpha))
		return px
	})
}
