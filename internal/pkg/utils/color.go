package utils

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var rgbaPattern = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([\d.]+)\s*)?\)$`)

// Color is an opaque RGB value plus a separate alpha in [0,1].
type Color struct {
	R, G, B uint8
	Alpha   float64
}

// Hex returns "#rrggbb"; alpha is dropped.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opaque returns the color with full alpha.
func (c Color) Opaque() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ParseColor accepts "#rgb", "#rrggbb", "#rgba" and "#rrggbbaa" (alpha ignored, as
// CSS pickers emit it), "rgb(r,g,b)" and "rgba(r,g,b,a)".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)

	if m := rgbaPattern.FindStringSubmatch(s); m != nil {
		var c Color
		channels := []*uint8{&c.R, &c.G, &c.B}
		for i, ch := range channels {
			v, err := strconv.Atoi(m[i+1])
			if err != nil || v > 255 {
				return Color{}, fmt.Errorf("invalid color %q: channel out of range", s)
			}
			*ch = uint8(v)
		}
		c.Alpha = 1
		if m[4] != "" {
			a, err := strconv.ParseFloat(m[4], 64)
			if err != nil {
				return Color{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
			}
			c.Alpha = clamp01(a)
		}
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb or rgba()", s)
	}
	switch len(hex) {
	case 3, 4:
		// #abc -> #aabbcc
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return Color{}, fmt.Errorf("invalid color %q: expected #rrggbb or rgba()", s)
	}

	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R:     uint8(v >> 16),
		G:     uint8(v >> 8),
		B:     uint8(v),
		Alpha: 1,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
