package render

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Markup is a parsed single-span text description.
type Markup struct {
	Foreground string
	Family     string
	Bold       bool
	Italic     bool
	Size       float64
	Text       string
}

type spanElement struct {
	XMLName    xml.Name `xml:"span"`
	Foreground string   `xml:"foreground,attr"`
	FontDesc   string   `xml:"font_desc,attr"`
	Text       string   `xml:",chardata"`
}

// ParseMarkup reads `<span foreground="#rrggbb" font_desc="Family [Bold] [Italic] size">text</span>`.
func ParseMarkup(s string) (*Markup, error) {
	var span spanElement
	if err := xml.Unmarshal([]byte(s), &span); err != nil {
		return nil, fmt.Errorf("invalid markup: %w", err)
	}

	family, bold, italic, size, err := parseFontDesc(span.FontDesc)
	if err != nil {
		return nil, err
	}

	return &Markup{
		Foreground: span.Foreground,
		Family:     family,
		Bold:       bold,
		Italic:     italic,
		Size:       size,
		Text:       span.Text,
	}, nil
}

// parseFontDesc splits "Noto Sans CJK SC Bold Italic 32"; the size is required.
func parseFontDesc(desc string) (family string, bold, italic bool, size float64, err error) {
	tokens := strings.Fields(desc)
	if len(tokens) == 0 {
		return "", false, false, 0, fmt.Errorf("invalid markup: empty font_desc")
	}

	size, err = strconv.ParseFloat(tokens[len(tokens)-1], 64)
	if err != nil || size <= 0 {
		return "", false, false, 0, fmt.Errorf("invalid markup: bad font size in %q", desc)
	}
	tokens = tokens[:len(tokens)-1]

	for len(tokens) > 0 {
		switch strings.ToLower(tokens[len(tokens)-1]) {
		case "bold":
			bold = true
		case "italic":
			italic = true
		default:
			return strings.Join(tokens, " "), bold, italic, size, nil
		}
		tokens = tokens[:len(tokens)-1]
	}
	return "", bold, italic, size, nil
}
