package geocoder

import (
	"regexp"
	"strings"

	"github.com/photo-watermark/internal/domain"
)

var cjkRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)

func containsCJK(parts ...string) bool {
	for _, p := range parts {
		if cjkRe.MatchString(p) {
			return true
		}
	}
	return false
}

// TrimAddressByLevel formats a domestic (Chinese) address: components are
// concatenated without separators. A municipality whose province equals its city
// is written once.
func TrimAddressByLevel(c domain.AddressComponents, level domain.Granularity, hideProvince bool) string {
	skipProvince := hideProvince || c.Province == c.City

	switch level {
	case domain.GranularityCity:
		if skipProvince {
			return c.City
		}
		return c.Province + c.City
	case domain.GranularityDistrict:
		if skipProvince {
			return c.City + c.District
		}
		return c.Province + c.City + c.District
	default:
		tail := c.City + c.District + c.Street + c.StreetNumber
		if skipProvince {
			return tail
		}
		return c.Province + tail
	}
}

// FormatInternationalAddress joins the non-empty components with ", ",
// most specific first.
func FormatInternationalAddress(c domain.AddressComponents, level domain.Granularity, hideProvince bool) string {
	switch level {
	case domain.GranularityCity:
		if hideProvince {
			if c.City != "" {
				return c.City
			}
			return c.Province
		}
		return joinNonEmpty(c.City, c.Province)
	case domain.GranularityDistrict:
		parts := []string{c.District, c.City}
		if !hideProvince {
			parts = append(parts, c.Province)
		}
		return joinNonEmpty(parts...)
	default:
		street := c.Street
		if c.StreetNumber != "" {
			street = c.StreetNumber + " " + c.Street
		}
		parts := []string{street, c.District, c.City}
		if !hideProvince {
			parts = append(parts, c.Province)
		}
		return joinNonEmpty(parts...)
	}
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// format picks the formatter for a parsed address.
func format(a *parsedAddress, level domain.Granularity, hideProvince bool) string {
	if a.domestic {
		return TrimAddressByLevel(a.components, level, hideProvince)
	}
	return FormatInternationalAddress(a.components, level, hideProvince)
}
