package geocoder

import (
	"strings"

	"github.com/photo-watermark/internal/domain"
)

// chinaBounds covers the mainland and Hainan; South China Sea islands are left
// out to avoid matching South-East Asia.
var chinaBounds = domain.BoundingBox{MinLat: 18.0, MaxLat: 53.55, MinLng: 73.66, MaxLng: 135.05}

type countryBounds struct {
	box domain.BoundingBox
	// wrap is a second longitude band east of the antimeridian, OR-ed with box.
	wrap *domain.BoundingBox
}

func (b countryBounds) contains(lat, lng float64) bool {
	if b.box.Contains(lat, lng) {
		return true
	}
	return b.wrap != nil && b.wrap.Contains(lat, lng)
}

// countryTable holds rough bounding boxes. Points near borders may be misclassified.
var countryTable = map[string]countryBounds{
	"CN": {box: chinaBounds},
	"US": {box: domain.BoundingBox{MinLat: 24.39, MaxLat: 49.38, MinLng: -125.0, MaxLng: -66.93}},
	"JP": {box: domain.BoundingBox{MinLat: 24.0, MaxLat: 45.55, MinLng: 122.93, MaxLng: 153.99}},
	"KR": {box: domain.BoundingBox{MinLat: 33.1, MaxLat: 38.63, MinLng: 124.6, MaxLng: 131.87}},
	"GB": {box: domain.BoundingBox{MinLat: 49.9, MaxLat: 58.7, MinLng: -8.65, MaxLng: 1.76}},
	"DE": {box: domain.BoundingBox{MinLat: 47.27, MaxLat: 55.06, MinLng: 5.87, MaxLng: 15.04}},
	"FR": {box: domain.BoundingBox{MinLat: 41.33, MaxLat: 51.09, MinLng: -5.14, MaxLng: 9.56}},
	"AU": {box: domain.BoundingBox{MinLat: -43.64, MaxLat: -10.06, MinLng: 113.34, MaxLng: 153.64}},
	"CA": {box: domain.BoundingBox{MinLat: 41.68, MaxLat: 83.11, MinLng: -141.0, MaxLng: -52.62}},
	"RU": {
		box:  domain.BoundingBox{MinLat: 41.19, MaxLat: 81.86, MinLng: 19.64, MaxLng: 180},
		wrap: &domain.BoundingBox{MinLat: 41.19, MaxLat: 81.86, MinLng: -180, MaxLng: -169.05},
	},
	"IN": {box: domain.BoundingBox{MinLat: 6.75, MaxLat: 35.5, MinLng: 68.11, MaxLng: 97.4}},
	"BR": {box: domain.BoundingBox{MinLat: -33.75, MaxLat: 5.27, MinLng: -73.99, MaxLng: -34.79}},
	"TH": {box: domain.BoundingBox{MinLat: 5.61, MaxLat: 20.46, MinLng: 97.35, MaxLng: 105.64}},
	"SG": {box: domain.BoundingBox{MinLat: 1.15, MaxLat: 1.47, MinLng: 103.6, MaxLng: 104.0}},
	"MY": {box: domain.BoundingBox{MinLat: 0.85, MaxLat: 7.36, MinLng: 99.64, MaxLng: 119.27}},
	"VN": {box: domain.BoundingBox{MinLat: 8.18, MaxLat: 23.39, MinLng: 102.14, MaxLng: 109.46}},
}

// IsInChina is the coarse mainland test used for provider fallback.
func IsInChina(lat, lng float64) bool {
	return chinaBounds.Contains(lat, lng)
}

// IsDomestic reports whether the point falls inside any of the home countries.
// Without home countries China is treated as home. Unknown codes never match.
func IsDomestic(lat, lng float64, homeCountries []string) bool {
	if len(homeCountries) == 0 {
		return IsInChina(lat, lng)
	}
	for _, code := range homeCountries {
		if b, ok := countryTable[strings.ToUpper(strings.TrimSpace(code))]; ok && b.contains(lat, lng) {
			return true
		}
	}
	return false
}

// SupportedCountries lists the codes understood by IsDomestic.
func SupportedCountries() []string {
	return []string{"CN", "US", "JP", "KR", "GB", "DE", "FR", "AU", "CA", "RU", "IN", "BR", "TH", "SG", "MY", "VN"}
}
