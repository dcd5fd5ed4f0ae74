package utils

import "math"

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// RoundHalfUp rounds .5 toward positive infinity, the way browsers' Math.round does.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
