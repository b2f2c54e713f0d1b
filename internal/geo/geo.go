package geo

import (
	"math"

	"pressing-api/internal/models"
)

// earthRadiusM is the mean Earth radius in meters. All distances in this
// package are meters; callers needing kilometers divide at the call site.
const earthRadiusM = 6371000.0

// Abidjan metro envelope. Coordinates outside this box are geographically
// valid but not serviceable, and must be rejected on every write.
const (
	ServiceAreaSouth = 5.2
	ServiceAreaNorth = 5.5
	ServiceAreaWest  = -4.2
	ServiceAreaEast  = -3.8
)

// Haversine returns the great-circle distance between a and b in meters.
// It is symmetric and returns 0 for identical points.
func Haversine(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Valid reports whether c is a numerically valid coordinate: finite values
// within ±90 latitude and ±180 longitude.
func Valid(c models.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// InServiceArea reports whether c falls inside the Abidjan operating
// envelope. This is a business rule, not a geographic one.
func InServiceArea(c models.Coordinate) bool {
	return Valid(c) &&
		c.Lat >= ServiceAreaSouth && c.Lat <= ServiceAreaNorth &&
		c.Lng >= ServiceAreaWest && c.Lng <= ServiceAreaEast
}
