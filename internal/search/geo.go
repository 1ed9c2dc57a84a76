// Package search compiles tutor search requests into executable queries
// and provides the geographic distance evaluation used for radius filters.
package search

import "math"

// EarthRadiusKm is the mean Earth radius used as the default sphere for
// great-circle distances. Adequate for radius filtering, not geodesic-precise.
const EarthRadiusKm = 6371.0

// Haversine computes the great-circle distance in kilometers between two
// coordinates on a sphere of the given radius.
func Haversine(lat1, lng1, lat2, lng2, sphereRadiusKm float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLng := (lng2 - lng1) * (math.Pi / 180)
	lat1 = lat1 * (math.Pi / 180)
	lat2 = lat2 * (math.Pi / 180)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return sphereRadiusKm * c
}

// WithinRadius reports whether a profile location is within radiusKm of the
// query point (inclusive boundary). Profiles without a location never match.
func WithinRadius(queryLat, queryLng float64, profileLat, profileLng *float64, radiusKm, sphereRadiusKm float64) bool {
	if profileLat == nil || profileLng == nil {
		return false
	}
	return Haversine(queryLat, queryLng, *profileLat, *profileLng, sphereRadiusKm) <= radiusKm
}
