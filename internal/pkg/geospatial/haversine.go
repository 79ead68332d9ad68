package geospatial

import "math"

const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// PointInCircle reports whether a point lies within a circle of radiusMeters
// around the given center. A point exactly on the boundary counts as inside.
func PointInCircle(centerLat, centerLon, radiusMeters, lat, lon float64) bool {
	return Haversine(centerLat, centerLon, lat, lon) <= radiusMeters
}

// CirclesIntersect reports whether two circles touch or overlap, i.e. the
// distance between their centers is at most the sum of their radii.
func CirclesIntersect(lat1, lon1, r1, lat2, lon2, r2 float64) bool {
	return Haversine(lat1, lon1, lat2, lon2) <= r1+r2
}

// BoundingBox returns a bounding box around a point with the given radius in
// meters. It is an axis-aligned approximation intended only to narrow
// candidates before an exact Haversine check.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
