// Package geo provides the pure coordinate math used by the simulator.
package geo

import (
	"math"

	"route-simulation-service/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates
// in kilometers using the haversine formula.
func DistanceKm(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Lerp interpolates componentwise between a and b for t in [0, 1].
// No great-circle correction: segments are short enough that a straight
// line in degree space is an acceptable display approximation.
func Lerp(a, b domain.Coordinate, t float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}
