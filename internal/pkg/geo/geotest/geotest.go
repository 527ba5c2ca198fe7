// Package geotest builds coordinates at known distances for tests.
package geotest

import (
	"math"

	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
)

// Offset returns the point reached by moving meters along bearing (degrees clockwise from
// north) from p on the haversine sphere.
func Offset(p geo.Point, meters, bearing float64) geo.Point {
	delta := meters / geo.EarthRadiusMeters
	theta := bearing * math.Pi / 180
	lat1 := p.Latitude * math.Pi / 180
	lon1 := p.Longitude * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	return geo.Point{Latitude: lat2 * 180 / math.Pi, Longitude: lon2 * 180 / math.Pi}
}
