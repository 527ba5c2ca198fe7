package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

var ErrInvalidCoordinate = errors.New("latitude must be between -90 and 90 and longitude between -180 and 180")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return ErrInvalidCoordinate
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the great-circle distance in meters between two coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := (Point{lat1, lon1}).Validate(); err != nil {
		return 0, err
	}
	if err := (Point{lat2, lon2}).Validate(); err != nil {
		return 0, err
	}
	return haversine(lat1, lon1, lat2, lon2), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Within reports whether distance lies inside the radius. The boundary counts as inside.
func Within(distance, radius float64) bool {
	return distance <= radius
}

// Fence is a circular geofence around the office.
type Fence struct {
	Center Point
	Radius float64
}

// Check returns the distance from the fence center and whether p is inside the fence.
func (f Fence) Check(p Point) (float64, bool, error) {
	d, err := Distance(f.Center.Latitude, f.Center.Longitude, p.Latitude, p.Longitude)
	if err != nil {
		return 0, false, err
	}
	return d, Within(d, f.Radius), nil
}
