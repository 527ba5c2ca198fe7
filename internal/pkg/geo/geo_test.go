package geo_test

import (
	"math"
	"testing"

	"github.com/geoattend/attendance-backend-go/internal/pkg/geo"
	"github.com/geoattend/attendance-backend-go/internal/pkg/geo/geotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Point{Latitude: 24.8600, Longitude: 67.0100}

func TestDistance_SamePointIsZero(t *testing.T) {
	d, err := geo.Distance(office.Latitude, office.Longitude, office.Latitude, office.Longitude)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistance_KnownPair(t *testing.T) {
	// One degree of latitude is ~111.195 km on a 6371 km sphere.
	d, err := geo.Distance(0, 0, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 111194.9, d, 1)
}

func TestDistance_RejectsOutOfRange(t *testing.T) {
	cases := [][4]float64{
		{91, 0, 0, 0},
		{-90.0001, 0, 0, 0},
		{0, 180.5, 0, 0},
		{0, 0, 0, -181},
		{math.NaN(), 0, 0, 0},
	}
	for _, c := range cases {
		_, err := geo.Distance(c[0], c[1], c[2], c[3])
		assert.ErrorIs(t, err, geo.ErrInvalidCoordinate, c)
	}
}

func TestOffset_RoundTripsThroughDistance(t *testing.T) {
	for _, meters := range []float64{50, 199.9, 500} {
		p := geotest.Offset(office, meters, 45)
		d, err := geo.Distance(office.Latitude, office.Longitude, p.Latitude, p.Longitude)
		require.NoError(t, err)
		assert.InDelta(t, meters, d, 0.01)
	}
}

func TestFenceCheck_Boundary(t *testing.T) {
	fence := geo.Fence{Center: office, Radius: 200}
	const eps = 0.5

	_, inside, err := fence.Check(geotest.Offset(office, 200-eps, 90))
	require.NoError(t, err)
	assert.True(t, inside)

	d, inside, err := fence.Check(geotest.Offset(office, 200+eps, 90))
	require.NoError(t, err)
	assert.False(t, inside)
	assert.Greater(t, d, 200.0)

	assert.True(t, geo.Within(200, 200))
	assert.False(t, geo.Within(200.0001, 200))
}

func TestFenceCheck_InvalidPoint(t *testing.T) {
	fence := geo.Fence{Center: office, Radius: 200}
	_, _, err := fence.Check(geo.Point{Latitude: 100, Longitude: 0})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}
