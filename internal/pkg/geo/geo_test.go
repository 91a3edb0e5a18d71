package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sanMiguel = Point{Latitude: 13.4833, Longitude: -88.1833}

func TestDistanceZeroForSamePoint(t *testing.T) {
	points := []Point{
		sanMiguel,
		{Latitude: 0, Longitude: 0},
		{Latitude: 90, Longitude: 0},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 64.1466, Longitude: -21.9426},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p), "%+v", p)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{sanMiguel, {Latitude: 13.6929, Longitude: -89.2182}},
		{{Latitude: 51.5074, Longitude: -0.1278}, {Latitude: 40.7128, Longitude: -74.0060}},
		{{Latitude: -1, Longitude: 179.9}, {Latitude: 1, Longitude: -179.9}},
	}
	for _, pair := range pairs {
		assert.Equal(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]))
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of latitude on a 6371 km sphere.
	d := Distance(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 1, Longitude: 0})
	require.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1e-6)

	// London to Paris is roughly 343.5 km.
	d = Distance(Point{Latitude: 51.5074, Longitude: -0.1278}, Point{Latitude: 48.8566, Longitude: 2.3522})
	require.InDelta(t, 343_500, d, 1_000)
}

func TestWithinBoundary(t *testing.T) {
	target := Point{Latitude: sanMiguel.Latitude + 0.00015, Longitude: sanMiguel.Longitude}
	r := Distance(sanMiguel, target)

	assert.True(t, Within(sanMiguel, target, r), "exactly r is included")
	assert.True(t, Within(sanMiguel, target, r+1e-6))
	assert.False(t, Within(sanMiguel, target, r-1e-6), "just under r excludes the point")
}

func TestValidate(t *testing.T) {
	require.NoError(t, sanMiguel.Validate())
	require.NoError(t, Point{Latitude: -90, Longitude: 180}.Validate())
	require.Error(t, Point{Latitude: 90.1, Longitude: 0}.Validate())
	require.Error(t, Point{Latitude: 0, Longitude: -180.5}.Validate())
	require.Error(t, Point{Latitude: math.NaN(), Longitude: 0}.Validate())
}
