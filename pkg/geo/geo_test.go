package geo

import (
	"foodia-handoff/domain"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm_NewYorkPair(t *testing.T) {
	a := domain.Coordinate{Lat: 40.7128, Lng: -74.0060}
	b := domain.Coordinate{Lat: 40.7306, Lng: -73.9352}

	d := HaversineKm(a, b)

	assert.InEpsilon(t, 6.286, d, 0.01)
	// the pair is usually quoted as "about 6.4 km"
	assert.InEpsilon(t, 6.4, d, 0.02)
	assert.InDelta(t, d, HaversineKm(b, a), 1e-9)
}

func TestHaversineKm_SamePoint(t *testing.T) {
	a := domain.Coordinate{Lat: -6.2, Lng: 106.8}
	assert.Zero(t, HaversineKm(a, a))
}

func TestHaversineKm_EquatorDegree(t *testing.T) {
	d := HaversineKm(domain.Coordinate{}, domain.Coordinate{Lng: 1})
	assert.InDelta(t, 111.19, d, 0.01)
}

func TestDistance_RejectsInvalid(t *testing.T) {
	good := &domain.Coordinate{Lat: 1, Lng: 1}

	_, err := Distance(good, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Distance(good, &domain.Coordinate{Lat: math.NaN(), Lng: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	_, err = Distance(&domain.Coordinate{Lat: 91}, good)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)

	d, err := Distance(good, good)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(nil, 0)
	assert.False(t, ok)

	points := []domain.RoutePoint{
		{Lat: 1, Lng: 2, Timestamp: 1},
		{Lat: -1, Lng: 5, Timestamp: 2},
		{Lat: 3, Lng: 4, Timestamp: 3},
	}
	b, ok := Bounds(points, 0.5)
	require.True(t, ok)
	assert.Equal(t, domain.Bounds{MinLat: -1.5, MinLng: 1.5, MaxLat: 3.5, MaxLng: 5.5}, b)

	b, _ = Bounds([]domain.RoutePoint{{Lat: 89.9, Lng: 179.9}}, 1)
	assert.Equal(t, 90.0, b.MaxLat)
	assert.Equal(t, 180.0, b.MaxLng)
}

func TestPathLengthKm(t *testing.T) {
	assert.Zero(t, PathLengthKm([]domain.RoutePoint{{Lat: 1, Lng: 1}}))

	points := []domain.RoutePoint{{Lng: 0}, {Lng: 0.5}, {Lng: 1}}
	assert.InDelta(t, HaversineKm(domain.Coordinate{}, domain.Coordinate{Lng: 1}), PathLengthKm(points), 1e-6)
}

func TestInterpolate(t *testing.T) {
	a := domain.Coordinate{Lat: 0, Lng: 0}
	b := domain.Coordinate{Lat: 10, Lng: 20}
	assert.Equal(t, domain.Coordinate{Lat: 5, Lng: 10}, Interpolate(a, b, 0.5))
	assert.Equal(t, b, Interpolate(a, b, 2))
}
