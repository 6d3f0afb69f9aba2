package tracking

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGeolocator_WalksToTarget(t *testing.T) {
	start := domain.Coordinate{Lat: 0, Lng: 0}
	target := *kmEast(1)
	g := NewSimulatedGeolocator(start, target, 0.25, 0, 1)

	var last domain.Coordinate
	for i := 0; i < 4; i++ {
		c, err := g.Locate(context.Background(), HighAccuracy)
		require.NoError(t, err)
		last = c
	}
	assert.True(t, g.Arrived())
	assert.InDelta(t, 0, geo.HaversineKm(last, target), 0.001)
}

func TestSimulatedGeolocator_HighAccuracyFailures(t *testing.T) {
	g := NewSimulatedGeolocator(domain.Coordinate{}, *kmEast(1), 0.1, 1, 1)

	_, err := g.Locate(context.Background(), HighAccuracy)
	assert.ErrorIs(t, err, ErrSignalLost)

	c, err := g.Locate(context.Background(), LowAccuracy)
	require.NoError(t, err)
	assert.NoError(t, c.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Locate(ctx, LowAccuracy)
	assert.Error(t, err)
}
