package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETA_Trend(t *testing.T) {
	e := NewETAEstimator(30)

	first := e.FromDistance(10)
	assert.Equal(t, 20, first.Minutes)
	assert.Nil(t, first.Change)

	second := e.FromDistance(7.5)
	assert.Equal(t, 15, second.Minutes)
	require.NotNil(t, second.Change)
	assert.Equal(t, -5, *second.Change)

	third := e.FromDistance(9)
	require.NotNil(t, third.Change)
	assert.Equal(t, 3, *third.Change)
}

func TestETA_FromPositions(t *testing.T) {
	e := NewETAEstimator(30)

	_, ok := e.Estimate(nil, origin)
	assert.False(t, ok)

	est, ok := e.Estimate(kmEast(10), origin)
	require.True(t, ok)
	assert.Equal(t, 20, est.Minutes)
	assert.Nil(t, est.Change, "a missing fix must not count as a previous estimate")

	est, ok = e.Estimate(kmEast(7.5), origin)
	require.True(t, ok)
	assert.Equal(t, -5, *est.Change)

	e.Reset()
	est, _ = e.Estimate(kmEast(7.5), origin)
	assert.Nil(t, est.Change)
}

func TestMinutesFor(t *testing.T) {
	assert.Equal(t, 0, MinutesFor(0, 30))
	assert.Equal(t, 1, MinutesFor(0.3, 30))
	assert.Equal(t, 0, MinutesFor(0.2, 30))
	assert.Equal(t, 0, MinutesFor(5, 0))
}
