package tracking

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriber_DropsOlderSamples(t *testing.T) {
	ch := channel.NewMemoryChannel()
	defer ch.Close()

	var updates atomic.Int32
	sub, err := SubscribeLocation(ch, "s", func(domain.Coordinate) { updates.Add(1) })
	require.NoError(t, err)
	defer sub.Close()

	_, ok := sub.Current()
	assert.False(t, ok)

	sub.receive(domain.Coordinate{Lat: 1, Timestamp: 200})
	sub.receive(domain.Coordinate{Lat: 2, Timestamp: 100})
	sub.receive(domain.Coordinate{Lat: 3, Timestamp: 200})
	sub.receive(domain.Coordinate{Lat: 95, Timestamp: 300})

	cur, ok := sub.Current()
	require.True(t, ok)
	assert.Equal(t, 1.0, cur.Lat)
	assert.Equal(t, int32(1), updates.Load())

	require.NoError(t, ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 4, Timestamp: 300}))
	require.Eventually(t, func() bool {
		c, _ := sub.Current()
		return c.Lat == 4
	}, time.Second, 5*time.Millisecond)
}

func TestSubscriber_SeedThenLive(t *testing.T) {
	ch := channel.NewMemoryChannel()
	defer ch.Close()

	sub, err := SubscribeLocation(ch, "s", nil)
	require.NoError(t, err)
	sub.Seed(&domain.Coordinate{Lat: 5})
	sub.Seed(nil)

	cur, ok := sub.Current()
	require.True(t, ok)
	assert.Equal(t, 5.0, cur.Lat)

	// an untimed seed never blocks the first live sample
	sub.receive(domain.Coordinate{Lat: 6, Timestamp: 1})
	cur, _ = sub.Current()
	assert.Equal(t, 6.0, cur.Lat)

	sub.Close()
	sub.Close()
	require.NoError(t, ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 7, Timestamp: 2}))
	time.Sleep(20 * time.Millisecond)
	cur, _ = sub.Current()
	assert.Equal(t, 6.0, cur.Lat)
}
