package channel

import (
	"context"
	"foodia-handoff/domain"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	seen []domain.Coordinate
}

func (r *recorder) handle(c domain.Coordinate) {
	r.mu.Lock()
	r.seen = append(r.seen, c)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []domain.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Coordinate(nil), r.seen...)
}

func (r *recorder) last() (domain.Coordinate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return domain.Coordinate{}, false
	}
	return r.seen[len(r.seen)-1], true
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "handoff/tx-1/requester", RequesterSubject("tx-1"))
	assert.Equal(t, "handoff/tx-1/owner", OwnerSubject("tx-1"))
	assert.Equal(t, "handoff/tx-1/handoff-point", HandoffSubject("tx-1"))
}

func TestMemoryChannel_FanOut(t *testing.T) {
	ch := NewMemoryChannel()
	defer ch.Close()

	var a, b recorder
	unsubA, err := ch.Subscribe("s", a.handle)
	require.NoError(t, err)
	defer unsubA()
	unsubB, err := ch.Subscribe("s", b.handle)
	require.NoError(t, err)
	defer unsubB()

	want := domain.Coordinate{Lat: 1, Lng: 2, Timestamp: 10}
	require.NoError(t, ch.Publish(context.Background(), "s", want))

	for _, r := range []*recorder{&a, &b} {
		require.Eventually(t, func() bool {
			got, ok := r.last()
			return ok && got == want
		}, time.Second, 5*time.Millisecond)
	}
}

func TestMemoryChannel_RetainedForLateSubscriber(t *testing.T) {
	ch := NewMemoryChannel()
	defer ch.Close()

	want := domain.Coordinate{Lat: 3, Lng: 4}
	require.NoError(t, ch.Publish(context.Background(), "s", want))

	var r recorder
	unsub, err := ch.Subscribe("s", r.handle)
	require.NoError(t, err)
	defer unsub()

	require.Eventually(t, func() bool {
		got, ok := r.last()
		return ok && got == want
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, ch.Forget(context.Background(), "s"))
	var late recorder
	unsubLate, err := ch.Subscribe("s", late.handle)
	require.NoError(t, err)
	defer unsubLate()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, late.snapshot())
}

func TestMemoryChannel_UnsubscribeStopsCallbacks(t *testing.T) {
	ch := NewMemoryChannel()
	defer ch.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	unsub, err := ch.Subscribe("s", func(domain.Coordinate) {
		calls.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})
	require.NoError(t, err)

	require.NoError(t, ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 1}))
	<-entered

	done := make(chan struct{})
	go func() {
		unsub()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("unsubscribe returned while a callback was still running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-done

	require.NoError(t, ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 2}))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// safe to call again
	unsub()
	assert.Zero(t, ch.hub.subscribers("s"))
}

func TestMemoryChannel_LatestWins(t *testing.T) {
	ch := NewMemoryChannel()
	defer ch.Close()

	gate := make(chan struct{})
	var r recorder
	first := true
	unsub, err := ch.Subscribe("s", func(c domain.Coordinate) {
		if first {
			first = false
			<-gate
		}
		r.handle(c)
	})
	require.NoError(t, err)
	defer unsub()

	ctx := context.Background()
	require.NoError(t, ch.Publish(ctx, "s", domain.Coordinate{Lat: 1, Timestamp: 1}))
	time.Sleep(10 * time.Millisecond)
	for i := int64(2); i <= 5; i++ {
		require.NoError(t, ch.Publish(ctx, "s", domain.Coordinate{Lat: float64(i), Timestamp: i}))
	}
	close(gate)

	require.Eventually(t, func() bool {
		got, ok := r.last()
		return ok && got.Timestamp == 5
	}, time.Second, 5*time.Millisecond)

	seen := r.snapshot()
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i].Timestamp, seen[i-1].Timestamp)
	}
	assert.LessOrEqual(t, len(seen), 3)
}

func TestMemoryChannel_RejectsInvalidAndClosed(t *testing.T) {
	ch := NewMemoryChannel()

	err := ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 200})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ch.Publish(ctx, "s", domain.Coordinate{Lat: 1})
	assert.ErrorIs(t, err, domain.ErrTransientIO)

	require.NoError(t, ch.Close())
	err = ch.Publish(context.Background(), "s", domain.Coordinate{Lat: 1})
	assert.ErrorIs(t, err, domain.ErrTransientIO)
	_, err = ch.Subscribe("s", func(domain.Coordinate) {})
	assert.ErrorIs(t, err, domain.ErrTransientIO)
}
