package transaction

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/tracking"
	"foodia-handoff/pkg/transaction/transactiontest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeLocation(t *testing.T, repo *transactiontest.MemoryRepository, id, column string, c domain.Coordinate) {
	t.Helper()
	encoded, err := domain.EncodeCoordinate(&c)
	require.NoError(t, err)
	_, err = repo.UpdateTransactionFields(context.Background(), id, nil, map[string]interface{}{column: encoded})
	require.NoError(t, err)
}

func TestGetTracking_Snapshot(t *testing.T) {
	repo := transactiontest.NewMemoryRepository()
	tx := repo.Add(domain.StatusAccepted)
	id := tx.ID.String()
	placeLocation(t, repo, id, "owner_location", domain.Coordinate{Lat: 40.7128, Lng: -74.0060})
	placeLocation(t, repo, id, "requester_location", domain.Coordinate{Lat: 40.7306, Lng: -73.9352})

	svc := NewTrackingService(repo, nil, nil, nil, tracking.DefaultConfig())
	snap, err := svc.GetTracking(context.Background(), id, tx.OwnerID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PartyOwner, snap.Viewer)
	require.NotNil(t, snap.DistanceKm)
	assert.InDelta(t, 6.286, *snap.DistanceKm, 0.063)
	require.NotNil(t, snap.StraightLineETA)
	assert.Equal(t, 13, *snap.StraightLineETA)
	assert.False(t, snap.WithinGeofence)

	_, err = svc.GetTracking(context.Background(), id, "stranger")
	assert.ErrorIs(t, err, domain.ErrNotTransactionParty)
}

func TestGetDirections_DegradesToStraightLine(t *testing.T) {
	repo := transactiontest.NewMemoryRepository()
	tx := repo.Add(domain.StatusAccepted)
	id := tx.ID.String()
	svc := NewTrackingService(repo, nil, nil, nil, tracking.DefaultConfig())

	_, err := svc.GetDirections(context.Background(), id, tx.RequesterID.String())
	assert.ErrorIs(t, err, domain.ErrNoPosition)

	placeLocation(t, repo, id, "requester_location", domain.Coordinate{Lat: 0, Lng: 0})
	placeLocation(t, repo, id, "owner_location", domain.Coordinate{Lat: 0, Lng: 1})
	placeLocation(t, repo, id, "handoff_point", domain.Coordinate{Lat: 0, Lng: 0.01})

	summary, err := svc.GetDirections(context.Background(), id, tx.RequesterID.String())
	require.NoError(t, err)
	assert.False(t, summary.Routed)
	// handoff point wins over the owner's position
	assert.InDelta(t, 1112, summary.DistanceMeters, 2)
}

func TestForward_RequiresQuery(t *testing.T) {
	svc := NewTrackingService(transactiontest.NewMemoryRepository(), nil, nil, nil, tracking.DefaultConfig())

	_, err := svc.Forward(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	places, err := svc.Forward(context.Background(), "monas")
	require.NoError(t, err)
	assert.Empty(t, places)

	_, err = svc.Reverse(context.Background(), domain.Coordinate{Lat: 100})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type eventLog struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (l *eventLog) emit(e domain.TrackingEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) has(kind string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.Type == kind {
			return true
		}
	}
	return false
}

func TestStreamTracking_EndsWithSession(t *testing.T) {
	repo := transactiontest.NewMemoryRepository()
	tx := repo.Add(domain.StatusAccepted)
	id := tx.ID.String()
	ch := channel.NewMemoryChannel()
	defer ch.Close()
	sessions := tracking.NewSessionManager(context.Background())
	defer sessions.Shutdown()

	svc := NewTrackingService(repo, tracking.NewMonitor(tracking.DefaultConfig(), ch), sessions, nil, tracking.DefaultConfig())

	err := svc.StreamTracking(context.Background(), id, tx.OwnerID.String(), (&eventLog{}).emit)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	sessions.Open(id)
	log := &eventLog{}
	done := make(chan error, 1)
	go func() { done <- svc.StreamTracking(context.Background(), id, tx.OwnerID.String(), log.emit) }()

	require.Eventually(t, func() bool {
		_ = ch.Publish(context.Background(), channel.RequesterSubject(id), domain.Coordinate{Lat: -6.2, Lng: 106.8, Timestamp: time.Now().UnixMilli()})
		return log.has(domain.EventLocation)
	}, time.Second, 10*time.Millisecond)

	sessions.Close(id)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream outlived its session")
	}
	assert.True(t, log.has(domain.EventClosed))
}

func TestStreamTracking_RequiresAcceptedStatus(t *testing.T) {
	repo := transactiontest.NewMemoryRepository()
	tx := repo.Add(domain.StatusCompleted)
	sessions := tracking.NewSessionManager(context.Background())

	svc := NewTrackingService(repo, nil, sessions, nil, tracking.DefaultConfig())
	err := svc.StreamTracking(context.Background(), tx.ID.String(), tx.OwnerID.String(), (&eventLog{}).emit)
	assert.ErrorIs(t, err, domain.ErrTrackingInactive)
}
