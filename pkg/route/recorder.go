package route

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/tracking"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Recorder appends the owner's published positions to the route path of one
// transaction. It ends itself once the repository reports the path frozen.
type Recorder struct {
	repo RouteRepository
	ch   channel.LocationChannel
	now  func() time.Time
}

func NewRecorder(repo RouteRepository, ch channel.LocationChannel) *Recorder {
	return &Recorder{repo: repo, ch: ch, now: time.Now}
}

// Run records until ctx ends or the path is frozen. It is meant to run as a
// tracking session task.
func (r *Recorder) Run(ctx context.Context, transactionID string) error {
	var lastTs int64
	last, err := r.repo.GetLastRoutePoint(ctx, transactionID)
	if err != nil {
		return err
	}
	if last != nil {
		lastTs = last.RecordedAt
	}

	var (
		mu     sync.Mutex
		frozen = make(chan struct{})
		once   sync.Once
	)
	appendPoint := func(loc domain.Coordinate) {
		if loc.Timestamp == 0 {
			loc = loc.WithTime(r.now())
		}

		mu.Lock()
		defer mu.Unlock()
		if loc.Timestamp <= lastTs {
			return
		}
		err := r.repo.AppendRoutePoint(ctx, transactionID, domain.RoutePoint{Lat: loc.Lat, Lng: loc.Lng, Timestamp: loc.Timestamp})
		switch {
		case err == nil:
			lastTs = loc.Timestamp
		case errors.Is(err, domain.ErrStaleRoutePoint):
		case errors.Is(err, domain.ErrPreconditionFailed), errors.Is(err, domain.ErrNotFound):
			once.Do(func() { close(frozen) })
		case ctx.Err() != nil:
		default:
			log.Warnf("route recorder %s: dropped point: %v", transactionID, err)
		}
	}

	sub, err := tracking.SubscribeLocation(r.ch, channel.OwnerSubject(transactionID), appendPoint)
	if err != nil {
		return err
	}
	defer sub.Close()
	log.Infof("route recorder started for transaction %s", transactionID)

	select {
	case <-ctx.Done():
		return nil
	case <-frozen:
		log.Infof("route recorder stopped for transaction %s: path frozen", transactionID)
		return nil
	}
}
