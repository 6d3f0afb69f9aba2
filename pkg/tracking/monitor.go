package tracking

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"sync"
	"time"
)

const leafHandoff = "handoff-point"

// Emitter receives monitor events. An error ends the monitor.
type Emitter func(domain.TrackingEvent) error

// Monitor is the server-side consumer of a transaction's live positions. For
// a party viewer it also runs the geofence and ETA against the destination.
type Monitor struct {
	cfg Config
	ch  channel.LocationChannel
	now func() time.Time
}

func NewMonitor(cfg Config, ch channel.LocationChannel) *Monitor {
	return &Monitor{cfg: cfg, ch: ch, now: time.Now}
}

type dirtySet struct {
	mu     sync.Mutex
	leaves map[string]struct{}
	notify chan struct{}
}

func (d *dirtySet) mark(leaf string) {
	d.mu.Lock()
	d.leaves[leaf] = struct{}{}
	d.mu.Unlock()
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func (d *dirtySet) drain() map[string]struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.leaves
	d.leaves = make(map[string]struct{})
	return out
}

// Run streams events for tx to emit until ctx ends or emit fails. party is
// the viewer's side, or "" for a read-only observer.
func (m *Monitor) Run(ctx context.Context, tx *domain.Transaction, party string, emit Emitter) error {
	dirty := &dirtySet{leaves: make(map[string]struct{}), notify: make(chan struct{}, 1)}

	subjects := map[string]string{
		domain.PartyRequester: channel.RequesterSubject(tx.ID),
		domain.PartyOwner:     channel.OwnerSubject(tx.ID),
		leafHandoff:           channel.HandoffSubject(tx.ID),
	}
	seeds := map[string]*domain.Coordinate{
		domain.PartyRequester: tx.RequesterLocation,
		domain.PartyOwner:     tx.OwnerLocation,
		leafHandoff:           tx.HandoffPoint,
	}

	subs := make(map[string]*LocationSubscriber, len(subjects))
	defer func() {
		for _, s := range subs {
			s.Close()
		}
	}()
	for leaf, subject := range subjects {
		sub, err := SubscribeLocation(m.ch, subject, func(domain.Coordinate) { dirty.mark(leaf) })
		if err != nil {
			return err
		}
		sub.Seed(seeds[leaf])
		subs[leaf] = sub
	}

	geofence := NewGeofenceEvaluator(m.cfg.GeofenceRadiusKm, m.cfg.GeofenceExitMargin)
	eta := NewETAEstimator(m.cfg.AverageSpeedKmh)
	eta.now = m.now
	lastState := ""
	etaStarted := false

	positions := func() (self, dest *domain.Coordinate) {
		var counterpart string
		switch party {
		case domain.PartyOwner:
			counterpart = domain.PartyRequester
		case domain.PartyRequester:
			counterpart = domain.PartyOwner
		default:
			return nil, nil
		}
		self, _ = subs[party].Current()
		other, _ := subs[counterpart].Current()
		handoff, _ := subs[leafHandoff].Current()
		return self, Destination(handoff, other)
	}

	evaluate := func() error {
		if party == "" {
			return nil
		}
		self, dest := positions()
		reading := geofence.Evaluate(self, dest)
		if reading.Event != domain.GeofenceEventNone || reading.State != lastState {
			lastState = reading.State
			if err := emit(m.event(tx.ID, domain.EventGeofence, "", func(e *domain.TrackingEvent) { e.Geofence = &reading })); err != nil {
				return err
			}
		}
		if !etaStarted {
			if est, ok := eta.Estimate(self, dest); ok {
				etaStarted = true
				return emit(m.event(tx.ID, domain.EventETA, "", func(e *domain.TrackingEvent) { e.ETA = &est }))
			}
		}
		return nil
	}

	// initial state
	for _, leaf := range []string{domain.PartyRequester, domain.PartyOwner, leafHandoff} {
		if err := m.emitLocation(tx.ID, leaf, subs[leaf], emit); err != nil {
			return err
		}
	}
	if err := evaluate(); err != nil {
		return err
	}

	ticker := time.NewTicker(m.cfg.ETAInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = emit(m.event(tx.ID, domain.EventClosed, "", nil))
			return nil
		case <-dirty.notify:
			for leaf := range dirty.drain() {
				if err := m.emitLocation(tx.ID, leaf, subs[leaf], emit); err != nil {
					return err
				}
			}
			if err := evaluate(); err != nil {
				return err
			}
		case <-ticker.C:
			if party == "" {
				continue
			}
			self, dest := positions()
			if est, ok := eta.Estimate(self, dest); ok {
				etaStarted = true
				if err := emit(m.event(tx.ID, domain.EventETA, "", func(e *domain.TrackingEvent) { e.ETA = &est })); err != nil {
					return err
				}
			}
		}
	}
}

func (m *Monitor) emitLocation(txID, leaf string, sub *LocationSubscriber, emit Emitter) error {
	loc, ok := sub.Current()
	if !ok {
		return nil
	}
	if leaf == leafHandoff {
		return emit(m.event(txID, domain.EventHandoffPoint, "", func(e *domain.TrackingEvent) { e.Location = loc }))
	}
	return emit(m.event(txID, domain.EventLocation, leaf, func(e *domain.TrackingEvent) { e.Location = loc }))
}

func (m *Monitor) event(txID, kind, party string, fill func(*domain.TrackingEvent)) domain.TrackingEvent {
	e := domain.TrackingEvent{
		Type:          kind,
		TransactionID: txID,
		Party:         party,
		At:            m.now(),
	}
	if fill != nil {
		fill(&e)
	}
	return e
}
