package tracking

import (
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
)

// Destination is the handoff point when one is set, otherwise the
// counterparty's live position.
func Destination(handoffPoint, counterparty *domain.Coordinate) *domain.Coordinate {
	if domain.ValidCoordinate(handoffPoint) {
		return handoffPoint
	}
	if domain.ValidCoordinate(counterparty) {
		return counterparty
	}
	return nil
}

// PartyLocations returns the viewer's own position and the counterparty's.
func PartyLocations(tx *domain.Transaction, party string) (self, counterparty *domain.Coordinate) {
	switch party {
	case domain.PartyOwner:
		return tx.OwnerLocation, tx.RequesterLocation
	case domain.PartyRequester:
		return tx.RequesterLocation, tx.OwnerLocation
	}
	return nil, nil
}

// Snapshot is the point-in-time tracking view for one party.
func Snapshot(cfg Config, tx *domain.Transaction, party string) domain.TrackingSnapshot {
	self, counterparty := PartyLocations(tx, party)
	dest := Destination(tx.HandoffPoint, counterparty)

	snap := domain.TrackingSnapshot{
		TransactionID:    tx.ID,
		Status:           tx.Status,
		Viewer:           party,
		SelfLocation:     self,
		CounterpartyLoc:  counterparty,
		HandoffPoint:     tx.HandoffPoint,
		Destination:      dest,
		GeofenceRadiusKm: cfg.GeofenceRadiusKm,
	}
	if d, err := geo.Distance(self, dest); err == nil {
		eta := MinutesFor(d, cfg.AverageSpeedKmh)
		snap.DistanceKm = &d
		snap.StraightLineETA = &eta
		snap.WithinGeofence = d <= cfg.GeofenceRadiusKm
		snap.GeofenceVisible = d <= 2*cfg.GeofenceRadiusKm
	}
	return snap
}
