// Package lifecycle is the transaction state machine. It decides which
// transitions exist, who may trigger them, and which tracking features a
// status permits.
package lifecycle

import (
	"fmt"
	"foodia-handoff/domain"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionCollect  Action = "collect"
	ActionComplete Action = "complete"
)

type transition struct {
	from   domain.TransactionStatus
	action Action
}

type rule struct {
	to      domain.TransactionStatus
	parties []string
}

var table = map[transition]rule{
	{domain.StatusPending, ActionAccept}:     {domain.StatusAccepted, []string{domain.PartyOwner}},
	{domain.StatusPending, ActionReject}:     {domain.StatusRejected, []string{domain.PartyOwner}},
	{domain.StatusAccepted, ActionCollect}:   {domain.StatusCollected, []string{domain.PartyOwner}},
	{domain.StatusAccepted, ActionComplete}:  {domain.StatusCompleted, []string{domain.PartyOwner, domain.PartyRequester}},
	{domain.StatusCollected, ActionComplete}: {domain.StatusCompleted, []string{domain.PartyOwner, domain.PartyRequester}},
}

// Next returns the status reached when party applies action in from.
func Next(from domain.TransactionStatus, action Action, party string) (domain.TransactionStatus, error) {
	if party == "" {
		return from, domain.ErrNotTransactionParty
	}
	r, ok := table[transition{from, action}]
	if !ok {
		if action == ActionComplete && from == domain.StatusCompleted {
			return from, domain.ErrAlreadyCompleted
		}
		return from, fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, action, from)
	}
	for _, p := range r.parties {
		if p == party {
			return r.to, nil
		}
	}
	return from, domain.NewFieldError(domain.ErrPreconditionFailed, party, domain.FieldStatus,
		fmt.Sprintf("%s may not %s", party, action))
}

// TrackingActive reports whether live publishing and route recording are allowed.
func TrackingActive(s domain.TransactionStatus) bool {
	return s == domain.StatusAccepted
}

// RequireTracking is TrackingActive as an error.
func RequireTracking(s domain.TransactionStatus) error {
	if TrackingActive(s) {
		return nil
	}
	return fmt.Errorf("%w: status is %s", domain.ErrTrackingInactive, s)
}

func Terminal(s domain.TransactionStatus) bool {
	return s == domain.StatusCompleted || s == domain.StatusRejected
}

// HandoffEditable reports whether the meeting point may still be changed.
func HandoffEditable(s domain.TransactionStatus) bool {
	return s == domain.StatusPending || s == domain.StatusAccepted
}

// Shareable reports whether a share link may resolve in this status.
func Shareable(s domain.TransactionStatus) bool {
	return s == domain.StatusAccepted || s == domain.StatusCollected
}

// RouteFrozen reports whether the route path may no longer change.
func RouteFrozen(s domain.TransactionStatus) bool {
	return s != domain.StatusAccepted
}
