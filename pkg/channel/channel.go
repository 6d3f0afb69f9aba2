// Package channel carries live coordinates between the two devices of a
// transaction. Delivery is best effort and latest-wins per subject.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"foodia-handoff/domain"
)

type (
	Handler func(domain.Coordinate)

	// Unsubscribe stops further callbacks before it returns. It must not be
	// called from inside the Handler it cancels.
	Unsubscribe func()

	LocationChannel interface {
		Publish(ctx context.Context, subject string, loc domain.Coordinate) error
		Subscribe(subject string, fn Handler) (Unsubscribe, error)
		// Forget clears the retained value of subject so late subscribers get nothing.
		Forget(ctx context.Context, subject string) error
		Close() error
	}
)

const subjectRoot = "handoff"

var errChannelClosed = errors.New("channel closed")

func PartySubject(transactionID, party string) string {
	return fmt.Sprintf("%s/%s/%s", subjectRoot, transactionID, party)
}

func RequesterSubject(transactionID string) string {
	return PartySubject(transactionID, domain.PartyRequester)
}

func OwnerSubject(transactionID string) string {
	return PartySubject(transactionID, domain.PartyOwner)
}

func HandoffSubject(transactionID string) string {
	return PartySubject(transactionID, "handoff-point")
}

func encode(loc domain.Coordinate) ([]byte, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(loc)
}

func decode(payload []byte) (domain.Coordinate, bool) {
	c := domain.DecodeCoordinate(string(payload))
	if c == nil {
		return domain.Coordinate{}, false
	}
	return *c, true
}
