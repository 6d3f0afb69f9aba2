package handoff

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/lifecycle"
	"foodia-handoff/pkg/notification"
	"foodia-handoff/pkg/transaction"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	HandoffService interface {
		// ProposeHandoffPoint replaces the meeting point. The last write wins.
		ProposeHandoffPoint(ctx context.Context, transactionID string, actorID string, point domain.Coordinate) (*domain.Transaction, error)
	}

	handoffService struct {
		transactionRepository transaction.TransactionRepository
		channel               channel.LocationChannel
		notifier              notification.Notifier
		now                   func() time.Time
	}
)

var editableStatuses = []domain.TransactionStatus{domain.StatusPending, domain.StatusAccepted}

func NewHandoffService(transactionRepository transaction.TransactionRepository, ch channel.LocationChannel, notifier notification.Notifier) HandoffService {
	return &handoffService{
		transactionRepository: transactionRepository,
		channel:               ch,
		notifier:              notifier,
		now:                   time.Now,
	}
}

func (s *handoffService) ProposeHandoffPoint(ctx context.Context, transactionID string, actorID string, point domain.Coordinate) (*domain.Transaction, error) {
	if err := point.Validate(); err != nil {
		return nil, domain.NewFieldError(domain.ErrInvalidCoordinates, actorID, domain.FieldHandoffPoint, "lat/lng out of range")
	}

	tx, err := s.transactionRepository.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if actorID == "" || transaction.ToDomain(tx).PartyOf(actorID) == "" {
		return nil, domain.NewFieldError(domain.ErrNotTransactionParty, actorID, domain.FieldHandoffPoint, "only the requester or owner may set the meeting point")
	}
	status := domain.TransactionStatus(tx.Status)
	if !lifecycle.HandoffEditable(status) {
		return nil, domain.NewFieldError(domain.ErrInvalidTransition, actorID, domain.FieldHandoffPoint, "meeting point is fixed once the handoff is "+string(status))
	}

	point = point.WithTime(s.now())
	encoded, err := domain.EncodeCoordinate(&point)
	if err != nil {
		return nil, err
	}
	applied, err := s.transactionRepository.UpdateTransactionFields(ctx, transactionID, editableStatuses,
		map[string]interface{}{"handoff_point": encoded})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.NewFieldError(domain.ErrInvalidTransition, actorID, domain.FieldHandoffPoint, "status changed concurrently")
	}

	if s.channel != nil {
		if err := s.channel.Publish(ctx, channel.HandoffSubject(transactionID), point); err != nil {
			log.Warnf("transaction %s: handoff point broadcast dropped: %v", transactionID, err)
		}
	}

	updated, err := s.transactionRepository.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	notification.NotifyParties(ctx, s.notifier, updated, "Handoff point updated", notification.HandoffPointBody(point))
	return transaction.ToDomain(updated), nil
}
