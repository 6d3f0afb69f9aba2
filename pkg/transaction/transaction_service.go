package transaction

import (
	"context"
	"errors"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/lifecycle"
	"foodia-handoff/pkg/notification"
	"foodia-handoff/pkg/route"
	"foodia-handoff/pkg/tracking"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var stampColumns = map[lifecycle.Action]string{
	lifecycle.ActionAccept:   "accepted_at",
	lifecycle.ActionCollect:  "collected_at",
	lifecycle.ActionComplete: "confirmed_at",
}

type (
	TransactionService interface {
		GetTransaction(ctx context.Context, id string, actorID string) (*domain.Transaction, error)
		Accept(ctx context.Context, id string, actorID string) (*domain.Transaction, error)
		Reject(ctx context.Context, id string, actorID string) (*domain.Transaction, error)
		MarkCollected(ctx context.Context, id string, actorID string) (*domain.Transaction, error)
		// ConfirmCompletion is the safety check-in. It succeeds at most once per
		// transaction.
		ConfirmCompletion(ctx context.Context, id string, actorID string, req domain.CompleteHandoffRequest) (*domain.Transaction, error)
		UpdateLocation(ctx context.Context, id string, actorID string, req domain.UpdateLocationRequest) (*domain.Coordinate, error)
		// ResumeSessions reopens tracking for every accepted transaction.
		ResumeSessions(ctx context.Context) (int, error)
	}

	transactionService struct {
		transactionRepository TransactionRepository
		channel               channel.LocationChannel
		sessions              *tracking.SessionManager
		routeService          route.RouteService
		notifier              notification.Notifier
		trackingConfig        tracking.Config
		now                   func() time.Time
	}
)

func NewTransactionService(
	transactionRepository TransactionRepository,
	ch channel.LocationChannel,
	sessions *tracking.SessionManager,
	routeService route.RouteService,
	notifier notification.Notifier,
	trackingConfig tracking.Config,
) TransactionService {
	return &transactionService{
		transactionRepository: transactionRepository,
		channel:               ch,
		sessions:              sessions,
		routeService:          routeService,
		notifier:              notifier,
		trackingConfig:        trackingConfig,
		now:                   time.Now,
	}
}

// partyTransaction loads id and resolves actorID's side of it.
func partyTransaction(ctx context.Context, repo TransactionRepository, id, actorID string) (*entities.Transaction, string, error) {
	tx, err := repo.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	party := ToDomain(tx).PartyOf(actorID)
	if party == "" || actorID == "" {
		return nil, "", domain.ErrNotTransactionParty
	}
	return tx, party, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	tx, _, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return nil, err
	}
	return ToDomain(tx), nil
}

func (s *transactionService) Accept(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return s.transition(ctx, id, actorID, lifecycle.ActionAccept, nil)
}

func (s *transactionService) Reject(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return s.transition(ctx, id, actorID, lifecycle.ActionReject, nil)
}

func (s *transactionService) MarkCollected(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return s.transition(ctx, id, actorID, lifecycle.ActionCollect, nil)
}

func (s *transactionService) ConfirmCompletion(ctx context.Context, id string, actorID string, req domain.CompleteHandoffRequest) (*domain.Transaction, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, domain.NewFieldError(domain.ErrInvalidRating, actorID, domain.FieldRating,
			fmt.Sprintf("got %d", *req.Rating))
	}

	extra := map[string]interface{}{
		"feedback":           req.Feedback,
		"share_enabled":      false,
		"share_token_digest": nil,
		"share_expires_at":   nil,
	}
	if req.Rating != nil {
		extra["rating"] = *req.Rating
	}
	if actor, err := uuid.Parse(actorID); err == nil {
		extra["confirmed_by"] = actor
	}

	return s.transition(ctx, id, actorID, lifecycle.ActionComplete, extra)
}

func (s *transactionService) transition(ctx context.Context, id, actorID string, action lifecycle.Action, extra map[string]interface{}) (*domain.Transaction, error) {
	tx, party, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return nil, err
	}
	from := domain.TransactionStatus(tx.Status)
	next, err := lifecycle.Next(from, action, party)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"status": string(next)}
	if column, ok := stampColumns[action]; ok {
		fields[column] = s.now()
	}
	for k, v := range extra {
		fields[k] = v
	}

	applied, err := s.transactionRepository.UpdateTransactionFields(ctx, id, []domain.TransactionStatus{from}, fields)
	if err != nil {
		return nil, err
	}
	if !applied {
		// lost a race with another transition
		current, err := s.transactionRepository.GetTransactionByID(ctx, id)
		if err == nil && action == lifecycle.ActionComplete && current.Status == string(domain.StatusCompleted) {
			return nil, domain.ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("%w: status changed concurrently", domain.ErrInvalidTransition)
	}
	log.Infof("transaction %s: %s -> %s by %s", id, from, next, party)

	s.afterTransition(ctx, id, next)

	updated, err := s.transactionRepository.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if next == domain.StatusCompleted {
		notification.NotifyParties(ctx, s.notifier, updated, "Handoff completed", notification.CompletionBody(updated))
	}
	return ToDomain(updated), nil
}

// afterTransition starts or tears down the live session for the new status.
func (s *transactionService) afterTransition(ctx context.Context, id string, status domain.TransactionStatus) {
	if lifecycle.TrackingActive(status) {
		s.startSession(id)
		return
	}
	if s.sessions != nil {
		s.sessions.Close(id)
	}
	if lifecycle.Terminal(status) && s.channel != nil {
		for _, subject := range []string{channel.RequesterSubject(id), channel.OwnerSubject(id), channel.HandoffSubject(id)} {
			if err := s.channel.Forget(ctx, subject); err != nil {
				log.Warnf("transaction %s: retained %s not cleared: %v", id, subject, err)
			}
		}
	}
	if status == domain.StatusCompleted && s.routeService != nil {
		if _, err := s.routeService.Archive(ctx, id); err != nil {
			log.Warnf("transaction %s: route archive failed: %v", id, err)
		}
	}
}

func (s *transactionService) startSession(id string) {
	if s.sessions == nil {
		return
	}
	s.sessions.Open(id)
	if s.routeService == nil {
		return
	}
	err := s.sessions.Go(id, "route-recorder", func(ctx context.Context) error {
		return s.routeService.Record(ctx, id)
	})
	if err != nil {
		log.Warnf("transaction %s: route recorder not started: %v", id, err)
	}
}

func (s *transactionService) UpdateLocation(ctx context.Context, id string, actorID string, req domain.UpdateLocationRequest) (*domain.Coordinate, error) {
	loc, err := req.Coordinate()
	if err != nil {
		return nil, domain.NewFieldError(domain.ErrInvalidCoordinates, actorID, req.Field, "lat/lng missing or out of range")
	}
	tx, party, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return nil, err
	}

	owned := OwnedLocationField(party)
	field := req.Field
	if field == "" {
		field = owned
	}
	if field != owned {
		return nil, domain.NewFieldError(domain.ErrFieldNotOwned, actorID, field, "written only by the other party")
	}
	column, _ := LocationColumn(field)

	stored := tx.OwnerLocation
	if field == domain.FieldRequesterLocation {
		stored = tx.RequesterLocation
	}
	sink := &columnSink{
		repo:          s.transactionRepository,
		channel:       s.channel,
		transactionID: id,
		column:        column,
		stored:        domain.DecodeCoordinate(stored),
	}
	status := domain.TransactionStatus(tx.Status)
	gate := tracking.StatusGate(func(context.Context) (domain.TransactionStatus, error) {
		return status, nil
	})
	publisher := tracking.NewLocationPublisher(s.trackingConfig, nil, sink, gate, tracking.WithClock(s.now))

	if err := publisher.Publish(ctx, channel.PartySubject(id, party), loc); err != nil {
		if errors.Is(err, domain.ErrTrackingInactive) {
			return nil, domain.NewFieldError(domain.ErrTrackingInactive, actorID, field, "status is "+string(sink.statusOr(status)))
		}
		return nil, err
	}
	return &sink.written, nil
}

func (s *transactionService) ResumeSessions(ctx context.Context) (int, error) {
	accepted, err := s.transactionRepository.ListTransactionsByStatus(ctx, domain.StatusAccepted)
	if err != nil {
		return 0, err
	}
	for _, tx := range accepted {
		s.startSession(tx.ID.String())
	}
	return len(accepted), nil
}

// columnSink persists a published location to its column, then broadcasts it.
// The column write only lands while the transaction is accepted, and a fix
// no newer than the stored one is dropped.
type columnSink struct {
	repo          TransactionRepository
	channel       channel.LocationChannel
	transactionID string
	column        string
	stored        *domain.Coordinate

	written  domain.Coordinate
	rejected bool
}

func (k *columnSink) Publish(ctx context.Context, subject string, loc domain.Coordinate) error {
	if k.stored != nil && loc.Timestamp <= k.stored.Timestamp {
		log.Debugf("transaction %s: stale %s at %d dropped, stored %d", k.transactionID, k.column, loc.Timestamp, k.stored.Timestamp)
		k.written = *k.stored
		return nil
	}
	encoded, err := domain.EncodeCoordinate(&loc)
	if err != nil {
		return err
	}
	applied, err := k.repo.UpdateTransactionFields(ctx, k.transactionID,
		[]domain.TransactionStatus{domain.StatusAccepted},
		map[string]interface{}{k.column: encoded})
	if err != nil {
		return err
	}
	if !applied {
		k.rejected = true
		return domain.ErrTrackingInactive
	}
	k.written = loc

	if k.channel != nil {
		if err := k.channel.Publish(ctx, subject, loc); err != nil {
			log.Warnf("transaction %s: location broadcast dropped: %v", k.transactionID, err)
		}
	}
	return nil
}

func (k *columnSink) statusOr(loaded domain.TransactionStatus) domain.TransactionStatus {
	if k.rejected {
		return "no longer accepted"
	}
	return loaded
}
