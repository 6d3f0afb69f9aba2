package transaction

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/directions"
	"foodia-handoff/pkg/lifecycle"
	"foodia-handoff/pkg/tracking"
	"strings"
)

type (
	TrackingService interface {
		GetTracking(ctx context.Context, id string, actorID string) (*domain.TrackingSnapshot, error)
		// StreamTracking pushes live events to emit until ctx ends, emit fails or
		// the transaction leaves accepted.
		StreamTracking(ctx context.Context, id string, actorID string, emit tracking.Emitter) error
		GetDirections(ctx context.Context, id string, actorID string) (*domain.DirectionsSummary, error)
		Forward(ctx context.Context, query string) ([]domain.Place, error)
		Reverse(ctx context.Context, at domain.Coordinate) ([]domain.Place, error)
	}

	trackingService struct {
		transactionRepository TransactionRepository
		monitor               *tracking.Monitor
		sessions              *tracking.SessionManager
		directionsClient      directions.Client
		trackingConfig        tracking.Config
	}
)

func NewTrackingService(
	transactionRepository TransactionRepository,
	monitor *tracking.Monitor,
	sessions *tracking.SessionManager,
	directionsClient directions.Client,
	trackingConfig tracking.Config,
) TrackingService {
	return &trackingService{
		transactionRepository: transactionRepository,
		monitor:               monitor,
		sessions:              sessions,
		directionsClient:      directionsClient,
		trackingConfig:        trackingConfig,
	}
}

func (s *trackingService) GetTracking(ctx context.Context, id string, actorID string) (*domain.TrackingSnapshot, error) {
	tx, party, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return nil, err
	}
	snap := tracking.Snapshot(s.trackingConfig, ToDomain(tx), party)
	return &snap, nil
}

func (s *trackingService) StreamTracking(ctx context.Context, id string, actorID string, emit tracking.Emitter) error {
	tx, party, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return err
	}
	if err := lifecycle.RequireTracking(domain.TransactionStatus(tx.Status)); err != nil {
		return err
	}
	sessionCtx, ok := s.sessions.Context(id)
	if !ok {
		return domain.ErrSessionClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sessionCtx, cancel)
	defer stop()

	return s.monitor.Run(ctx, ToDomain(tx), party, emit)
}

func (s *trackingService) GetDirections(ctx context.Context, id string, actorID string) (*domain.DirectionsSummary, error) {
	tx, party, err := partyTransaction(ctx, s.transactionRepository, id, actorID)
	if err != nil {
		return nil, err
	}
	view := ToDomain(tx)
	self, counterparty := tracking.PartyLocations(view, party)
	dest := tracking.Destination(view.HandoffPoint, counterparty)
	if !domain.ValidCoordinate(self) || dest == nil {
		return nil, domain.ErrNoPosition
	}

	summary, err := directions.RouteOrStraightLine(ctx, s.directionsClient, *self, *dest)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *trackingService) Forward(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewFieldError(domain.ErrMissingRequiredField, "", "q", "search text is required")
	}
	if s.directionsClient == nil {
		return []domain.Place{}, nil
	}
	return s.directionsClient.Forward(ctx, query)
}

func (s *trackingService) Reverse(ctx context.Context, at domain.Coordinate) ([]domain.Place, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	if s.directionsClient == nil {
		return []domain.Place{}, nil
	}
	return s.directionsClient.Reverse(ctx, at)
}
