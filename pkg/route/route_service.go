package route

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"foodia-handoff/pkg/geo"
	"foodia-handoff/pkg/lifecycle"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// boundsPadding is the margin, in degrees, added around a replayed path.
const boundsPadding = 0.002

type (
	// TransactionReader is the slice of the transaction store this package needs.
	TransactionReader interface {
		GetTransactionByID(ctx context.Context, id string) (*entities.Transaction, error)
	}

	RouteService interface {
		GetRoute(ctx context.Context, transactionID string, actorID string) (*domain.RouteResponse, error)
		GetReplayFrame(ctx context.Context, transactionID string, actorID string, cursor int) (*domain.ReplayFrame, error)
		NewReplay(ctx context.Context, transactionID string, actorID string, opts ...ReplayOption) (*ReplayEngine, error)
		// Record appends the owner's live positions until ctx ends or the path freezes.
		Record(ctx context.Context, transactionID string) error
		// Archive uploads the frozen path and stores its public link.
		Archive(ctx context.Context, transactionID string) (string, error)
	}

	routeService struct {
		routeRepository RouteRepository
		transactions    TransactionReader
		recorder        *Recorder
		archiver        *Archiver
		replayConfig    ReplayConfig
		now             func() time.Time
	}
)

func NewRouteService(routeRepository RouteRepository, transactions TransactionReader, recorder *Recorder, archiver *Archiver, replayConfig ReplayConfig) RouteService {
	return &routeService{
		routeRepository: routeRepository,
		transactions:    transactions,
		recorder:        recorder,
		archiver:        archiver,
		replayConfig:    replayConfig,
		now:             time.Now,
	}
}

func (s *routeService) partyTransaction(ctx context.Context, transactionID, actorID string) (*entities.Transaction, error) {
	tx, err := s.transactions.GetTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrTransactionNotFound
	}
	if tx.OwnerID.String() != actorID && tx.RequesterID.String() != actorID {
		return nil, domain.ErrNotTransactionParty
	}
	return tx, nil
}

func (s *routeService) points(ctx context.Context, transactionID string) ([]domain.RoutePoint, error) {
	rows, err := s.routeRepository.GetRoutePoints(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return toRoutePoints(rows), nil
}

func (s *routeService) GetRoute(ctx context.Context, transactionID string, actorID string) (*domain.RouteResponse, error) {
	tx, err := s.partyTransaction(ctx, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	points, err := s.points(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	resp := &domain.RouteResponse{
		TransactionID: transactionID,
		Status:        tx.Status,
		Points:        points,
		DistanceKm:    geo.PathLengthKm(points),
		ArchiveURL:    tx.RouteArchiveURL,
	}
	if b, ok := geo.Bounds(points, boundsPadding); ok {
		resp.Bounds = &b
	}
	if len(points) > 1 {
		resp.DurationSecs = float64(points[len(points)-1].Timestamp-points[0].Timestamp) / 1000
	}
	return resp, nil
}

func (s *routeService) replayablePoints(ctx context.Context, transactionID, actorID string) ([]domain.RoutePoint, error) {
	tx, err := s.partyTransaction(ctx, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.RouteFrozen(domain.TransactionStatus(tx.Status)) {
		return nil, domain.ErrReplayUnavailable
	}
	points, err := s.points(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, domain.ErrEmptyRoute
	}
	return points, nil
}

func (s *routeService) GetReplayFrame(ctx context.Context, transactionID string, actorID string, cursor int) (*domain.ReplayFrame, error) {
	points, err := s.replayablePoints(ctx, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	frame := SplitAt(points, cursor)
	return &frame, nil
}

func (s *routeService) NewReplay(ctx context.Context, transactionID string, actorID string, opts ...ReplayOption) (*ReplayEngine, error) {
	points, err := s.replayablePoints(ctx, transactionID, actorID)
	if err != nil {
		return nil, err
	}
	return NewReplayEngine(s.replayConfig, points, opts...)
}

func (s *routeService) Record(ctx context.Context, transactionID string) error {
	return s.recorder.Run(ctx, transactionID)
}

func (s *routeService) Archive(ctx context.Context, transactionID string) (string, error) {
	tx, err := s.transactions.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return "", err
	}
	status := domain.TransactionStatus(tx.Status)
	if !lifecycle.RouteFrozen(status) {
		return "", domain.ErrReplayUnavailable
	}
	points, err := s.points(ctx, transactionID)
	if err != nil {
		return "", err
	}
	if len(points) == 0 || s.archiver == nil {
		return "", nil
	}

	at := s.now()
	body, err := EncodeGeoJSON(transactionID, status, points, geo.PathLengthKm(points), at)
	if err != nil {
		return "", err
	}
	url, err := s.archiver.Upload(ctx, transactionID, at, body)
	if err != nil {
		return "", err
	}
	if err := s.routeRepository.SetArchiveURL(ctx, transactionID, url); err != nil {
		return "", err
	}
	if stale := tx.RouteArchiveURL; stale != "" && stale != url {
		if err := s.archiver.Remove(ctx, stale); err != nil {
			log.Warnf("transaction %s: stale route archive kept: %v", transactionID, err)
		}
	}
	return url, nil
}
