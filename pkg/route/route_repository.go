package route

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RouteRepository interface {
		// AppendRoutePoint adds p to the path while the transaction is accepted
		// and p is newer than every recorded point.
		AppendRoutePoint(ctx context.Context, transactionID string, p domain.RoutePoint) error
		GetRoutePoints(ctx context.Context, transactionID string) ([]*entities.RoutePoint, error)
		GetLastRoutePoint(ctx context.Context, transactionID string) (*entities.RoutePoint, error)
		SetArchiveURL(ctx context.Context, transactionID string, url string) error
	}

	routeRepository struct {
		db *gorm.DB
	}
)

func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) AppendRoutePoint(ctx context.Context, transactionID string, p domain.RoutePoint) error {
	txUUID, err := uuid.Parse(transactionID)
	if err != nil {
		return domain.ErrTransactionNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent entities.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", transactionID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}
		if parent.Status != string(domain.StatusAccepted) {
			return domain.ErrRouteFrozen
		}

		var last struct {
			MaxTs *int64
			Total int
		}
		if err := tx.Model(&entities.RoutePoint{}).
			Select("MAX(recorded_at) AS max_ts, COUNT(*) AS total").
			Where("transaction_id = ?", transactionID).
			Scan(&last).Error; err != nil {
			return err
		}
		if last.MaxTs != nil && p.Timestamp <= *last.MaxTs {
			return domain.ErrStaleRoutePoint
		}

		return tx.Create(&entities.RoutePoint{
			TransactionID: txUUID,
			Seq:           last.Total,
			Lat:           p.Lat,
			Lng:           p.Lng,
			RecordedAt:    p.Timestamp,
		}).Error
	})
}

func (r *routeRepository) GetRoutePoints(ctx context.Context, transactionID string) ([]*entities.RoutePoint, error) {
	var points []*entities.RoutePoint
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("recorded_at ASC").
		Find(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

func (r *routeRepository) GetLastRoutePoint(ctx context.Context, transactionID string) (*entities.RoutePoint, error) {
	var point entities.RoutePoint
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("recorded_at DESC").
		First(&point).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &point, nil
}

func (r *routeRepository) SetArchiveURL(ctx context.Context, transactionID string, url string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Transaction{}).
		Where("id = ?", transactionID).
		Update("route_archive_url", url).Error
}

func toRoutePoints(rows []*entities.RoutePoint) []domain.RoutePoint {
	points := make([]domain.RoutePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.RoutePoint{Lat: row.Lat, Lng: row.Lng, Timestamp: row.RecordedAt})
	}
	return points
}
