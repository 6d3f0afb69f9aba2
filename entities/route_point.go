package entities

import (
	"github.com/google/uuid"
)

// RoutePoint is one owner sample recorded while the transaction was accepted.
// RecordedAt is unix milliseconds and strictly increases per transaction.
type RoutePoint struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_route_point_ts" json:"transaction_id"`
	Seq           int       `gorm:"not null" json:"seq"`
	Lat           float64   `gorm:"not null" json:"lat"`
	Lng           float64   `gorm:"not null" json:"lng"`
	RecordedAt    int64     `gorm:"not null;uniqueIndex:idx_route_point_ts" json:"timestamp"`
}
