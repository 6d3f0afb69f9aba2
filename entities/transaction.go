package entities

import (
	"github.com/google/uuid"
	"time"
)

// Transaction is one pickup/delivery handoff between a requester and an owner.
// Coordinates are stored as serialized JSON text, see domain.EncodeCoordinate.
type Transaction struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	RequesterID       uuid.UUID  `gorm:"type:uuid;index" json:"requester_id"`
	OwnerID           uuid.UUID  `gorm:"type:uuid;index" json:"owner_id"`
	FoodItemID        uuid.UUID  `gorm:"type:uuid" json:"food_item_id"`
	Status            string     `gorm:"index;not null;default:pending" json:"status"`
	PickupOrDelivery  string     `gorm:"not null;default:pickup" json:"pickup_or_delivery"`
	HandoffPoint      string     `gorm:"type:text" json:"handoff_point"`
	RequesterLocation string     `gorm:"type:text" json:"requester_location"`
	OwnerLocation     string     `gorm:"type:text" json:"owner_location"`
	Rating            *int       `json:"rating,omitempty"`
	Feedback          string     `gorm:"type:text" json:"feedback,omitempty"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	CollectedAt       *time.Time `json:"collected_at,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy       *uuid.UUID `gorm:"type:uuid" json:"confirmed_by,omitempty"`
	ShareTokenDigest  *string    `gorm:"uniqueIndex" json:"-"`
	ShareEnabled      bool       `gorm:"not null;default:false" json:"share_enabled"`
	ShareExpiresAt    *time.Time `json:"-"`
	RouteArchiveURL   string     `json:"route_archive_url,omitempty"`

	Requester   *User         `gorm:"foreignKey:RequesterID"`
	Owner       *User         `gorm:"foreignKey:OwnerID"`
	FoodItem    *FoodItem     `gorm:"foreignKey:FoodItemID"`
	RoutePoints []*RoutePoint `gorm:"foreignKey:TransactionID"`
	Timestamp
}
