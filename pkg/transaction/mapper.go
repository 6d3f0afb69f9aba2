package transaction

import (
	"foodia-handoff/domain"
	"foodia-handoff/entities"
)

// ToDomain converts a stored transaction. Coordinate columns that fail to
// parse come back as nil.
func ToDomain(e *entities.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:                e.ID.String(),
		RequesterID:       e.RequesterID.String(),
		OwnerID:           e.OwnerID.String(),
		FoodItemID:        e.FoodItemID.String(),
		Status:            domain.TransactionStatus(e.Status),
		PickupOrDelivery:  e.PickupOrDelivery,
		HandoffPoint:      domain.DecodeCoordinate(e.HandoffPoint),
		RequesterLocation: domain.DecodeCoordinate(e.RequesterLocation),
		OwnerLocation:     domain.DecodeCoordinate(e.OwnerLocation),
		Rating:            e.Rating,
		Feedback:          e.Feedback,
		ConfirmedAt:       e.ConfirmedAt,
		ShareEnabled:      e.ShareEnabled,
		RouteArchiveURL:   e.RouteArchiveURL,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// LocationColumn maps a writable location field to its column.
func LocationColumn(field string) (string, bool) {
	switch field {
	case domain.FieldRequesterLocation:
		return "requester_location", true
	case domain.FieldOwnerLocation:
		return "owner_location", true
	case domain.FieldHandoffPoint:
		return "handoff_point", true
	}
	return "", false
}

// OwnedLocationField is the location field party may write.
func OwnedLocationField(party string) string {
	switch party {
	case domain.PartyRequester:
		return domain.FieldRequesterLocation
	case domain.PartyOwner:
		return domain.FieldOwnerLocation
	}
	return ""
}
