package domain

import (
	"time"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusAccepted  TransactionStatus = "accepted"
	StatusRejected  TransactionStatus = "rejected"
	StatusCollected TransactionStatus = "collected"
	StatusCompleted TransactionStatus = "completed"

	ModePickup   = "pickup"
	ModeDelivery = "delivery"
)

var (
	MessageSuccessGetTransaction    = "transaction retrieved successfully"
	MessageSuccessAcceptTransaction = "transaction accepted successfully"
	MessageSuccessRejectTransaction = "transaction rejected successfully"
	MessageSuccessMarkCollected     = "transaction marked as collected"
	MessageSuccessCompleteHandoff   = "handoff confirmed successfully"
	MessageSuccessUpdateLocation    = "location updated successfully"
	MessageSuccessProposeHandoff    = "handoff point updated successfully"

	MessageFailedGetTransaction    = "failed to retrieve transaction"
	MessageFailedAcceptTransaction = "failed to accept transaction"
	MessageFailedRejectTransaction = "failed to reject transaction"
	MessageFailedMarkCollected     = "failed to mark transaction as collected"
	MessageFailedCompleteHandoff   = "failed to confirm handoff"
	MessageFailedUpdateLocation    = "failed to update location"
	MessageFailedProposeHandoff    = "failed to update handoff point"

	ErrTransactionNotFound  = newKindError(ErrNotFound, "transaction not found")
	ErrNotTransactionParty  = newKindError(ErrPreconditionFailed, "actor is not a party to this transaction")
	ErrInvalidTransition    = newKindError(ErrPreconditionFailed, "transition not allowed from current status")
	ErrTrackingInactive     = newKindError(ErrPreconditionFailed, "tracking is not active for this transaction")
	ErrAlreadyCompleted     = newKindError(ErrPreconditionFailed, "transaction already completed")
	ErrFieldNotOwned        = newKindError(ErrPreconditionFailed, "actor does not own this field")
	ErrInvalidCoordinates   = newKindError(ErrValidation, "invalid coordinates")
	ErrInvalidRating        = newKindError(ErrValidation, "rating must be between 1 and 5")
	ErrMissingRequiredField = newKindError(ErrValidation, "missing required field")
)

type (
	Transaction struct {
		ID                string            `json:"id"`
		RequesterID       string            `json:"requester_id"`
		OwnerID           string            `json:"owner_id"`
		FoodItemID        string            `json:"food_item_id"`
		Status            TransactionStatus `json:"status"`
		PickupOrDelivery  string            `json:"pickup_or_delivery"`
		HandoffPoint      *Coordinate       `json:"handoff_point,omitempty"`
		RequesterLocation *Coordinate       `json:"requester_location,omitempty"`
		OwnerLocation     *Coordinate       `json:"owner_location,omitempty"`
		Rating            *int              `json:"rating,omitempty"`
		Feedback          string            `json:"feedback,omitempty"`
		ConfirmedAt       *time.Time        `json:"confirmed_at,omitempty"`
		ShareEnabled      bool              `json:"share_enabled"`
		RouteArchiveURL   string            `json:"route_archive_url,omitempty"`
		CreatedAt         time.Time         `json:"created_at"`
		UpdatedAt         time.Time         `json:"updated_at"`
	}

	CompleteHandoffRequest struct {
		Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5"`
		Feedback string `json:"feedback" validate:"omitempty,max=1000"`
	}

	ProposeHandoffPointRequest struct {
		CoordinatePayload
	}

	// UpdateLocationRequest writes one party location. Field defaults to the
	// caller's own location.
	UpdateLocationRequest struct {
		CoordinatePayload
		Field string `json:"field" validate:"omitempty,oneof=requesterLocation ownerLocation"`
	}

	// Notification is one message to a single recipient.
	Notification struct {
		TransactionID string
		ToName        string
		ToEmail       string
		Subject       string
		Body          string
	}
)

// PartyOf returns which side of the transaction actorID is on, or "" for a non-party.
func (t *Transaction) PartyOf(actorID string) string {
	switch actorID {
	case t.OwnerID:
		return PartyOwner
	case t.RequesterID:
		return PartyRequester
	default:
		return ""
	}
}
