package domain

import "time"

var (
	MessageSuccessEnableShare  = "trip sharing enabled"
	MessageSuccessDisableShare = "trip sharing disabled"
	MessageSuccessResolveShare = "shared trip retrieved successfully"

	MessageFailedEnableShare  = "failed to enable trip sharing"
	MessageFailedDisableShare = "failed to disable trip sharing"
	MessageFailedResolveShare = "shared trip not found"

	// ErrShareNotFound is returned for every token that does not resolve,
	// whatever the reason.
	ErrShareNotFound = newKindError(ErrNotFound, "shared trip not found")
)

type (
	ShareLink struct {
		Token     string    `json:"token"`
		URL       string    `json:"url"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	// ShareProjection is the only shape a non-party ever sees.
	ShareProjection struct {
		RequesterLocation *Coordinate `json:"requesterLocation,omitempty"`
		OwnerLocation     *Coordinate `json:"ownerLocation,omitempty"`
		HandoffPoint      *Coordinate `json:"handoffPoint,omitempty"`
		ShareEnabled      bool        `json:"shareEnabled"`
		OwnerName         string      `json:"ownerName"`
		FoodItemTitle     string      `json:"foodItemTitle"`
		PickupOrDelivery  string      `json:"pickupOrDelivery"`
	}
)
