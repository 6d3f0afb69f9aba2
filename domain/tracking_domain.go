package domain

import "time"

// Writable transaction fields, used for ownership checks and error attribution.
const (
	FieldRequesterLocation = "requesterLocation"
	FieldOwnerLocation     = "ownerLocation"
	FieldHandoffPoint      = "handoffPoint"
	FieldRoutePath         = "routePath"
	FieldStatus            = "status"
	FieldShare             = "shareEnabled"
	FieldRating            = "rating"
)

const (
	GeofenceInactive = "inactive"
	GeofenceHidden   = "hidden"
	GeofenceVisible  = "visible"

	GeofenceEventNone    = ""
	GeofenceEventEntered = "entered"
	GeofenceEventExited  = "exited"

	EventLocation     = "location"
	EventHandoffPoint = "handoff_point"
	EventGeofence     = "geofence"
	EventETA          = "eta"
	EventClosed       = "closed"
)

var (
	MessageSuccessGetTracking   = "tracking snapshot retrieved successfully"
	MessageSuccessGetDirections = "directions retrieved successfully"
	MessageSuccessGeocode       = "geocoding results retrieved successfully"

	MessageFailedGetTracking   = "failed to retrieve tracking snapshot"
	MessageFailedGetDirections = "failed to retrieve directions"
	MessageFailedGeocode       = "failed to geocode"
	MessageFailedOpenStream    = "failed to open tracking stream"

	ErrSessionClosed = newKindError(ErrPreconditionFailed, "tracking session closed")
	ErrNoPosition    = newKindError(ErrTransientIO, "no position available")
)

type (
	GeofenceReading struct {
		State      string  `json:"state"`
		DistanceKm float64 `json:"distance_km"`
		RadiusKm   float64 `json:"radius_km"`
		Inside     bool    `json:"inside"`
		Event      string  `json:"event,omitempty"`
	}

	ETAEstimate struct {
		Minutes    int       `json:"minutes"`
		DistanceKm float64   `json:"distance_km"`
		Change     *int      `json:"eta_change,omitempty"`
		ComputedAt time.Time `json:"computed_at"`
	}

	// TrackingEvent is one frame pushed to a live viewer.
	TrackingEvent struct {
		Type          string           `json:"type"`
		TransactionID string           `json:"transaction_id"`
		Party         string           `json:"party,omitempty"`
		Location      *Coordinate      `json:"location,omitempty"`
		Geofence      *GeofenceReading `json:"geofence,omitempty"`
		ETA           *ETAEstimate     `json:"eta,omitempty"`
		At            time.Time        `json:"at"`
	}

	TrackingSnapshot struct {
		TransactionID    string            `json:"transaction_id"`
		Status           TransactionStatus `json:"status"`
		Viewer           string            `json:"viewer"`
		SelfLocation     *Coordinate       `json:"self_location,omitempty"`
		CounterpartyLoc  *Coordinate       `json:"counterparty_location,omitempty"`
		HandoffPoint     *Coordinate       `json:"handoff_point,omitempty"`
		Destination      *Coordinate       `json:"destination,omitempty"`
		DistanceKm       *float64          `json:"distance_km,omitempty"`
		StraightLineETA  *int              `json:"straight_line_eta_minutes,omitempty"`
		GeofenceRadiusKm float64           `json:"geofence_radius_km"`
		WithinGeofence   bool              `json:"within_geofence"`
		GeofenceVisible  bool              `json:"geofence_visible"`
	}

	RouteStep struct {
		Instruction    string  `json:"instruction"`
		DistanceMeters float64 `json:"distance_meters"`
		DurationSecs   float64 `json:"duration_seconds"`
	}

	// DirectionsSummary is what a viewer gets for the active route. Routed is
	// false when the provider gave nothing and only straight-line distance is known.
	DirectionsSummary struct {
		Routed         bool         `json:"routed"`
		Geometry       [][2]float64 `json:"geometry,omitempty"`
		DistanceMeters float64      `json:"distance_meters"`
		DurationSecs   float64      `json:"duration_seconds,omitempty"`
		Steps          []RouteStep  `json:"steps,omitempty"`
	}

	Place struct {
		Name   string     `json:"place_name"`
		Center Coordinate `json:"center"`
	}
)
