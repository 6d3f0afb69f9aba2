package domain

import "time"

var (
	MessageSuccessGetRoute  = "route retrieved successfully"
	MessageSuccessGetReplay = "route replay frame retrieved successfully"
	MessageFailedGetRoute   = "failed to retrieve route"
	MessageFailedGetReplay  = "failed to retrieve route replay frame"

	ErrRouteFrozen        = newKindError(ErrPreconditionFailed, "route path is frozen")
	ErrStaleRoutePoint    = newKindError(ErrValidation, "route point is not newer than the last recorded point")
	ErrEmptyRoute         = newKindError(ErrNotFound, "no route recorded")
	ErrInvalidReplaySpeed = newKindError(ErrValidation, "replay speed must be positive")
	ErrReplayUnavailable  = newKindError(ErrPreconditionFailed, "route is still being recorded")
)

// RoutePoint is one recorded sample. Wire shape {lat, lng, timestamp}.
type RoutePoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

func (p RoutePoint) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lng: p.Lng, Timestamp: p.Timestamp}
}

func (p RoutePoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

type (
	Bounds struct {
		MinLat float64 `json:"min_lat"`
		MinLng float64 `json:"min_lng"`
		MaxLat float64 `json:"max_lat"`
		MaxLng float64 `json:"max_lng"`
	}

	RouteResponse struct {
		TransactionID string       `json:"transaction_id"`
		Status        string       `json:"status"`
		Points        []RoutePoint `json:"points"`
		Bounds        *Bounds      `json:"bounds,omitempty"`
		DistanceKm    float64      `json:"distance_km"`
		DurationSecs  float64      `json:"duration_seconds"`
		ArchiveURL    string       `json:"archive_url,omitempty"`
	}

	ReplayFrame struct {
		Cursor    int          `json:"cursor"`
		Total     int          `json:"total"`
		Progress  float64      `json:"progress"`
		Current   RoutePoint   `json:"current"`
		Traveled  []RoutePoint `json:"traveled"`
		Remaining []RoutePoint `json:"remaining"`
	}
)
