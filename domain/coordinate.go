package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Coordinate is a WGS84 position. Timestamp is unix milliseconds when set.
type Coordinate struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	PlaceName string  `json:"placeName,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return ErrInvalidCoordinates
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

func (c Coordinate) Time() time.Time {
	if c.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.Timestamp)
}

// WithTime returns a copy stamped with t.
func (c Coordinate) WithTime(t time.Time) Coordinate {
	c.Timestamp = t.UnixMilli()
	return c
}

// ValidCoordinate reports whether c is non-nil and in range.
func ValidCoordinate(c *Coordinate) bool {
	return c != nil && c.Validate() == nil
}

// EncodeCoordinate serializes a coordinate for a text column. nil encodes to "".
func EncodeCoordinate(c *Coordinate) (string, error) {
	if c == nil {
		return "", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCoordinate reads a stored coordinate. It accepts a JSON object or a JSON
// string holding an object (double-encoded rows written by older clients).
// Empty or unparseable input yields nil.
func DecodeCoordinate(raw string) *Coordinate {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil
		}
		return DecodeCoordinate(inner)
	}
	var c Coordinate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	if c.Validate() != nil {
		return nil
	}
	return &c
}

// CoordinatePayload is the request body for any coordinate write.
type CoordinatePayload struct {
	Lat       *float64 `json:"lat" validate:"required,latitude"`
	Lng       *float64 `json:"lng" validate:"required,longitude"`
	PlaceName string   `json:"placeName" validate:"omitempty,max=255"`
	Timestamp int64    `json:"timestamp" validate:"omitempty,gte=0"`
}

func (p CoordinatePayload) Coordinate() (Coordinate, error) {
	if p.Lat == nil || p.Lng == nil {
		return Coordinate{}, ErrInvalidCoordinates
	}
	c := Coordinate{Lat: *p.Lat, Lng: *p.Lng, PlaceName: strings.TrimSpace(p.PlaceName), Timestamp: p.Timestamp}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}
