// Package geo holds the distance and bounds math used by tracking and replay.
package geo

import (
	"foodia-handoff/domain"
	"math"
)

const EarthRadiusKm = 6371.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b domain.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Distance validates both ends before measuring.
func Distance(a, b *domain.Coordinate) (float64, error) {
	if !domain.ValidCoordinate(a) || !domain.ValidCoordinate(b) {
		return 0, domain.ErrInvalidCoordinates
	}
	return HaversineKm(*a, *b), nil
}

// PathLengthKm sums the leg distances along points.
func PathLengthKm(points []domain.RoutePoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1].Coordinate(), points[i].Coordinate())
	}
	return total
}

// Bounds returns the bounding box of points grown by padding degrees on every
// side. ok is false for an empty path.
func Bounds(points []domain.RoutePoint, padding float64) (domain.Bounds, bool) {
	if len(points) == 0 {
		return domain.Bounds{}, false
	}
	b := domain.Bounds{
		MinLat: points[0].Lat,
		MaxLat: points[0].Lat,
		MinLng: points[0].Lng,
		MaxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	b.MinLat = math.Max(-90, b.MinLat-padding)
	b.MaxLat = math.Min(90, b.MaxLat+padding)
	b.MinLng = math.Max(-180, b.MinLng-padding)
	b.MaxLng = math.Min(180, b.MaxLng+padding)
	return b, true
}

// Interpolate walks from a toward b by fraction f in [0,1]. Used by the
// simulator to move a device along a straight line.
func Interpolate(a, b domain.Coordinate, f float64) domain.Coordinate {
	f = math.Max(0, math.Min(1, f))
	return domain.Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lng: a.Lng + (b.Lng-a.Lng)*f,
	}
}
