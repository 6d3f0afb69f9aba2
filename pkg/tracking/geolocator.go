package tracking

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
	"math/rand"
	"sync"
)

type Accuracy int

const (
	HighAccuracy Accuracy = iota
	LowAccuracy
)

func (a Accuracy) String() string {
	if a == HighAccuracy {
		return "high"
	}
	return "low"
}

// Geolocator acquires the device position. Implementations honour ctx as the
// acquisition timeout.
type Geolocator interface {
	Locate(ctx context.Context, accuracy Accuracy) (domain.Coordinate, error)
}

var ErrSignalLost = errors.New("position unavailable")

// SimulatedGeolocator walks a straight line from a start point toward a
// target. High-accuracy fixes fail at FailRate; low-accuracy fixes always
// succeed but carry jitter.
type SimulatedGeolocator struct {
	mu       sync.Mutex
	pos      domain.Coordinate
	target   domain.Coordinate
	stepKm   float64
	failRate float64
	jitter   float64
	rnd      *rand.Rand
}

func NewSimulatedGeolocator(start, target domain.Coordinate, stepKm, failRate float64, seed int64) *SimulatedGeolocator {
	return &SimulatedGeolocator{
		pos:      start,
		target:   target,
		stepKm:   stepKm,
		failRate: failRate,
		jitter:   0.0002,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

func (g *SimulatedGeolocator) Locate(ctx context.Context, accuracy Accuracy) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	remaining := geo.HaversineKm(g.pos, g.target)
	if remaining > 0 {
		g.pos = geo.Interpolate(g.pos, g.target, g.stepKm/remaining)
	}

	if accuracy == HighAccuracy {
		if g.rnd.Float64() < g.failRate {
			return domain.Coordinate{}, ErrSignalLost
		}
		return g.pos, nil
	}
	fix := g.pos
	fix.Lat += (g.rnd.Float64()*2 - 1) * g.jitter
	fix.Lng += (g.rnd.Float64()*2 - 1) * g.jitter
	return fix, nil
}

// Arrived reports whether the walk has reached the target.
func (g *SimulatedGeolocator) Arrived() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return geo.HaversineKm(g.pos, g.target) < 1e-6
}
