package tracking

import (
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
	"sync"
)

// GeofenceEvaluator tracks whether self is inside radiusKm of a target.
// "entered" fires once per stay; the stay ends only when the distance
// exceeds radiusKm*(1+exitMargin).
type GeofenceEvaluator struct {
	radiusKm   float64
	exitMargin float64

	mu     sync.Mutex
	inside bool
}

func NewGeofenceEvaluator(radiusKm, exitMargin float64) *GeofenceEvaluator {
	if exitMargin < 0 {
		exitMargin = 0
	}
	return &GeofenceEvaluator{radiusKm: radiusKm, exitMargin: exitMargin}
}

// Evaluate reports the reading for one pair of positions. Missing or invalid
// input gives an inactive reading and leaves the inside flag untouched.
func (g *GeofenceEvaluator) Evaluate(self, target *domain.Coordinate) domain.GeofenceReading {
	reading := domain.GeofenceReading{State: domain.GeofenceInactive, RadiusKm: g.radiusKm}
	d, err := geo.Distance(self, target)
	if err != nil {
		return reading
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case !g.inside && d <= g.radiusKm:
		g.inside = true
		reading.Event = domain.GeofenceEventEntered
	case g.inside && d > g.radiusKm*(1+g.exitMargin):
		g.inside = false
		reading.Event = domain.GeofenceEventExited
	}

	reading.DistanceKm = d
	reading.Inside = g.inside
	if d <= 2*g.radiusKm {
		reading.State = domain.GeofenceVisible
	} else {
		reading.State = domain.GeofenceHidden
	}
	return reading
}

func (g *GeofenceEvaluator) Inside() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inside
}

// Reset forgets the stay, e.g. after the target moved.
func (g *GeofenceEvaluator) Reset() {
	g.mu.Lock()
	g.inside = false
	g.mu.Unlock()
}
