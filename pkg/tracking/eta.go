package tracking

import (
	"foodia-handoff/domain"
	"foodia-handoff/pkg/geo"
	"math"
	"sync"
	"time"
)

// ETAEstimator turns straight-line distance into minutes at an assumed
// average speed and reports the change against its previous estimate.
type ETAEstimator struct {
	speedKmh float64
	now      func() time.Time

	mu       sync.Mutex
	previous *int
}

func NewETAEstimator(speedKmh float64) *ETAEstimator {
	return &ETAEstimator{speedKmh: speedKmh, now: time.Now}
}

func MinutesFor(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

// Estimate computes an ETA from self to destination. ok is false when either
// position is missing; the previous estimate is then kept.
func (e *ETAEstimator) Estimate(self, destination *domain.Coordinate) (domain.ETAEstimate, bool) {
	d, err := geo.Distance(self, destination)
	if err != nil {
		return domain.ETAEstimate{}, false
	}
	return e.FromDistance(d), true
}

func (e *ETAEstimator) FromDistance(distanceKm float64) domain.ETAEstimate {
	minutes := MinutesFor(distanceKm, e.speedKmh)

	e.mu.Lock()
	defer e.mu.Unlock()
	est := domain.ETAEstimate{
		Minutes:    minutes,
		DistanceKm: distanceKm,
		ComputedAt: e.now(),
	}
	if e.previous != nil {
		change := minutes - *e.previous
		est.Change = &change
	}
	e.previous = &minutes
	return est
}

func (e *ETAEstimator) Reset() {
	e.mu.Lock()
	e.previous = nil
	e.mu.Unlock()
}
