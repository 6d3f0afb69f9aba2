package tracking

import (
	"context"
	"errors"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/lifecycle"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	// Sink receives published positions. channel.LocationChannel satisfies it.
	Sink interface {
		Publish(ctx context.Context, subject string, loc domain.Coordinate) error
	}

	// Gate reports whether tracking is currently allowed for the publisher's
	// transaction.
	Gate interface {
		TrackingActive(ctx context.Context) (bool, error)
	}

	GateFunc func(ctx context.Context) (bool, error)

	PublisherStats struct {
		Samples   int
		Failures  int
		Published int
		Dropped   int
		Accuracy  Accuracy
	}
)

func (f GateFunc) TrackingActive(ctx context.Context) (bool, error) {
	return f(ctx)
}

var ErrPublisherRunning = errors.New("publisher already running")

// LocationPublisher samples the device position and forwards the newest
// sample at a bounded interval. A failed publish is dropped; the next sample
// supersedes it.
type LocationPublisher struct {
	cfg     Config
	locator Geolocator
	sink    Sink
	gate    Gate
	onError func(error)
	now     func() time.Time

	mu        sync.Mutex
	subject   string
	latest    *domain.Coordinate
	lastSent  int64
	failures  int
	accuracy  Accuracy
	stats     PublisherStats
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stoppedCh chan struct{}
}

type PublisherOption func(*LocationPublisher)

// WithErrorHandler receives acquisition and publish failures. They never stop
// the loop except for a precondition failure from the gate or sink.
func WithErrorHandler(fn func(error)) PublisherOption {
	return func(p *LocationPublisher) { p.onError = fn }
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *LocationPublisher) { p.now = now }
}

func NewLocationPublisher(cfg Config, locator Geolocator, sink Sink, gate Gate, opts ...PublisherOption) *LocationPublisher {
	p := &LocationPublisher{
		cfg:     cfg,
		locator: locator,
		sink:    sink,
		gate:    gate,
		now:     time.Now,
		onError: func(err error) { log.Warnf("location publisher: %v", err) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins sampling every sampleInterval and publishing to subject. A
// zero sampleInterval uses the configured one.
func (p *LocationPublisher) Start(ctx context.Context, subject string, sampleInterval time.Duration) error {
	if sampleInterval <= 0 {
		sampleInterval = p.cfg.SampleInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrPublisherRunning
	}
	active, err := p.gate.TrackingActive(ctx)
	if err != nil {
		return err
	}
	if !active {
		return domain.ErrTrackingInactive
	}

	ctx, cancel := context.WithCancel(ctx)
	p.subject = subject
	p.running = true
	p.cancel = cancel
	p.latest = nil
	p.failures = 0
	p.accuracy = HighAccuracy
	p.stoppedCh = make(chan struct{})

	p.wg.Add(2)
	go p.sampleLoop(ctx, sampleInterval)
	go p.publishLoop(ctx)

	stopped := p.stoppedCh
	go func() {
		p.wg.Wait()
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(stopped)
	}()
	return nil
}

// Stop cancels both loops and waits for them. Safe to call any number of times.
func (p *LocationPublisher) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	stopped := p.stoppedCh
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// Done is closed once the publisher has stopped, whether by Stop or because
// tracking became inactive.
func (p *LocationPublisher) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stoppedCh == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.stoppedCh
}

func (p *LocationPublisher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *LocationPublisher) Stats() PublisherStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Accuracy = p.accuracy
	return s
}

// Publish sends loc once, outside the sampling loop. It fails with a
// precondition error when tracking is not active.
func (p *LocationPublisher) Publish(ctx context.Context, subject string, loc domain.Coordinate) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	active, err := p.gate.TrackingActive(ctx)
	if err != nil {
		return err
	}
	if !active {
		return domain.ErrTrackingInactive
	}
	if loc.Timestamp == 0 {
		loc = loc.WithTime(p.now())
	}
	return p.sink.Publish(ctx, subject, loc)
}

func (p *LocationPublisher) sampleLoop(ctx context.Context, interval time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sample(ctx)
		}
	}
}

func (p *LocationPublisher) sample(ctx context.Context) {
	p.mu.Lock()
	accuracy := p.accuracy
	p.mu.Unlock()

	timeout := p.cfg.HighAccuracyTimeout
	if accuracy == LowAccuracy {
		timeout = p.cfg.LowAccuracyTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	loc, err := p.locator.Locate(actx, accuracy)
	cancel()
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	p.stats.Samples++
	if err != nil {
		p.stats.Failures++
		p.failures++
		if p.accuracy == HighAccuracy && p.failures >= p.cfg.FallbackAfter {
			p.accuracy = LowAccuracy
			p.failures = 0
		}
		p.mu.Unlock()
		p.onError(domain.Transient(fmt.Sprintf("locate (%s accuracy)", accuracy), err))
		return
	}
	p.failures = 0
	if verr := loc.Validate(); verr != nil {
		p.mu.Unlock()
		p.onError(verr)
		return
	}
	if loc.Timestamp == 0 {
		loc = loc.WithTime(p.now())
	}
	if p.latest == nil || loc.Timestamp > p.latest.Timestamp {
		p.latest = &loc
	}
	p.mu.Unlock()
}

func (p *LocationPublisher) publishLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.PublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if halt := p.flush(ctx); halt {
				p.mu.Lock()
				p.cancel()
				p.mu.Unlock()
				return
			}
		}
	}
}

// flush publishes the newest unsent sample. It reports true when tracking is
// over and the publisher should stop.
func (p *LocationPublisher) flush(ctx context.Context) bool {
	p.mu.Lock()
	loc := p.latest
	subject := p.subject
	if loc == nil || loc.Timestamp <= p.lastSent {
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()

	active, err := p.gate.TrackingActive(ctx)
	if err != nil {
		p.onError(err)
		return errors.Is(err, domain.ErrPreconditionFailed) || errors.Is(err, domain.ErrNotFound)
	}
	if !active {
		return true
	}

	if err := p.sink.Publish(ctx, subject, *loc); err != nil {
		p.mu.Lock()
		p.stats.Dropped++
		p.mu.Unlock()
		p.onError(err)
		return errors.Is(err, domain.ErrPreconditionFailed)
	}
	p.mu.Lock()
	p.stats.Published++
	p.lastSent = loc.Timestamp
	p.mu.Unlock()
	return false
}

// StatusGate adapts a status lookup into a Gate.
func StatusGate(status func(ctx context.Context) (domain.TransactionStatus, error)) Gate {
	return GateFunc(func(ctx context.Context) (bool, error) {
		s, err := status(ctx)
		if err != nil {
			return false, err
		}
		return lifecycle.TrackingActive(s), nil
	})
}
