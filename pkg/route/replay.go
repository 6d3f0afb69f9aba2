package route

import (
	"foodia-handoff/domain"
	"math"
	"sync"
	"time"
)

// TickSource yields a tick every d until stop is called.
type TickSource func(d time.Duration) (ticks <-chan time.Time, stop func())

func realTicks(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

const (
	minTick = time.Millisecond
	maxTick = time.Hour
)

type ReplayConfig struct {
	DefaultSpeed float64 `validate:"gt=0"`
	MaxSpeed     float64 `validate:"gtefield=DefaultSpeed"`
}

func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{DefaultSpeed: 1, MaxSpeed: 16}
}

// ReplayEngine plays a recorded path back one point per second of replay
// time. It works on its own copy; the source path is never touched.
type ReplayEngine struct {
	cfg     ReplayConfig
	ticks   TickSource
	onFrame func(domain.ReplayFrame)

	mu      sync.Mutex
	path    []domain.RoutePoint
	cursor  int
	playing bool
	speed   float64
	gen     int
	stop    func()
	quit    chan struct{}
	done    chan struct{}
}

type ReplayOption func(*ReplayEngine)

func WithTickSource(ts TickSource) ReplayOption {
	return func(e *ReplayEngine) { e.ticks = ts }
}

// OnFrame is called with every frame playback produces, including the first.
func OnFrame(fn func(domain.ReplayFrame)) ReplayOption {
	return func(e *ReplayEngine) { e.onFrame = fn }
}

func NewReplayEngine(cfg ReplayConfig, path []domain.RoutePoint, opts ...ReplayOption) (*ReplayEngine, error) {
	if len(path) == 0 {
		return nil, domain.ErrEmptyRoute
	}
	e := &ReplayEngine{
		cfg:   cfg,
		ticks: realTicks,
		path:  append([]domain.RoutePoint(nil), path...),
		speed: cfg.DefaultSpeed,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *ReplayEngine) Len() int {
	return len(e.path)
}

func (e *ReplayEngine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

func (e *ReplayEngine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *ReplayEngine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

func (e *ReplayEngine) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(e.path)-1 {
		return len(e.path) - 1
	}
	return i
}

// Seek moves the cursor to i clamped into the path and returns where it landed.
// Playback, if running, continues from there.
func (e *ReplayEngine) Seek(i int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = e.clamp(i)
	return e.cursor
}

// Reset stops playback and rewinds to the first point.
func (e *ReplayEngine) Reset() {
	e.mu.Lock()
	e.haltLocked()
	e.cursor = 0
	e.mu.Unlock()
}

func (e *ReplayEngine) Pause() {
	e.mu.Lock()
	e.haltLocked()
	e.mu.Unlock()
}

// Play advances the cursor every 1000/speed ms until the last point, then
// stops by itself. Calling Play while playing changes the speed.
func (e *ReplayEngine) Play(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return domain.ErrInvalidReplaySpeed
	}
	if e.cfg.MaxSpeed > 0 && speed > e.cfg.MaxSpeed {
		speed = e.cfg.MaxSpeed
	}

	e.mu.Lock()
	e.haltLocked()
	e.speed = speed
	first := e.frameLocked()
	if e.cursor >= len(e.path)-1 {
		e.mu.Unlock()
		e.emit(first)
		return nil
	}

	e.gen++
	gen := e.gen
	ticks, stop := e.ticks(tickInterval(speed))
	quit := make(chan struct{})
	done := make(chan struct{})
	e.playing = true
	e.stop = stop
	e.quit = quit
	e.done = done
	e.mu.Unlock()

	e.emit(first)
	go e.loop(gen, ticks, quit, done)
	return nil
}

// Done is closed when the current playback ends.
func (e *ReplayEngine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return e.done
}

func (e *ReplayEngine) loop(gen int, ticks <-chan time.Time, quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case <-ticks:
		}
		e.mu.Lock()
		if e.gen != gen || !e.playing {
			e.mu.Unlock()
			return
		}
		e.stepLocked()
		frame := e.frameLocked()
		last := e.cursor >= len(e.path)-1
		if last {
			e.haltLocked()
		}
		e.mu.Unlock()

		e.emit(frame)
		if last {
			return
		}
	}
}

func (e *ReplayEngine) stepLocked() {
	if e.cursor < len(e.path)-1 {
		e.cursor++
	}
}

// tickInterval is 1000/speed ms kept inside [minTick, maxTick].
func tickInterval(speed float64) time.Duration {
	d := float64(time.Second) / speed
	switch {
	case d < float64(minTick):
		return minTick
	case d > float64(maxTick):
		return maxTick
	}
	return time.Duration(d)
}

// haltLocked stops the tick source and invalidates the running loop.
func (e *ReplayEngine) haltLocked() {
	if !e.playing {
		return
	}
	e.playing = false
	e.gen++
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	if e.quit != nil {
		close(e.quit)
		e.quit = nil
	}
}

func (e *ReplayEngine) emit(f domain.ReplayFrame) {
	if e.onFrame != nil {
		e.onFrame(f)
	}
}

// Progress is cursor/(N-1) as a percentage; a single-point path is complete.
func (e *ReplayEngine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *ReplayEngine) progressLocked() float64 {
	if len(e.path) == 1 {
		return 100
	}
	return float64(e.cursor) / float64(len(e.path)-1) * 100
}

func (e *ReplayEngine) Frame() domain.ReplayFrame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

func (e *ReplayEngine) frameLocked() domain.ReplayFrame {
	return SplitAt(e.path, e.cursor)
}

// SplitAt divides path at cursor: traveled is path[0..cursor] and remaining
// is path[cursor..N-1], both including the cursor point. cursor is clamped.
func SplitAt(path []domain.RoutePoint, cursor int) domain.ReplayFrame {
	n := len(path)
	if n == 0 {
		return domain.ReplayFrame{Traveled: []domain.RoutePoint{}, Remaining: []domain.RoutePoint{}}
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor > n-1 {
		cursor = n - 1
	}
	progress := 100.0
	if n > 1 {
		progress = float64(cursor) / float64(n-1) * 100
	}
	return domain.ReplayFrame{
		Cursor:    cursor,
		Total:     n,
		Progress:  progress,
		Current:   path[cursor],
		Traveled:  append([]domain.RoutePoint(nil), path[:cursor+1]...),
		Remaining: append([]domain.RoutePoint(nil), path[cursor:]...),
	}
}
