package channel

import (
	"foodia-handoff/domain"
	"sync"
)

// subscription is a one-slot mailbox drained by its own goroutine. A newer
// offer replaces an undelivered older one.
type subscription struct {
	fn Handler

	mu      sync.Mutex
	pending *domain.Coordinate
	closed  bool

	// held for the duration of a callback
	deliver sync.Mutex

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscription(fn Handler) *subscription {
	s := &subscription{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *subscription) offer(loc domain.Coordinate) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = &loc
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) take() (*domain.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := s.pending
	s.pending = nil
	return loc, s.closed
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		loc, closed := s.take()
		if closed {
			return
		}
		if loc == nil {
			continue
		}
		s.deliver.Lock()
		if !s.isClosed() {
			s.fn(*loc)
		}
		s.deliver.Unlock()
	}
}

func (s *subscription) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.pending = nil
		s.mu.Unlock()
		// wait out an in-flight callback
		s.deliver.Lock()
		s.deliver.Unlock()
		close(s.done)
	})
}

// hub fans one stream per subject out to every local subscription.
type hub struct {
	mu     sync.Mutex
	topics map[string]map[*subscription]struct{}
	// onFirst and onLast let a transport attach and detach upstream.
	onFirst func(subject string) error
	onLast  func(subject string)
}

func newHub() *hub {
	return &hub{topics: make(map[string]map[*subscription]struct{})}
}

func (h *hub) add(subject string, fn Handler) (*subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[subject]
	if !ok {
		if h.onFirst != nil {
			if err := h.onFirst(subject); err != nil {
				return nil, err
			}
		}
		subs = make(map[*subscription]struct{})
		h.topics[subject] = subs
	}
	s := newSubscription(fn)
	subs[s] = struct{}{}
	return s, nil
}

func (h *hub) remove(subject string, s *subscription) {
	h.mu.Lock()
	subs, ok := h.topics[subject]
	if ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, subject)
			if h.onLast != nil {
				h.onLast(subject)
			}
		}
	}
	h.mu.Unlock()
	s.close()
}

func (h *hub) dispatch(subject string, loc domain.Coordinate) {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.topics[subject]))
	for s := range h.topics[subject] {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.offer(loc)
	}
}

func (h *hub) subscribers(subject string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[subject])
}

func (h *hub) closeAll() {
	h.mu.Lock()
	var all []*subscription
	for subject, subs := range h.topics {
		for s := range subs {
			all = append(all, s)
		}
		delete(h.topics, subject)
	}
	h.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}

func (h *hub) unsubscribeFunc(subject string, s *subscription) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() { h.remove(subject, s) })
	}
}
