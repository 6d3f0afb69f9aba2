package tracking

import (
	"foodia-handoff/domain"
	"foodia-handoff/pkg/channel"
	"sync"
)

// LocationSubscriber keeps the newest position seen on one subject. A sample
// whose timestamp is not newer than the current one is discarded, so the
// exposed state never moves backwards.
type LocationSubscriber struct {
	mu       sync.Mutex
	current  *domain.Coordinate
	onUpdate func(domain.Coordinate)
	unsub    channel.Unsubscribe
}

func SubscribeLocation(ch channel.LocationChannel, subject string, onUpdate func(domain.Coordinate)) (*LocationSubscriber, error) {
	s := &LocationSubscriber{onUpdate: onUpdate}
	unsub, err := ch.Subscribe(subject, s.receive)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	return s, nil
}

func (s *LocationSubscriber) receive(loc domain.Coordinate) {
	if !s.accept(loc) {
		return
	}
	if s.onUpdate != nil {
		s.onUpdate(loc)
	}
}

func (s *LocationSubscriber) accept(loc domain.Coordinate) bool {
	if loc.Validate() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Timestamp != 0 && loc.Timestamp <= s.current.Timestamp {
		return false
	}
	s.current = &loc
	return true
}

// Seed sets the starting state from a persisted value, subject to the same
// ordering rule as live updates.
func (s *LocationSubscriber) Seed(loc *domain.Coordinate) {
	if loc != nil {
		s.accept(*loc)
	}
}

func (s *LocationSubscriber) Current() (*domain.Coordinate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	c := *s.current
	return &c, true
}

// Close unsubscribes. No callback runs after it returns.
func (s *LocationSubscriber) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
