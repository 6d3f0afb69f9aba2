package channel

import (
	"context"
	"foodia-handoff/domain"
	"sync"
)

// MemoryChannel is an in-process LocationChannel. The last publish on a
// subject is retained and handed to late subscribers, like a retained MQTT
// message.
type MemoryChannel struct {
	hub *hub

	mu       sync.Mutex
	retained map[string]domain.Coordinate
	closed   bool
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		hub:      newHub(),
		retained: make(map[string]domain.Coordinate),
	}
}

func (m *MemoryChannel) Publish(ctx context.Context, subject string, loc domain.Coordinate) error {
	if err := ctx.Err(); err != nil {
		return domain.Transient("publish", err)
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.Transient("publish", errChannelClosed)
	}
	m.retained[subject] = loc
	m.mu.Unlock()

	m.hub.dispatch(subject, loc)
	return nil
}

func (m *MemoryChannel) Subscribe(subject string, fn Handler) (Unsubscribe, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, domain.Transient("subscribe", errChannelClosed)
	}
	last, hasLast := m.retained[subject]
	m.mu.Unlock()

	s, err := m.hub.add(subject, fn)
	if err != nil {
		return nil, err
	}
	if hasLast {
		s.offer(last)
	}
	return m.hub.unsubscribeFunc(subject, s), nil
}

// Forget drops the retained value for subject.
func (m *MemoryChannel) Forget(ctx context.Context, subject string) error {
	m.mu.Lock()
	delete(m.retained, subject)
	m.mu.Unlock()
	return nil
}

func (m *MemoryChannel) Close() error {
	m.mu.Lock()
	m.closed = true
	m.retained = make(map[string]domain.Coordinate)
	m.mu.Unlock()
	m.hub.closeAll()
	return nil
}
