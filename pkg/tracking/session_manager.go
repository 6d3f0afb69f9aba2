package tracking

import (
	"context"
	"errors"
	"foodia-handoff/domain"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

// SessionManager owns the background tasks of each live transaction. Closing
// a session cancels its tasks and waits for them to return.
type SessionManager struct {
	parent context.Context

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewSessionManager(parent context.Context) *SessionManager {
	return &SessionManager{
		parent:   parent,
		sessions: make(map[string]*session),
	}
}

// Open starts a session for id, or returns the running one.
func (m *SessionManager) Open(id string) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s.ctx
	}
	ctx, cancel := context.WithCancel(m.parent)
	m.sessions[id] = &session{ctx: ctx, cancel: cancel}
	log.Infof("tracking session opened for transaction %s", id)
	return ctx
}

func (m *SessionManager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Context returns the context of session id while it is open.
func (m *SessionManager) Context(id string) (context.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return s.ctx, true
}

// Go runs fn as a task of session id. The context passed to fn is cancelled
// when the session closes.
func (m *SessionManager) Go(id, name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionClosed
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnf("tracking task %s for transaction %s: %v", name, id, err)
		}
	}()
	return nil
}

// Close cancels and drains session id. It must not be called from one of the
// session's own tasks.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
	log.Infof("tracking session closed for transaction %s", id)
}

// Active lists the ids of open sessions.
func (m *SessionManager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	for _, id := range m.Active() {
		m.Close(id)
	}
}
