package transaction

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/route"
	"sync"
)

// fakeRouteService records recorder runs and archive calls.
type fakeRouteService struct {
	route.RouteService

	mu        sync.Mutex
	recording map[string]bool
	archived  []string
	archiveFn func(id string) (string, error)
}

func newFakeRouteService() *fakeRouteService {
	return &fakeRouteService{recording: make(map[string]bool)}
}

func (f *fakeRouteService) Record(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	f.recording[transactionID] = true
	f.mu.Unlock()
	<-ctx.Done()
	f.mu.Lock()
	f.recording[transactionID] = false
	f.mu.Unlock()
	return nil
}

func (f *fakeRouteService) Archive(ctx context.Context, transactionID string) (string, error) {
	f.mu.Lock()
	f.archived = append(f.archived, transactionID)
	fn := f.archiveFn
	f.mu.Unlock()
	if fn != nil {
		return fn(transactionID)
	}
	return "https://bucket.example/" + transactionID, nil
}

func (f *fakeRouteService) isRecording(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording[id]
}

func (f *fakeRouteService) archiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.archived)
}

type countingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (c *countingNotifier) Notify(ctx context.Context, n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func locationRequest(lat, lng float64, field string) domain.UpdateLocationRequest {
	return domain.UpdateLocationRequest{
		CoordinatePayload: domain.CoordinatePayload{Lat: floatPtr(lat), Lng: floatPtr(lng)},
		Field:             field,
	}
}
