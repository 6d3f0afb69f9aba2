package handlers

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/pkg/route"
	"foodia-handoff/pkg/share"
	"foodia-handoff/pkg/tracking"
	"foodia-handoff/pkg/transaction"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
)

// withUser stands in for the auth middleware.
func withUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", domain.RoleUser)
		return c.Next()
	}
}

type fakeTransactionService struct {
	transaction.TransactionService
	err        error
	lastUpdate domain.UpdateLocationRequest
	lastRating *int
	calls      []string
}

func (f *fakeTransactionService) result(op, id string) (*domain.Transaction, error) {
	f.calls = append(f.calls, op)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Transaction{ID: id, Status: domain.StatusAccepted}, nil
}

func (f *fakeTransactionService) GetTransaction(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return f.result("get", id)
}

func (f *fakeTransactionService) Accept(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return f.result("accept", id)
}

func (f *fakeTransactionService) Reject(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return f.result("reject", id)
}

func (f *fakeTransactionService) MarkCollected(ctx context.Context, id string, actorID string) (*domain.Transaction, error) {
	return f.result("collect", id)
}

func (f *fakeTransactionService) ConfirmCompletion(ctx context.Context, id string, actorID string, req domain.CompleteHandoffRequest) (*domain.Transaction, error) {
	f.lastRating = req.Rating
	return f.result("complete", id)
}

func (f *fakeTransactionService) UpdateLocation(ctx context.Context, id string, actorID string, req domain.UpdateLocationRequest) (*domain.Coordinate, error) {
	f.lastUpdate = req
	f.calls = append(f.calls, "location")
	if f.err != nil {
		return nil, f.err
	}
	loc, err := req.Coordinate()
	return &loc, err
}

type fakeTrackingService struct {
	transaction.TrackingService
	status   domain.TransactionStatus
	err      error
	events   []domain.TrackingEvent
	streamed []string
	reversed *domain.Coordinate
}

func (f *fakeTrackingService) GetTracking(ctx context.Context, id string, actorID string) (*domain.TrackingSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TrackingSnapshot{TransactionID: id, Status: f.status, Viewer: domain.PartyOwner}, nil
}

func (f *fakeTrackingService) StreamTracking(ctx context.Context, id string, actorID string, emit tracking.Emitter) error {
	f.streamed = append(f.streamed, id)
	for _, e := range f.events {
		if err := emit(e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTrackingService) Forward(ctx context.Context, query string) ([]domain.Place, error) {
	if query == "" {
		return nil, domain.NewFieldError(domain.ErrMissingRequiredField, "", "q", "search text is required")
	}
	return []domain.Place{{Name: query, Center: domain.Coordinate{Lat: 1, Lng: 2}}}, nil
}

func (f *fakeTrackingService) Reverse(ctx context.Context, at domain.Coordinate) ([]domain.Place, error) {
	f.reversed = &at
	return []domain.Place{}, nil
}

type fakeShareService struct {
	share.ShareService
	projection *domain.ShareProjection
	updates    int
	tokens     []string
	streamed   []string
}

func (f *fakeShareService) Resolve(ctx context.Context, token string) (*domain.ShareProjection, error) {
	if f.projection == nil || (token != "good" && !slices.Contains(f.tokens, token)) {
		return nil, domain.ErrShareNotFound
	}
	return f.projection, nil
}

func (f *fakeShareService) Stream(ctx context.Context, token string, emit func(domain.ShareProjection) error) error {
	f.streamed = append(f.streamed, token)
	for i := 0; i < f.updates; i++ {
		if err := emit(*f.projection); err != nil {
			return err
		}
	}
	return domain.ErrShareNotFound
}

func (f *fakeShareService) Enable(ctx context.Context, transactionID string, actorID string) (*domain.ShareLink, error) {
	return &domain.ShareLink{Token: "good", URL: "https://foodia.test/shared-trip/good"}, nil
}

type fakeRouteService struct {
	route.RouteService
	path []domain.RoutePoint
	err  error
}

func (f *fakeRouteService) GetReplayFrame(ctx context.Context, transactionID string, actorID string, cursor int) (*domain.ReplayFrame, error) {
	if f.err != nil {
		return nil, f.err
	}
	frame := route.SplitAt(f.path, cursor)
	return &frame, nil
}

func (f *fakeRouteService) NewReplay(ctx context.Context, transactionID string, actorID string, opts ...route.ReplayOption) (*route.ReplayEngine, error) {
	if f.err != nil {
		return nil, f.err
	}
	fast := route.WithTickSource(func(time.Duration) (<-chan time.Time, func()) {
		t := time.NewTicker(time.Millisecond)
		return t.C, t.Stop
	})
	return route.NewReplayEngine(route.DefaultReplayConfig(), f.path, append(opts, fast)...)
}
