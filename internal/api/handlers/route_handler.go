package handlers

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"
	"foodia-handoff/pkg/route"
	"math"

	"github.com/gofiber/fiber/v2"
	futils "github.com/gofiber/fiber/v2/utils"
)

type (
	RouteHandler interface {
		GetRoute(c *fiber.Ctx) error
		GetReplayFrame(c *fiber.Ctx) error
		StreamReplay(c *fiber.Ctx) error
	}

	routeHandler struct {
		routeService route.RouteService
	}
)

func NewRouteHandler(routeService route.RouteService) RouteHandler {
	return &routeHandler{
		routeService: routeService,
	}
}

func (h *routeHandler) GetRoute(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.routeService.GetRoute(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedGetRoute, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRoute)
}

func (h *routeHandler) GetReplayFrame(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")
	cursor := c.QueryInt("cursor", 0)

	res, err := h.routeService.GetReplayFrame(c.Context(), transactionID, userID, cursor)
	if err != nil {
		return failure(c, domain.MessageFailedGetReplay, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReplay)
}

// StreamReplay plays the recorded path back as server-sent frames.
func (h *routeHandler) StreamReplay(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := futils.CopyString(c.Params("id"))
	cursor := c.QueryInt("cursor", 0)
	speed := c.QueryFloat("speed", 1)
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReplay, domain.ErrInvalidReplaySpeed)
	}

	frames := make(chan domain.ReplayFrame)
	stopped := make(chan struct{})
	engine, err := h.routeService.NewReplay(c.Context(), transactionID, userID, route.OnFrame(func(f domain.ReplayFrame) {
		select {
		case frames <- f:
		case <-stopped:
		}
	}))
	if err != nil {
		return failure(c, domain.MessageFailedGetReplay, err)
	}
	engine.Seek(cursor)

	return streamSSE(c, func(ctx context.Context, s *sseStream) error {
		defer close(stopped)
		defer engine.Pause()

		playErr := make(chan error, 1)
		go func() { playErr <- engine.Play(speed) }()

		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-playErr:
				if err != nil {
					return err
				}
				playErr = nil
			case f := <-frames:
				if err := s.send("frame", f); err != nil {
					return err
				}
				if f.Cursor >= f.Total-1 {
					return s.send("end", fiber.Map{"total": f.Total})
				}
			}
		}
	})
}
