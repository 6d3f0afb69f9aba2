package handlers

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"
	"foodia-handoff/pkg/lifecycle"
	"foodia-handoff/pkg/transaction"
	"strconv"

	"github.com/gofiber/fiber/v2"
	futils "github.com/gofiber/fiber/v2/utils"
)

type (
	TrackingHandler interface {
		GetTracking(c *fiber.Ctx) error
		StreamTracking(c *fiber.Ctx) error
		GetDirections(c *fiber.Ctx) error
		GeocodeForward(c *fiber.Ctx) error
		GeocodeReverse(c *fiber.Ctx) error
	}

	trackingHandler struct {
		trackingService transaction.TrackingService
	}
)

func NewTrackingHandler(trackingService transaction.TrackingService) TrackingHandler {
	return &trackingHandler{
		trackingService: trackingService,
	}
}

func (h *trackingHandler) GetTracking(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.trackingService.GetTracking(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedGetTracking, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTracking)
}

func (h *trackingHandler) StreamTracking(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := futils.CopyString(c.Params("id"))

	snap, err := h.trackingService.GetTracking(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedOpenStream, err)
	}
	if err := lifecycle.RequireTracking(snap.Status); err != nil {
		return failure(c, domain.MessageFailedOpenStream, err)
	}

	return streamSSE(c, func(ctx context.Context, s *sseStream) error {
		if err := s.send("snapshot", snap); err != nil {
			return err
		}
		return h.trackingService.StreamTracking(ctx, transactionID, userID, func(e domain.TrackingEvent) error {
			return s.send(e.Type, e)
		})
	})
}

func (h *trackingHandler) GetDirections(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.trackingService.GetDirections(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedGetDirections, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDirections)
}

func (h *trackingHandler) GeocodeForward(c *fiber.Ctx) error {
	res, err := h.trackingService.Forward(c.Context(), c.Query("q"))
	if err != nil {
		return failure(c, domain.MessageFailedGeocode, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGeocode)
}

func (h *trackingHandler) GeocodeReverse(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGeocode, domain.ErrInvalidCoordinates)
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGeocode, domain.ErrInvalidCoordinates)
	}

	res, err := h.trackingService.Reverse(c.Context(), domain.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		return failure(c, domain.MessageFailedGeocode, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGeocode)
}
