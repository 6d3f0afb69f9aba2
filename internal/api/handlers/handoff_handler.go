package handlers

import (
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"
	"foodia-handoff/pkg/handoff"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	HandoffHandler interface {
		ProposeHandoffPoint(c *fiber.Ctx) error
	}

	handoffHandler struct {
		handoffService handoff.HandoffService
		validator      *validator.Validate
	}
)

func NewHandoffHandler(handoffService handoff.HandoffService, validator *validator.Validate) HandoffHandler {
	return &handoffHandler{
		handoffService: handoffService,
		validator:      validator,
	}
}

func (h *handoffHandler) ProposeHandoffPoint(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")
	req := new(domain.ProposeHandoffPointRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedProposeHandoff, err)
	}

	point, err := req.Coordinate()
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedProposeHandoff, err)
	}

	res, err := h.handoffService.ProposeHandoffPoint(c.Context(), transactionID, userID, point)
	if err != nil {
		return failure(c, domain.MessageFailedProposeHandoff, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessProposeHandoff)
}
