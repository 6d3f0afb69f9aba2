package handlers

import (
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"
	"foodia-handoff/pkg/transaction"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TransactionHandler interface {
		GetTransaction(c *fiber.Ctx) error
		AcceptTransaction(c *fiber.Ctx) error
		RejectTransaction(c *fiber.Ctx) error
		MarkCollected(c *fiber.Ctx) error
		CompleteHandoff(c *fiber.Ctx) error
		UpdateLocation(c *fiber.Ctx) error
	}

	transactionHandler struct {
		transactionService transaction.TransactionService
		validator          *validator.Validate
	}
)

func NewTransactionHandler(transactionService transaction.TransactionService, validator *validator.Validate) TransactionHandler {
	return &transactionHandler{
		transactionService: transactionService,
		validator:          validator,
	}
}

func (h *transactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.transactionService.GetTransaction(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedGetTransaction, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTransaction)
}

func (h *transactionHandler) AcceptTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.transactionService.Accept(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedAcceptTransaction, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAcceptTransaction)
}

func (h *transactionHandler) RejectTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.transactionService.Reject(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedRejectTransaction, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessRejectTransaction)
}

func (h *transactionHandler) MarkCollected(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.transactionService.MarkCollected(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedMarkCollected, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessMarkCollected)
}

func (h *transactionHandler) CompleteHandoff(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")
	req := new(domain.CompleteHandoffRequest)

	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCompleteHandoff, err)
	}

	res, err := h.transactionService.ConfirmCompletion(c.Context(), transactionID, userID, *req)
	if err != nil {
		return failure(c, domain.MessageFailedCompleteHandoff, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCompleteHandoff)
}

func (h *transactionHandler) UpdateLocation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")
	req := new(domain.UpdateLocationRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateLocation, err)
	}

	res, err := h.transactionService.UpdateLocation(c.Context(), transactionID, userID, *req)
	if err != nil {
		return failure(c, domain.MessageFailedUpdateLocation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateLocation)
}
