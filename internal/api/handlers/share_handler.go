package handlers

import (
	"context"
	"foodia-handoff/domain"
	"foodia-handoff/internal/api/presenters"
	"foodia-handoff/pkg/share"

	"github.com/gofiber/fiber/v2"
	futils "github.com/gofiber/fiber/v2/utils"
)

type (
	ShareHandler interface {
		EnableShare(c *fiber.Ctx) error
		DisableShare(c *fiber.Ctx) error
		ResolveShare(c *fiber.Ctx) error
		StreamShare(c *fiber.Ctx) error
	}

	shareHandler struct {
		shareService share.ShareService
	}
)

func NewShareHandler(shareService share.ShareService) ShareHandler {
	return &shareHandler{
		shareService: shareService,
	}
}

func (h *shareHandler) EnableShare(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	res, err := h.shareService.Enable(c.Context(), transactionID, userID)
	if err != nil {
		return failure(c, domain.MessageFailedEnableShare, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessEnableShare)
}

func (h *shareHandler) DisableShare(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	transactionID := c.Params("id")

	if err := h.shareService.Disable(c.Context(), transactionID, userID); err != nil {
		return failure(c, domain.MessageFailedDisableShare, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDisableShare)
}

// ResolveShare is the public read. Every miss yields the same 404 body.
func (h *shareHandler) ResolveShare(c *fiber.Ctx) error {
	res, err := h.shareService.Resolve(c.Context(), c.Params("token"))
	if err != nil {
		return failure(c, domain.MessageFailedResolveShare, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessResolveShare)
}

func (h *shareHandler) StreamShare(c *fiber.Ctx) error {
	token := futils.CopyString(c.Params("token"))
	if _, err := h.shareService.Resolve(c.Context(), token); err != nil {
		return failure(c, domain.MessageFailedResolveShare, err)
	}

	return streamSSE(c, func(ctx context.Context, s *sseStream) error {
		return h.shareService.Stream(ctx, token, func(p domain.ShareProjection) error {
			return s.send("projection", p)
		})
	})
}
