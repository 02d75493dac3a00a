package controller

import (
	"github.com/gofiber/fiber/v2"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/pkg/serverutils"
	"knowledge-copilot-be/internal/service"
)

type ICopilotController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type copilotController struct {
	copilotService service.ICopilotService
}

func NewCopilotController(copilotService service.ICopilotService) ICopilotController {
	return &copilotController{
		copilotService: copilotService,
	}
}

func (c *copilotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/copilot/v1")
	h.Use(serverutils.IdentityMiddleware)
	h.Post("ask", c.Ask)
}

func (c *copilotController) Ask(ctx *fiber.Ctx) error {
	requester := serverutils.RequesterFromCtx(ctx)
	if requester == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing identity")
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.copilotService.Ask(ctx.Context(), requester, &req)
	if err != nil {
		return err
	}

	// The ask contract returns the answer payload directly, not the
	// service envelope: clients consume it verbatim.
	return ctx.JSON(res)
}
