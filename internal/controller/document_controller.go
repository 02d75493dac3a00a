package controller

import (
	"github.com/gofiber/fiber/v2"

	"knowledge-copilot-be/internal/pkg/serverutils"
	"knowledge-copilot-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.IdentityMiddleware)
	h.Get("", c.List)
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	requester := serverutils.RequesterFromCtx(ctx)
	if requester == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing identity")
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.documentService.ListVisible(ctx.Context(), requester, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}
