package controller

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/pkg/serverutils"
	"knowledge-copilot-be/internal/service"
	ws "knowledge-copilot-be/internal/websocket"
)

type IAuditController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type auditController struct {
	auditService service.IAuditService
	hub          *ws.Hub
}

func NewAuditController(auditService service.IAuditService, hub *ws.Hub) IAuditController {
	return &auditController{
		auditService: auditService,
		hub:          hub,
	}
}

func (c *auditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audit/v1")
	h.Use(serverutils.IdentityMiddleware)
	h.Use(c.requireReadAccess)
	h.Get("", c.List)

	// Live feed: websocket upgrade, gated by the same role check.
	h.Use("live", func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("live", fiberws.New(func(conn *fiberws.Conn) {
		requesterId, _ := conn.Locals("ws_requester_id").(string)
		ws.ServeWs(c.hub, conn, requesterId)
	}))
}

// requireReadAccess gates the audit trail: questions are recorded verbatim,
// so only designated roles may read it.
func (c *auditController) requireReadAccess(ctx *fiber.Ctx) error {
	requester := serverutils.RequesterFromCtx(ctx)
	if requester == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing identity")
	}
	if !c.auditService.HasReadAccess(requester.RoleNames) {
		return fiber.NewError(fiber.StatusForbidden, "Audit access requires a compliance role")
	}
	// Locals survive the websocket upgrade under a plain key.
	ctx.Locals("ws_requester_id", requester.Id)
	return ctx.Next()
}

func (c *auditController) List(ctx *fiber.Ctx) error {
	var req dto.ListAuditRecordsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.auditService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list audit records", res))
}
