package controller

import (
	"github.com/gofiber/fiber/v2"

	"notas-client/internal/pkg/serverutils"
	"notas-client/internal/service"
)

type IStateController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	ClearSelection(ctx *fiber.Ctx) error
}

type stateController struct {
	syncService service.ISyncService
}

func NewStateController(syncService service.ISyncService) IStateController {
	return &stateController{syncService: syncService}
}

func (c *stateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/state/v1")
	h.Get("", c.Show)
	h.Delete("/selection", c.ClearSelection)
}

// Show returns the snapshot the view renders from. The authenticated flag is
// the session gate: false means render the auth form.
func (c *stateController) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get state", c.syncService.Snapshot()))
}

// ClearSelection closes the edit modal.
func (c *stateController) ClearSelection(ctx *fiber.Ctx) error {
	if err := c.syncService.SelectNote(nil); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Selection cleared", nil))
}
