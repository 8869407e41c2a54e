package controller

import (
	"github.com/gofiber/fiber/v2"

	"notas-client/internal/dto"
	"notas-client/internal/pkg/serverutils"
	"notas-client/internal/service"
)

type IFolderController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
}

type folderController struct {
	syncService service.ISyncService
}

func NewFolderController(syncService service.ISyncService) IFolderController {
	return &folderController{syncService: syncService}
}

func (c *folderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/folder/v1")
	h.Post("", c.Create)
	h.Put("/select", c.Select)
}

func (c *folderController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFolderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Whitespace-only names slip past the required tag; the sync service
	// rejects them before any remote call.
	folder, err := c.syncService.CreateFolder(ctx.Context(), req.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create folder", folder))
}

// Select switches the active filter. A nil folder_id means "all notes".
func (c *folderController) Select(ctx *fiber.Ctx) error {
	var req dto.SelectFolderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.syncService.SelectFolder(ctx.Context(), req.FolderId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success select folder", nil))
}
