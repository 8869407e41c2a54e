package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notas-client/internal/dto"
	"notas-client/internal/pkg/serverutils"
	"notas-client/internal/service"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Select(ctx *fiber.Ctx) error
}

type noteController struct {
	syncService service.ISyncService
}

func NewNoteController(syncService service.ISyncService) INoteController {
	return &noteController{syncService: syncService}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Post("", c.Create)
	h.Put(":id", c.Update)
	h.Put(":id/select", c.Select)
}

// Create takes no body: creation always yields a blank note, already opened
// for editing.
func (c *noteController) Create(ctx *fiber.Ctx) error {
	note, err := c.syncService.CreateNote(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create note", note))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := c.syncService.UpdateNote(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success update note", nil))
}

func (c *noteController) Select(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid note id")
	}

	if err := c.syncService.SelectNote(&id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success select note", nil))
}
