package controller

import (
	"github.com/gofiber/fiber/v2"

	"notas-client/internal/auth"
	"notas-client/internal/dto"
	"notas-client/internal/pkg/serverutils"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	SignIn(ctx *fiber.Ctx) error
	SignUp(ctx *fiber.Ctx) error
	SignOut(ctx *fiber.Ctx) error
}

type authController struct {
	sessions auth.ISessionStore
}

func NewAuthController(sessions auth.ISessionStore) IAuthController {
	return &authController{sessions: sessions}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("/sign-in", c.SignIn)
	h.Post("/sign-up", c.SignUp)
	h.Post("/sign-out", c.SignOut)
}

func (c *authController) SignIn(ctx *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessions.SignIn(ctx.Context(), req.Email, req.Password); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed in", dto.SignInResponse{Email: req.Email}))
}

func (c *authController) SignUp(ctx *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessions.SignUp(ctx.Context(), req.Email, req.Password); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Signed up", dto.SignUpResponse{
		Message: "Check your e-mail to confirm the account",
	}))
}

func (c *authController) SignOut(ctx *fiber.Ctx) error {
	c.sessions.SignOut(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse[any]("Signed out", nil))
}
