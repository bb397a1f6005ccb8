package handler

import (
	"errors"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/service"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService domain.AuthService
}

func NewAuthHandler(authService domain.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validateLoginRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.Unauthorized(c, "invalid email or password")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "login successful", fiber.Map{
		"token": token,
	})
}

func validateLoginRequest(req *domain.LoginRequest) error {
	validate := validator.New()
	return validate.Struct(req)
}
