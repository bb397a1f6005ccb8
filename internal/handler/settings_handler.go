package handler

import (
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsRepo domain.SettingsRepository
}

func NewSettingsHandler(settingsRepo domain.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// SetOracleKey stores the scoring oracle credential. The stored key is read
// at startup when no key is configured through the environment.
func (h *SettingsHandler) SetOracleKey(c *fiber.Ctx) error {
	var req domain.SetOracleKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validateSetOracleKeyRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.settingsRepo.SetOracleAPIKey(c.UserContext(), req.APIKey); err != nil {
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "oracle api key updated", nil)
}

func validateSetOracleKeyRequest(req *domain.SetOracleKeyRequest) error {
	validate := validator.New()
	return validate.Struct(req)
}
