package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"
	"github.com/intervu-ai/intervu-server/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func setupSettingsRoutes(router fiber.Router, h *handler.SettingsHandler, authMiddleware *middleware.AuthMiddleware) {
	settings := router.Group("/settings")
	settings.Use(authMiddleware.Authenticate())

	settings.Put("/oracle-key", h.SetOracleKey)
}
