package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func setupAuthRoutes(router fiber.Router, h *handler.AuthHandler) {
	auth := router.Group("/auth")

	auth.Post("/login", h.Login)
}
