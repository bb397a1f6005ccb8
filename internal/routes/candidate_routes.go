package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func setupCandidateRoutes(router fiber.Router, h *handler.CandidateHandler) {
	candidates := router.Group("/candidates")

	candidates.Post("/resume", h.UploadResume)
	candidates.Get("/:id", h.GetByID)
	candidates.Patch("/:id", h.Update)
}
