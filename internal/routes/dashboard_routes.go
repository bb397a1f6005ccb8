package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"
	"github.com/intervu-ai/intervu-server/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func setupDashboardRoutes(router fiber.Router, h *handler.DashboardHandler, authMiddleware *middleware.AuthMiddleware) {
	dashboard := router.Group("/dashboard")
	dashboard.Use(authMiddleware.Authenticate())

	dashboard.Get("/candidates", h.ListCandidates)
	dashboard.Get("/candidates/:id", h.GetCandidateDetail)
	dashboard.Delete("/candidates/:id", h.DeleteCandidate)
	dashboard.Get("/sessions/:id", h.GetSessionDetail)
	dashboard.Get("/sessions/:id/report", h.DownloadReport)
	dashboard.Get("/recordings/:blobId", h.GetRecording)
	dashboard.Get("/stats", h.GetStats)
}
