package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"

	"github.com/gofiber/fiber/v2"
)

func setupInterviewRoutes(router fiber.Router, h *handler.InterviewHandler, ws *handler.WSHandler) {
	interviews := router.Group("/interviews")

	interviews.Post("/", h.Start)
	interviews.Get("/:id", h.GetState)
	interviews.Post("/:id/start-answer", h.StartAnswer)
	interviews.Post("/:id/skip-preparation", h.SkipPreparation)
	interviews.Post("/:id/submit", h.SubmitAnswer)
	interviews.Post("/:id/exit", h.Exit)
	interviews.Post("/:id/recordings", h.UploadRecording)
	interviews.Get("/:id/events", ws.Upgrade(), ws.Events())
}
