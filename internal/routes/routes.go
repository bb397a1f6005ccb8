package routes

import (
	"github.com/intervu-ai/intervu-server/internal/handler"
	"github.com/intervu-ai/intervu-server/internal/middleware"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Candidate *handler.CandidateHandler
	Interview *handler.InterviewHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	WS        *handler.WSHandler
}

type Middlewares struct {
	Auth *middleware.AuthMiddleware
}

func Setup(app *fiber.App, handlers Handlers, middlewares Middlewares) {
	app.Get("/health", healthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	setupAuthRoutes(api, handlers.Auth)
	setupCandidateRoutes(api, handlers.Candidate)
	setupInterviewRoutes(api, handlers.Interview, handlers.WS)
	setupDashboardRoutes(api, handlers.Dashboard, middlewares.Auth)
	setupSettingsRoutes(api, handlers.Settings, middlewares.Auth)
}

func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "server is running",
	})
}
