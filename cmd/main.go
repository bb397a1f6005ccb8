package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intervu-ai/intervu-server/internal/config"
	"github.com/intervu-ai/intervu-server/internal/database"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/handler"
	"github.com/intervu-ai/intervu-server/internal/interview"
	"github.com/intervu-ai/intervu-server/internal/janitor"
	"github.com/intervu-ai/intervu-server/internal/middleware"
	"github.com/intervu-ai/intervu-server/internal/oracle"
	"github.com/intervu-ai/intervu-server/internal/repository"
	"github.com/intervu-ai/intervu-server/internal/routes"
	"github.com/intervu-ai/intervu-server/internal/service"
	"github.com/intervu-ai/intervu-server/internal/timer"
	"github.com/intervu-ai/intervu-server/pkg/genai"
	"github.com/intervu-ai/intervu-server/pkg/imagekit"
	"github.com/intervu-ai/intervu-server/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zapLog, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLog.Sync()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		zapLog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	jwtManager := jwt.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	candidateRepo := repository.NewCandidateRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	settingsRepo := repository.NewSettingsRepository(redisClient)

	genaiClient := buildGenAIClient(cfg, settingsRepo, zapLog)

	var storageClient *imagekit.Client
	if cfg.ImageKit.PrivateKey != "" {
		storageClient = imagekit.NewClient(imagekit.Config{
			PublicKey:   cfg.ImageKit.PublicKey,
			PrivateKey:  cfg.ImageKit.PrivateKey,
			URLEndpoint: cfg.ImageKit.URLEndpoint,
		})
	} else {
		zapLog.Warn("imagekit not configured, recording uploads disabled")
	}

	var scoringOracle oracle.Oracle
	if genaiClient != nil {
		scoringOracle = oracle.NewGeminiOracle(genaiClient)
	} else {
		zapLog.Warn("no oracle api key configured, running on fallback questions and grades")
		scoringOracle = oracle.NewUnavailableOracle()
	}
	retrier := oracle.NewRetrier(scoringOracle, cfg.Oracle.MaxAttempts, cfg.Oracle.RetryDelay, zapLog)

	hub := interview.NewHub()
	clock := timer.SystemClock()

	authService := service.NewAuthService(cfg.Auth, jwtManager)
	candidateService := service.NewCandidateService(candidateRepo, sessionRepo, recordingRepo, genaiClient, storageClient, cacheRepo)
	interviewService := service.NewInterviewService(sessionRepo, candidateRepo, recordingRepo, retrier, hub, storageClient, cacheRepo, clock, cfg.Interview, zapLog)
	dashboardService := service.NewDashboardService(candidateRepo, sessionRepo, recordingRepo, candidateService, cacheRepo, hub)
	reportService := service.NewReportService(dashboardService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	authHandler := handler.NewAuthHandler(authService)
	candidateHandler := handler.NewCandidateHandler(candidateService)
	interviewHandler := handler.NewInterviewHandler(interviewService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, reportService)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	wsHandler := handler.NewWSHandler(hub, zapLog)

	app := fiber.New(fiber.Config{
		AppName:      "Intervu API",
		BodyLimit:    60 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowCredentials: false,
	}))

	routes.Setup(app, routes.Handlers{
		Auth:      authHandler,
		Candidate: candidateHandler,
		Interview: interviewHandler,
		Dashboard: dashboardHandler,
		Settings:  settingsHandler,
		WS:        wsHandler,
	}, routes.Middlewares{
		Auth: authMiddleware,
	})

	sessionJanitor := janitor.New(sessionRepo, hub, clock, cfg.Interview.StaleAfter, zapLog)
	if err := sessionJanitor.Start(); err != nil {
		zapLog.Fatal("failed to start session janitor", zap.Error(err))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		zapLog.Info("shutting down")
		sessionJanitor.Stop()
		hub.Shutdown()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	port := cfg.App.Port
	if port == "" {
		port = "3000"
	}

	zapLog.Info("server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		zapLog.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// buildGenAIClient prefers the environment key and falls back to the key the
// interviewer stored through the settings endpoint.
func buildGenAIClient(cfg *config.Config, settingsRepo domain.SettingsRepository, zapLog *zap.Logger) *genai.Client {
	apiKey := cfg.Oracle.APIKey
	if apiKey == "" {
		stored, err := settingsRepo.GetOracleAPIKey(context.Background())
		if err != nil {
			zapLog.Warn("failed to read stored oracle api key", zap.Error(err))
		}
		apiKey = stored
	}
	if apiKey == "" {
		return nil
	}

	client, err := genai.NewClient(genai.Config{
		APIKey: apiKey,
		Model:  cfg.Oracle.Model,
	})
	if err != nil {
		zapLog.Warn("failed to create genai client", zap.Error(err))
		return nil
	}
	return client
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
