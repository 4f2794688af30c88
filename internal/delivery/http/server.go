package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/hindrance-reporter/internal/config"
	"github.com/hindrance-reporter/internal/delivery/http/handler"
	"github.com/hindrance-reporter/internal/delivery/http/middleware"
	"github.com/hindrance-reporter/internal/pkg/errors"
	"github.com/hindrance-reporter/internal/pkg/utils"
)

// Handlers - обработчики, из которых собираются маршруты
type Handlers struct {
	Journey *handler.JourneyHandler
	Types   *handler.TypeHandler
	Reports *handler.ReportHandler
	Review  *handler.ReviewHandler
	Health  *handler.HealthHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Hindrance Reporter",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - fiber приложение (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Без идентификации
	api.Get("/health", s.handlers.Health.Health)
	api.Get("/hindrance-types", s.handlers.Types.GetHindranceTypes)
	api.Get("/object-types", s.handlers.Types.GetObjectTypes)

	user := api.Group("", middleware.Identity())

	// Journey routes
	user.Post("/sync-object", s.handlers.Journey.SyncObject)
	user.Post("/finalize-journey", s.handlers.Journey.FinalizeJourney)

	// Report routes
	user.Get("/reports", s.handlers.Reports.ListReports)
	user.Get("/reports/:id", s.handlers.Reports.GetReport)
	user.Get("/reports/:id/geojson", s.handlers.Reports.GetReportGeoJSON)

	// Review routes
	review := user.Group("/review", middleware.RequireRole(middleware.RoleReviewer))
	review.Get("/reports", s.handlers.Review.ListReports)
	review.Post("/objects/:id", s.handlers.Review.ReviewObject)
	review.Post("/reports/:id/status", s.handlers.Review.SetReportStatus)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, превышение лимита тела) в общем формате
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return utils.SendError(c, errors.New("HTTP_ERROR", message, code))
	}
}
