package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/photo-watermark/internal/config"
	"github.com/photo-watermark/internal/delivery/http/handler"
	"github.com/photo-watermark/internal/delivery/http/middleware"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	fontHandler    *handler.FontHandler
	photoHandler   *handler.PhotoHandler
	geocodeHandler *handler.GeocodeHandler
	healthHandler  *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	fontHandler *handler.FontHandler,
	photoHandler *handler.PhotoHandler,
	geocodeHandler *handler.GeocodeHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Photo Watermark",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		fontHandler:    fontHandler,
		photoHandler:   photoHandler,
		geocodeHandler: geocodeHandler,
		healthHandler:  healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.healthHandler.Health)

	// Fonts
	api.Get("/fonts", s.fontHandler.ListFonts)
	api.Post("/fonts/refresh", s.fontHandler.RefreshFonts)

	// Photos
	api.Get("/metadata", s.photoHandler.Metadata)
	api.Post("/lines", s.photoHandler.Lines)
	api.Post("/preview", s.photoHandler.Preview)
	api.Post("/process", s.photoHandler.Process)
	api.Post("/process/check-existing", s.photoHandler.CheckExisting)

	// Geocoding
	api.Post("/reverse-geocode", s.geocodeHandler.ReverseGeocode)
	api.Post("/geocode/test-key", s.geocodeHandler.TestAPIKey)
	api.Delete("/geocode/cache", s.geocodeHandler.PurgeCache)
}

// App - для тестов через app.Test
func (s *Server) App() *fiber.App {
	return s.app
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

// customErrorHandler - ошибки, не обработанные хендлерами (404, 405, паники)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := apperrors.As(err); ok {
			return utils.SendError(c, err)
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    utils.StatusCode(code),
				"message": err.Error(),
			},
		})
	}
}
