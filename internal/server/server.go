// Package server assembles the Fiber application: middleware, routes and the
// error envelope.
package server

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/makeasinger/fretboard/internal/auth"
	"github.com/makeasinger/fretboard/internal/client"
	"github.com/makeasinger/fretboard/internal/config"
	"github.com/makeasinger/fretboard/internal/handler"
	"github.com/makeasinger/fretboard/internal/middleware"
	"github.com/makeasinger/fretboard/internal/service"
	ws "github.com/makeasinger/fretboard/internal/websocket"
	"github.com/makeasinger/fretboard/pkg/response"
)

// Deps are the collaborators the routes need
type Deps struct {
	Config        *config.Config
	Redis         *redis.Client
	Authenticator *auth.Authenticator
	Diagrams      *service.DiagramService
	Exports       *service.ExportService
	Songbooks     *service.SongbookService
	Hub           *ws.Hub
	// Files, when set, is served under /files for exports kept in memory.
	Files *client.MemoryStorage
	// Services is reported by /health, e.g. {"r2": true, "oidc": false}.
	Services map[string]bool
	// AccessLog disables the request logger when false.
	AccessLog bool
}

// New builds the application
func New(d Deps) *fiber.App {
	cfg := d.Config
	validate := validator.New()

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	if d.AccessLog {
		logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
		if strings.EqualFold(cfg.Server.LogLevel, "debug") {
			logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
			log.Println("Debug logging enabled")
		}
		app.Use(logger.New(logger.Config{Format: logFormat}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": time.Now().Unix()})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"services": d.Services,
		})
	})

	authHandler := handler.NewAuthHandler(d.Authenticator)
	app.Get("/auth/verify", authHandler.Verify)

	rateLimiter := middleware.NewRateLimiter(d.Redis)
	theoryHandler := handler.NewTheoryHandler(d.Diagrams, d.Exports, validate)
	exportHandler := handler.NewExportHandler(d.Exports, validate)
	songbookHandler := handler.NewSongbookHandler(d.Songbooks, validate)

	// Public theory routes
	theory := app.Group("/api/theory", rateLimiter.DiagramLimit(cfg.RateLimit.DiagramPerMin))
	theory.Get("/tunings", theoryHandler.Tunings)
	theory.Post("/note", theoryHandler.Note)
	theory.Post("/tuning", theoryHandler.Tuning)
	theory.Post("/diagram", theoryHandler.Diagram)
	theory.Post("/diagram/raw", theoryHandler.Raw)

	if d.Files != nil {
		app.Get("/files/*", handler.NewFileHandler(d.Files).Get)
	}

	var authMiddleware, wsAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		log.Println("Info: Gateway mode enabled, using header-based auth")
		authMiddleware = middleware.GatewayAuth()
		wsAuthMiddleware = authMiddleware
	} else {
		authMiddleware = middleware.Authenticate(d.Authenticator)
		wsAuthMiddleware = middleware.AuthenticateQuery(d.Authenticator)
	}

	export := app.Group("/api/export", authMiddleware, rateLimiter.ExportLimit(cfg.RateLimit.ExportPerHour))
	export.Post("/diagram", exportHandler.Diagram)

	songbook := app.Group("/api/songbook", authMiddleware)
	songbook.Post("/start", rateLimiter.SongbookLimit(cfg.RateLimit.SongbookPerHour), songbookHandler.Start)
	songbook.Get("/status/:jobId", songbookHandler.Status)
	songbook.Get("/result/:jobId", songbookHandler.Result)
	songbook.Post("/cancel/:jobId", songbookHandler.Cancel)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/jobs/:jobId", wsAuthMiddleware, songbookHandler.Watch, websocket.New(func(c *websocket.Conn) {
		d.Hub.HandleConnection(c, c.Params("jobId"))
	}))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	errCode := response.CodeServiceError
	switch code {
	case fiber.StatusNotFound:
		errCode = response.CodeNotFound
	case fiber.StatusRequestEntityTooLarge, fiber.StatusBadRequest:
		errCode = response.CodeValidationError
	}

	return response.Error(c, code, errCode, message, nil)
}
