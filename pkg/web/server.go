// Package web exposes the relay over HTTP with Fiber.
package web

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/teslashibe/voice-relay/internal/metrics"
	"github.com/teslashibe/voice-relay/pkg/audiostore"
	"github.com/teslashibe/voice-relay/pkg/relay"
)

// DefaultBodyLimit admits a few minutes of uncompressed 16 kHz speech.
const DefaultBodyLimit = 25 << 20

// Server is the relay's HTTP front end.
type Server struct {
	app       *fiber.App
	relay     *relay.Relay
	store     *audiostore.Store
	metrics   *metrics.Collector
	hostedURL string
	accessLog bool
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHostedURL fixes the public base URL used in returned audio links.
// When empty, the request's own base URL is used.
func WithHostedURL(url string) Option {
	return func(s *Server) { s.hostedURL = strings.TrimSuffix(url, "/") }
}

// WithMetrics serves m on GET /metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAccessLog enables Fiber's request logger.
func WithAccessLog(enabled bool) Option {
	return func(s *Server) { s.accessLog = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds the Fiber app and registers every route.
func NewServer(r *relay.Relay, store *audiostore.Store, opts ...Option) *Server {
	s := &Server{
		relay:  r,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "web")

	app := fiber.New(fiber.Config{
		AppName:               "voice-relay",
		DisableStartupMessage: true,
		BodyLimit:             DefaultBodyLimit,
		ErrorHandler:          s.handleError,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if s.accessLog {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	app.Post("/stt", s.handleSTT)
	app.Post("/tts", s.handleTTS)
	app.Post("/generate", s.handleGenerate)
	app.Get("/audio/:filename", s.handleAudio)
	app.Post("/vapi-webhook", s.handleWebhook)
	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	s.app = app
	return s
}

// App returns the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleError renders every error as {"error": message}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.logger.Error("unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// audioURL builds the public link for a stored file.
func (s *Server) audioURL(c *fiber.Ctx, name string) string {
	base := s.hostedURL
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/audio/" + name
}
