package api

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/jarvis/api/mcp"
	"github.com/papercomputeco/jarvis/pkg/assistant"
	"github.com/papercomputeco/jarvis/pkg/logger"
)

// Server is the API server for the Jarvis assistant
type Server struct {
	config    Config
	assistant *assistant.Assistant
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The assistant is injected so the API
// and the CLI can share one memory.
func NewServer(config Config, a *assistant.Assistant, log *slog.Logger) (*Server, error) {
	if a == nil {
		return nil, assistant.ErrNilMemory
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		assistant: a,
		logger:    logger.Component(log, "api"),
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat", s.handleChat)
	app.Get("/knowledge", s.handleKnowledge)
	app.Get("/history", s.handleHistory)
	app.Get("/stats", s.handleStats)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Memory: a.Memory(),
			Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
