// Package mcp provides an MCP (Model Context Protocol) server exposing the
// assistant's knowledge base and answer cache as tools.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	"github.com/papercomputeco/jarvis/pkg/utils"
)

type Config struct {
	// Memory answers the tools. Required unless Noop.
	Memory *memory.Memory

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	logger    *slog.Logger
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the knowledge tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
		logger: logger.Component(c.Logger, "mcp"),
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "jarvis",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Memory == nil {
			return nil, errors.New("memory is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        knowledgeSearchToolName,
			Description: knowledgeSearchDescription,
		}, s.handleKnowledgeSearch)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        qaLookupToolName,
			Description: qaLookupDescription,
		}, s.handleQALookup)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// errorResult builds a tool error result.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// textResult serializes output as JSON text alongside the structured content.
func textResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}
