package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/jarvis/pkg/memory"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// KnowledgeResponse lists the snippets most relevant to a query.
type KnowledgeResponse struct {
	Query    string   `json:"query"`
	Snippets []string `json:"snippets"`
	Count    int      `json:"count"`
}

// HistoryResponse contains the trailing conversation turns.
type HistoryResponse struct {
	// Messages in chronological order (oldest first)
	Messages []memory.Entry `json:"messages"`

	// Total is the full history length.
	Total int `json:"total"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat answers one message. A body that is not JSON is treated as an
// empty message.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Debug("unparseable chat body", "error", err)
		req = ChatRequest{}
	}

	reply, err := s.assistant.HandleQuery(c.UserContext(), req.Message)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(reply)
}

// handleKnowledge handles GET /knowledge.
// Query parameters:
//   - q (required): the query text
//   - k (optional, default 3): number of snippets to return
func (s *Server) handleKnowledge(c *fiber.Ctx) error {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter is required"})
	}

	topK := memory.DefaultTopK
	if kStr := c.Query("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "k must be a positive integer"})
		}
		topK = parsed
	}

	snippets := s.assistant.Memory().FindRelevant(query, topK)
	if snippets == nil {
		snippets = []string{}
	}

	return c.JSON(KnowledgeResponse{Query: query, Snippets: snippets, Count: len(snippets)})
}

// handleHistory handles GET /history.
// Query parameters:
//   - limit (optional): number of trailing turns, all when absent
func (s *Server) handleHistory(c *fiber.Ctx) error {
	mem := s.assistant.Memory()
	total := mem.Stats().Turns

	n := total
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		n = parsed
	}

	return c.JSON(HistoryResponse{Messages: mem.Tail(n), Total: total})
}

// handleStats returns collection sizes and whether a model is configured.
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"memory": s.assistant.Memory().Stats(),
		"model":  s.assistant.HasModel(),
	})
}
