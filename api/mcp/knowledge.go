package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/jarvis/pkg/memory"
)

var (
	knowledgeSearchToolName    = "knowledge_search"
	knowledgeSearchDescription = "Search the assistant's knowledge base of facts and biography. Returns the snippets sharing the most words with the query, best first."

	qaLookupToolName    = "qa_lookup"
	qaLookupDescription = "Look up the answer previously given to a question. Questions match case-insensitively after trimming whitespace."
)

// KnowledgeSearchInput represents the input arguments for the knowledge_search tool.
type KnowledgeSearchInput struct {
	Query string `json:"query" jsonschema:"the text to match against knowledge snippets"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of snippets to return (default: 3)"`
}

// KnowledgeSearchOutput represents the output of the knowledge_search tool.
type KnowledgeSearchOutput struct {
	Query    string   `json:"query"`
	Snippets []string `json:"snippets"`
	Count    int      `json:"count"`
}

// QALookupInput represents the input arguments for the qa_lookup tool.
type QALookupInput struct {
	Question string `json:"question" jsonschema:"the question to look up"`
}

// QALookupOutput represents the output of the qa_lookup tool.
type QALookupOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Found    bool   `json:"found"`
}

func (s *Server) handleKnowledgeSearch(_ context.Context, _ *mcp.CallToolRequest, input KnowledgeSearchInput) (*mcp.CallToolResult, KnowledgeSearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query is required"), KnowledgeSearchOutput{}, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = memory.DefaultTopK
	}

	s.logger.Debug("MCP knowledge search", "query", input.Query, "top_k", topK)

	snippets := s.config.Memory.FindRelevant(input.Query, topK)
	if snippets == nil {
		snippets = []string{}
	}

	output := KnowledgeSearchOutput{
		Query:    input.Query,
		Snippets: snippets,
		Count:    len(snippets),
	}

	result, err := textResult(output)
	if err != nil {
		s.logger.Error("failed to marshal knowledge search output", "error", err)
		return errorResult("Failed to serialize results: %v", err), KnowledgeSearchOutput{}, nil
	}
	return result, output, nil
}

func (s *Server) handleQALookup(_ context.Context, _ *mcp.CallToolRequest, input QALookupInput) (*mcp.CallToolResult, QALookupOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return errorResult("question is required"), QALookupOutput{}, nil
	}

	answer, found := s.config.Memory.CachedAnswer(input.Question)
	output := QALookupOutput{
		Question: input.Question,
		Answer:   answer,
		Found:    found,
	}

	result, err := textResult(output)
	if err != nil {
		s.logger.Error("failed to marshal qa lookup output", "error", err)
		return errorResult("Failed to serialize results: %v", err), QALookupOutput{}, nil
	}
	return result, output, nil
}
