// Package gemini implements llm.Client with the Google Gen AI SDK, against
// either the Gemini API or Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

const name = "gemini"

// Options configures the client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string

	// Vertex selects the Vertex AI backend using Project, Location and
	// application default credentials.
	Vertex   bool
	Project  string
	Location string

	HTTPClient *http.Client
}

// Client calls Models.GenerateContent.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gen AI client.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.BaseURL,
		},
	}
	if opts.Vertex {
		cfg.APIKey = ""
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &Client{client: client, model: opts.Model}, nil
}

// Generate sends the conversation and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents(messages), nil)
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &llm.ModelError{Provider: name, Message: "empty reply"}
	}
	return text, nil
}

// contents maps messages to Gen AI contents, merging consecutive turns from
// the same role.
func contents(messages []llm.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	var last *genai.Content
	for _, m := range messages {
		role := string(genai.RoleUser)
		if m.Role == llm.RoleModel {
			role = string(genai.RoleModel)
		}

		part := genai.NewPartFromText(m.GetText())
		if last != nil && last.Role == role {
			last.Parts = append(last.Parts, part)
			continue
		}

		last = &genai.Content{Role: role, Parts: []*genai.Part{part}}
		out = append(out, last)
	}
	return out
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ModelError{Provider: name, StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &llm.ModelError{Provider: name, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return llm.Unavailable(name, err)
}
