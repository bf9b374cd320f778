// Package openai implements llm.Client with the OpenAI Chat Completions API.
// Any OpenAI-compatible server can be reached through BaseURL.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

const name = "openai"

// Options configures the client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client

	// MaxRetries overrides the SDK's retry count when non-nil.
	MaxRetries *int
}

// Client calls Chat.Completions.New.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI client.
func New(opts Options) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.MaxRetries != nil {
		reqOpts = append(reqOpts, option.WithMaxRetries(*opts.MaxRetries))
	}

	return &Client{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

// Generate sends the conversation and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: conversation(messages),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &llm.ModelError{Provider: name, StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
		}
		return "", llm.Unavailable(name, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &llm.ModelError{Provider: name, Message: "empty reply"}
	}
	return resp.Choices[0].Message.Content, nil
}

func conversation(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleModel {
			out = append(out, openai.AssistantMessage(m.GetText()))
		} else {
			out = append(out, openai.UserMessage(m.GetText()))
		}
	}
	return out
}
