// Package anthropic implements llm.Client with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

const (
	name = "anthropic"

	defaultMaxTokens = 1024
)

// Options configures the client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int64
	HTTPClient *http.Client

	// MaxRetries overrides the SDK's retry count when non-nil.
	MaxRetries *int
}

// Client calls Messages.New.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// New creates an Anthropic client.
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

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		client:    anthropic.NewClient(reqOpts...),
		model:     anthropic.Model(opts.Model),
		maxTokens: maxTokens,
	}
}

// Generate sends the conversation and joins the reply's text blocks.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  conversation(messages),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &llm.ModelError{Provider: name, StatusCode: apiErr.StatusCode, Message: http.StatusText(apiErr.StatusCode), Err: err}
		}
		return "", llm.Unavailable(name, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &llm.ModelError{Provider: name, Message: "empty reply"}
	}
	return text, nil
}

// conversation maps messages to Anthropic params. The API requires roles to
// alternate, so consecutive turns from one role become one message.
func conversation(messages []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	var (
		lastRole llm.Role
		blocks   []anthropic.ContentBlockParamUnion
	)

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		if lastRole == llm.RoleModel {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}

	for _, m := range messages {
		if m.Role != lastRole {
			flush()
			lastRole = m.Role
		}
		text := m.GetText()
		if text == "" {
			// Empty text blocks are rejected by the API.
			continue
		}
		blocks = append(blocks, anthropic.NewTextBlock(text))
	}
	flush()

	return out
}
