// Package ollama implements llm.Client against a local Ollama server's
// /api/chat endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

const (
	name = "ollama"

	// DefaultBaseURL is where a local Ollama listens.
	DefaultBaseURL = "http://localhost:11434"
)

// Options configures the client.
type Options struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client posts non-streaming chat requests.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates an Ollama client.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Client{
		baseURL:    baseURL,
		model:      opts.Model,
		httpClient: httpClient,
	}
}

// Generate sends the conversation and returns the reply content.
func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(messages)),
		Stream:   false,
	}
	for _, m := range messages {
		role := "user"
		if m.Role == llm.RoleModel {
			role = "assistant"
		}
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: role, Content: m.GetText()})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", llm.Unavailable(name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", llm.Unavailable(name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.Unavailable(name, err)
	}

	var chat chatResponse
	decodeErr := json.Unmarshal(body, &chat)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && chat.Error != "" {
			msg = chat.Error
		}
		return "", &llm.ModelError{Provider: name, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &llm.ModelError{Provider: name, StatusCode: resp.StatusCode, Message: "invalid response", Err: decodeErr}
	}
	if strings.TrimSpace(chat.Message.Content) == "" {
		return "", &llm.ModelError{Provider: name, Message: "empty reply"}
	}

	return chat.Message.Content, nil
}
