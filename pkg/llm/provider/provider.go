// Package provider builds an llm.Client for a configured model provider.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/gemini"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/ollama"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/openai"
	"github.com/papercomputeco/jarvis/pkg/logger"
)

// ErrNoClient is returned for the "none" provider: the assistant runs on
// local knowledge and the QA cache only.
var ErrNoClient = errors.New("no model provider configured")

// Config selects and configures a provider.
type Config struct {
	// Provider is one of SupportedProviders.
	Provider string

	// Model overrides DefaultModel.
	Model string

	// BaseURL overrides the provider's API endpoint.
	BaseURL string

	// APIKey overrides the key read from APIKeyEnv.
	APIKey string

	// Project and Location are used by the vertex provider.
	Project  string
	Location string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New creates a client for c.Provider. Returns ErrNoClient for "none" or an
// empty provider, and an error for unknown providers or missing credentials.
func New(ctx context.Context, c Config) (llm.Client, error) {
	log := logger.OrNop(c.Logger)

	model := c.Model
	if model == "" {
		model = DefaultModel(c.Provider)
	}

	apiKey := c.APIKey
	if apiKey == "" {
		if env := APIKeyEnv(c.Provider); env != "" {
			apiKey = os.Getenv(env)
		}
	}

	switch c.Provider {
	case "", None:
		return nil, ErrNoClient
	case Gemini, Anthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("%s: %s is not set", c.Provider, APIKeyEnv(c.Provider))
		}
	case OpenAI:
		// OpenAI-compatible servers behind a custom base URL often need no key.
		if apiKey == "" && c.BaseURL == "" {
			return nil, fmt.Errorf("%s: %s is not set", c.Provider, APIKeyEnv(c.Provider))
		}
	case Vertex, Ollama:
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", c.Provider, SupportedProviders())
	}

	log.Debug("creating model client", "provider", c.Provider, "model", model)

	switch c.Provider {
	case Gemini, Vertex:
		return gemini.New(ctx, gemini.Options{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    c.BaseURL,
			Vertex:     c.Provider == Vertex,
			Project:    c.Project,
			Location:   c.Location,
			HTTPClient: c.HTTPClient,
		})
	case Anthropic:
		return anthropic.New(anthropic.Options{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    c.BaseURL,
			HTTPClient: c.HTTPClient,
		}), nil
	case OpenAI:
		return openai.New(openai.Options{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    c.BaseURL,
			HTTPClient: c.HTTPClient,
		}), nil
	default:
		return ollama.New(ollama.Options{
			Model:      model,
			BaseURL:    c.BaseURL,
			HTTPClient: c.HTTPClient,
		}), nil
	}
}
