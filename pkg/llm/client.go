package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable is wrapped by clients when the model could not be reached
// at all: no credentials, transport failure, cancelled context.
var ErrModelUnavailable = errors.New("language model unavailable")

// Client generates a reply for an ordered conversation.
type Client interface {
	// Generate returns the model's text reply for messages. Failures either
	// wrap ErrModelUnavailable or are a *ModelError.
	Generate(ctx context.Context, messages []Message) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, messages []Message) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// ModelError is returned when the provider answered but rejected the request
// or produced no usable reply.
type ModelError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ModelError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: model error (status %d): %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: model error: %s", e.Provider, msg)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err so that errors.Is(err, ErrModelUnavailable) holds.
func Unavailable(provider string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", provider, ErrModelUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", provider, ErrModelUnavailable, err)
}
