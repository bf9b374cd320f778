package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

// MockClient is an llm.Client that records calls and returns a configured
// reply or error.
type MockClient struct {
	mu sync.Mutex

	// Reply is returned by Generate when Err is nil.
	Reply string

	// Err is returned by Generate when set.
	Err error

	calls [][]llm.Message
}

// NewMockClient creates a mock that always answers reply.
func NewMockClient(reply string) *MockClient {
	return &MockClient{Reply: reply}
}

func (m *MockClient) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]llm.Message(nil), messages...))
	if err := ctx.Err(); err != nil {
		return "", llm.Unavailable("mock", err)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns the number of Generate calls.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastMessages returns the messages of the most recent call.
func (m *MockClient) LastMessages() []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
