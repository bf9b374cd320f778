// Package testutils holds shared test doubles and conformance specs.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/jarvis/pkg/storage"
	"github.com/papercomputeco/jarvis/pkg/storage/inmemory"
)

// ErrMockStorage is returned by MockDriver when a failure is configured.
var ErrMockStorage = errors.New("mock storage failure")

// MockDriver is an in-memory storage driver that records calls and can be
// told to fail.
type MockDriver struct {
	*inmemory.Driver

	mu sync.Mutex

	// FailGet causes Get to return ErrMockStorage.
	FailGet bool

	// FailPut causes Put and PutBatch to return ErrMockStorage.
	FailPut bool

	// Puts counts successful Put and PutBatch calls.
	Puts int

	// Written accumulates every collection name written, in order.
	Written []string
}

// NewMockDriver creates a new mock driver seeded with the given collections.
func NewMockDriver(seed map[string]string) *MockDriver {
	m := &MockDriver{Driver: inmemory.NewDriver()}
	for name, data := range seed {
		_ = m.Driver.Put(context.Background(), name, []byte(data))
	}
	return m
}

func (m *MockDriver) Get(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	fail := m.FailGet
	m.mu.Unlock()
	if fail {
		return nil, ErrMockStorage
	}
	return m.Driver.Get(ctx, name)
}

func (m *MockDriver) Put(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut {
		return ErrMockStorage
	}
	m.Puts++
	m.Written = append(m.Written, name)
	return m.Driver.Put(ctx, name, data)
}

func (m *MockDriver) PutBatch(ctx context.Context, docs []storage.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut {
		return ErrMockStorage
	}
	m.Puts++
	for _, doc := range docs {
		m.Written = append(m.Written, doc.Name)
	}
	return m.Driver.PutBatch(ctx, docs)
}

// SetFailPut toggles write failures.
func (m *MockDriver) SetFailPut(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailPut = fail
}

// WrittenNames returns a copy of the written collection names.
func (m *MockDriver) WrittenNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Written...)
}

// Text returns the stored payload for name as a string, or "" if absent.
func (m *MockDriver) Text(name string) string {
	data, err := m.Driver.Get(context.Background(), name)
	if err != nil {
		return ""
	}
	return string(data)
}
