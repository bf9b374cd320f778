// Package inmemory provides a process-local storage.Driver, used for tests and
// for running without durable state.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/papercomputeco/jarvis/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of collections
	mu sync.RWMutex

	// docs maps collection name to its last written payload
	docs map[string][]byte
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string][]byte),
	}
}

// Get returns a copy of the stored payload.
func (d *Driver) Get(_ context.Context, name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.docs[name]
	if !ok {
		return nil, storage.NotFoundError{Name: name}
	}

	return slices.Clone(data), nil
}

// Put stores a copy of data so callers may reuse their buffer.
func (d *Driver) Put(_ context.Context, name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs[name] = slices.Clone(data)
	return nil
}

// PutBatch stores every document under a single lock.
func (d *Driver) PutBatch(_ context.Context, docs []storage.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		d.docs[doc.Name] = slices.Clone(doc.Data)
	}
	return nil
}

// List returns the stored collection names.
func (d *Driver) List(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.docs))
	for name := range d.docs {
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}

// Count returns the number of collections held.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
