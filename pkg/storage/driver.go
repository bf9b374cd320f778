// Package storage defines the durable backends that hold the assistant's
// named collections.
//
// A collection is an opaque document (JSON in practice) stored under a short
// name such as "history" or "facts". Drivers know nothing about what a
// collection contains; decoding and the default-on-corruption policy live in
// pkg/memory.
package storage

import (
	"context"
)

// Document is a named collection payload.
type Document struct {
	Name string
	Data []byte
}

// Driver defines the interface for persisting and retrieving collections in a
// storage backend.
type Driver interface {
	// Get returns the stored payload for name. Returns NotFoundError if the
	// collection has never been written.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores data under name, replacing any previous payload.
	Put(ctx context.Context, name string, data []byte) error

	// PutBatch stores several collections. Backends that support transactions
	// apply the batch atomically; others write documents in order and stop at
	// the first failure.
	PutBatch(ctx context.Context, docs []Document) error

	// List returns the names of all stored collections in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
