// Package sqldriver is the shared database/sql implementation behind the
// sqlite and postgres storage drivers.
//
// Both backends keep every collection in a single table:
//
//	collections(name TEXT PRIMARY KEY, data BLOB|BYTEA, updated_at TIMESTAMP)
//
// and differ only in placeholder syntax and column types.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/papercomputeco/jarvis/pkg/storage"
)

// Dialect describes the SQL differences between backends.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// Schema is the CREATE TABLE statement for the collections table.
	Schema string

	// Placeholder returns the bind marker for the n'th (1-based) parameter.
	Placeholder func(n int) string
}

// Driver implements storage.Driver over a *sql.DB.
type Driver struct {
	DB      *sql.DB
	dialect Dialect

	get    string
	upsert string
	list   string
}

// New runs the dialect schema against db and returns a ready driver.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	p := dialect.Placeholder
	return &Driver{
		DB:      db,
		dialect: dialect,
		get:     "SELECT data FROM collections WHERE name = " + p(1),
		upsert: fmt.Sprintf(
			"INSERT INTO collections (name, data, updated_at) VALUES (%s, %s, %s) "+
				"ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at",
			p(1), p(2), p(3),
		),
		list: "SELECT name FROM collections ORDER BY name",
	}, nil
}

// Get returns the payload stored under name.
func (d *Driver) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := d.DB.QueryRowContext(ctx, d.get, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get collection %q: %w", d.dialect.Name, name, err)
	}
	if data == nil {
		data = []byte{}
	}

	return data, nil
}

// Put upserts a single collection.
func (d *Driver) Put(ctx context.Context, name string, data []byte) error {
	if _, err := d.DB.ExecContext(ctx, d.upsert, name, nonNil(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: failed to put collection %q: %w", d.dialect.Name, name, err)
	}
	return nil
}

// PutBatch upserts all documents in one transaction.
func (d *Driver) PutBatch(ctx context.Context, docs []storage.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", d.dialect.Name, err)
	}

	now := time.Now().UTC()
	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx, d.upsert, doc.Name, nonNil(doc.Data), now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: failed to put collection %q: %w", d.dialect.Name, doc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", d.dialect.Name, err)
	}
	return nil
}

// List returns all collection names.
func (d *Driver) List(ctx context.Context) ([]string, error) {
	rows, err := d.DB.QueryContext(ctx, d.list)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list collections: %w", d.dialect.Name, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: failed to scan collection name: %w", d.dialect.Name, err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

func nonNil(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
