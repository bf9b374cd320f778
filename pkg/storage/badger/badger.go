// Package badger provides an embedded BadgerDB storage driver.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/storage"
)

const keyPrefix = "collection:"

// Options configures the BadgerDB store.
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger's warnings and errors.
	Logger *slog.Logger
}

// Driver implements storage.Driver using BadgerDB.
type Driver struct {
	db *badgerdb.DB
}

// NewDriver opens a BadgerDB store.
func NewDriver(opts Options) (*Driver, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger: Dir is required for on-disk mode")
	}

	dbOpts := badgerdb.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(slogAdapter{log: logger.Component(opts.Logger, "badger")})

	db, err := badgerdb.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Driver{db: db}, nil
}

// Get returns the payload stored under name.
func (d *Driver) Get(_ context.Context, name string) ([]byte, error) {
	var val []byte
	err := d.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, storage.NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("badger: failed to get collection %q: %w", name, err)
	}
	if val == nil {
		val = []byte{}
	}

	return val, nil
}

// Put stores data under name.
func (d *Driver) Put(_ context.Context, name string, data []byte) error {
	err := d.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("badger: failed to put collection %q: %w", name, err)
	}
	return nil
}

// PutBatch writes all documents in a single transaction.
func (d *Driver) PutBatch(_ context.Context, docs []storage.Document) error {
	err := d.db.Update(func(txn *badgerdb.Txn) error {
		for _, doc := range docs {
			if err := txn.Set([]byte(keyPrefix+doc.Name), doc.Data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: failed to put batch: %w", err)
	}
	return nil
}

// List returns collection names in key order.
func (d *Driver) List(_ context.Context) ([]string, error) {
	names := []string{}
	prefix := []byte(keyPrefix)

	err := d.db.View(func(txn *badgerdb.Txn) error {
		iterOpts := badgerdb.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: failed to list collections: %w", err)
	}

	return names, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// slogAdapter routes badger's logger to slog, dropping info and debug.
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Errorf(f string, v ...any) {
	a.log.Error(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (a slogAdapter) Warningf(f string, v ...any) {
	a.log.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (slogAdapter) Infof(string, ...any)  {}
func (slogAdapter) Debugf(string, ...any) {}
