// Package file provides a storage driver that keeps each collection in its own
// JSON file inside a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/jarvis/pkg/storage"
)

const defaultExt = ".json"

// Options configures the file driver.
type Options struct {
	// Dir holds the collection files. Created if missing.
	Dir string

	// Names maps a collection name to its file name. Collections not present
	// are stored as "<name>.json".
	Names map[string]string
}

// Driver implements storage.Driver on the local filesystem.
type Driver struct {
	mu    sync.RWMutex
	dir   string
	names map[string]string
	files map[string]string
}

// NewDriver creates the directory if needed and returns a driver rooted there.
func NewDriver(opts Options) (*Driver, error) {
	if opts.Dir == "" {
		return nil, errors.New("file: Dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	d := &Driver{
		dir:   opts.Dir,
		names: make(map[string]string, len(opts.Names)),
		files: make(map[string]string, len(opts.Names)),
	}
	for name, file := range opts.Names {
		d.names[name] = file
		d.files[file] = name
	}

	return d, nil
}

// Dir returns the root directory.
func (d *Driver) Dir() string {
	return d.dir
}

// Path returns the file path backing collection name.
func (d *Driver) Path(name string) string {
	if file, ok := d.names[name]; ok {
		return filepath.Join(d.dir, file)
	}
	return filepath.Join(d.dir, name+defaultExt)
}

// CollectionFor maps a file base name back to its collection name.
func (d *Driver) CollectionFor(base string) (string, bool) {
	if name, ok := d.files[base]; ok {
		return name, true
	}
	if name, ok := strings.CutSuffix(base, defaultExt); ok && name != "" {
		if _, mapped := d.names[name]; !mapped {
			return name, true
		}
	}
	return "", false
}

// Get reads the collection file.
func (d *Driver) Get(_ context.Context, name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(d.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.NotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("file: failed to read collection %q: %w", name, err)
	}

	return data, nil
}

// Put replaces the collection file atomically.
func (d *Driver) Put(_ context.Context, name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.write(name, data)
}

// PutBatch writes each document in order, stopping at the first failure.
func (d *Driver) PutBatch(_ context.Context, docs []storage.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if err := d.write(doc.Name, doc.Data); err != nil {
			return err
		}
	}
	return nil
}

// List returns the collections with a file present in the directory.
func (d *Driver) List(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("file: failed to list directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := d.CollectionFor(entry.Name()); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return names, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) write(name string, data []byte) error {
	target := d.Path(name)

	tmp, err := os.CreateTemp(d.dir, "."+filepath.Base(target)+"-*")
	if err != nil {
		return fmt.Errorf("file: failed to create temp file for %q: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: failed to write collection %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: failed to write collection %q: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: failed to replace collection %q: %w", name, err)
	}

	return nil
}
