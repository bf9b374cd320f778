// Package watch reloads memory inputs when their files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
)

// DefaultDebounce coalesces bursts of events from a single save.
const DefaultDebounce = 200 * time.Millisecond

// ErrNoResolver is returned when the watcher cannot map file names to
// collections.
var ErrNoResolver = errors.New("watch: resolver is nil")

// Reloader re-reads memory inputs. *memory.Memory satisfies it.
type Reloader interface {
	Reload(ctx context.Context)
}

// Resolver maps a file base name to a collection name. *file.Driver
// satisfies it.
type Resolver interface {
	Dir() string
	CollectionFor(base string) (string, bool)
}

// Config configures a Watcher.
type Config struct {
	Resolver Resolver
	Reloader Reloader

	// Collections limits which collections trigger a reload. Defaults to
	// memory.ReloadableCollections.
	Collections []string

	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher watches the file driver's directory.
type Watcher struct {
	resolver    Resolver
	reloader    Reloader
	collections []string
	debounce    time.Duration
	log         *slog.Logger

	mu      sync.Mutex
	reloads int
}

// New creates a Watcher. Call Run to start watching.
func New(c Config) (*Watcher, error) {
	if c.Resolver == nil {
		return nil, ErrNoResolver
	}
	if c.Reloader == nil {
		return nil, errors.New("watch: reloader is nil")
	}

	collections := c.Collections
	if len(collections) == 0 {
		collections = memory.ReloadableCollections
	}

	debounce := c.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		resolver:    c.Resolver,
		reloader:    c.Reloader,
		collections: collections,
		debounce:    debounce,
		log:         logger.Component(c.Logger, "watch"),
	}, nil
}

// Reloads returns how many reloads the watcher has triggered.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Run watches until ctx is cancelled. The directory is watched rather than
// the files so atomic replace-by-rename is seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dir := w.resolver.Dir()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.log.Info("watching memory inputs", "dir", dir)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("memory input changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			w.reload(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name, ok := w.resolver.CollectionFor(filepath.Base(event.Name))
	return ok && slices.Contains(w.collections, name)
}

func (w *Watcher) reload(ctx context.Context) {
	w.reloader.Reload(ctx)

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.log.Info("memory inputs reloaded")
}
