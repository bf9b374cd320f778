// Package jarvis wires configuration into a running assistant: the
// collection store, memory, model client, turn event publishing and the
// file watcher.
package jarvis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/jarvis/pkg/assistant"
	"github.com/papercomputeco/jarvis/pkg/config"
	"github.com/papercomputeco/jarvis/pkg/dotdir"
	"github.com/papercomputeco/jarvis/pkg/eventstream"
	"github.com/papercomputeco/jarvis/pkg/eventstream/kafka"
	"github.com/papercomputeco/jarvis/pkg/eventstream/nop"
	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/llm/provider"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	"github.com/papercomputeco/jarvis/pkg/storage"
	"github.com/papercomputeco/jarvis/pkg/storage/badger"
	"github.com/papercomputeco/jarvis/pkg/storage/file"
	"github.com/papercomputeco/jarvis/pkg/storage/inmemory"
	"github.com/papercomputeco/jarvis/pkg/storage/postgres"
	"github.com/papercomputeco/jarvis/pkg/storage/sqlite"
	"github.com/papercomputeco/jarvis/pkg/watch"
	"github.com/papercomputeco/jarvis/pkg/worker"
)

// Storage providers.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
	StorageInMemory = "inmemory"
)

// Event stream providers.
const (
	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

const sqliteFile = "jarvis.db"

// Options configures New.
type Options struct {
	// Config is the resolved configuration. Defaults to config.NewDefaultConfig.
	Config *config.Config

	// ConfigDir overrides the .jarvis/ directory used for default paths.
	ConfigDir string

	// Driver, Client and Publisher replace the configured ones when set.
	Driver    storage.Driver
	Client    llm.Client
	Publisher eventstream.Publisher

	Logger *slog.Logger
}

// Runtime is a wired assistant and the resources it owns.
type Runtime struct {
	Config    *config.Config
	Driver    storage.Driver
	Memory    *memory.Memory
	Assistant *assistant.Assistant
	Pool      *worker.Pool

	// Watcher is nil unless storage.watch is set with the file provider.
	Watcher *watch.Watcher

	log *slog.Logger
}

// New builds a Runtime. A model client that cannot be created is logged and
// left unset: the assistant keeps answering from memory.
func New(ctx context.Context, opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	log := logger.OrNop(opts.Logger)

	r := &Runtime{Config: cfg, log: log}

	driver := opts.Driver
	if driver == nil {
		var err error
		driver, err = newDriver(ctx, cfg.Storage, opts.ConfigDir, log)
		if err != nil {
			return nil, err
		}
	}
	r.Driver = driver

	mem, err := memory.New(ctx, memory.Config{
		Driver: driver,
		Logger: log,
		Assembler: memory.Assembler{
			Persona: memory.Persona{Name: cfg.Assistant.Name, Owner: cfg.Assistant.Owner},
			TopK:    int(cfg.Memory.TopK),
			Window:  int(cfg.Memory.ContextWindow),
		},
	})
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("loading memory: %w", err)
	}
	r.Memory = mem

	client := opts.Client
	if client == nil {
		client = newClient(ctx, cfg.Model, log)
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher, err = newPublisher(cfg.EventStream)
		if err != nil {
			_ = driver.Close()
			return nil, err
		}
	}

	r.Pool, err = worker.NewPool(&worker.Config{Publisher: publisher, Logger: log})
	if err != nil {
		_ = publisher.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	acfg := assistant.Config{
		Memory:   mem,
		Provider: cfg.Model.Provider,
		Model:    modelName(cfg.Model),
		Events:   r.Pool,
		Logger:   log,
	}
	if client != nil {
		acfg.Client = client
	}
	r.Assistant, err = assistant.New(acfg)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	if fd, ok := driver.(*file.Driver); ok && cfg.Storage.Watch {
		r.Watcher, err = watch.New(watch.Config{Resolver: fd, Reloader: mem, Logger: log})
		if err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

// Watch runs the file watcher until ctx is cancelled. It returns at once when
// watching is disabled.
func (r *Runtime) Watch(ctx context.Context) error {
	if r.Watcher == nil {
		return nil
	}
	return r.Watcher.Run(ctx)
}

// Close drains pending turn events, then closes the publisher and the store.
func (r *Runtime) Close() error {
	var errs []error
	if r.Pool != nil {
		r.Pool.Close()
		if err := r.Pool.Publisher().Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing publisher: %w", err))
		}
	}
	if r.Driver != nil {
		if err := r.Driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newDriver(ctx context.Context, c config.StorageConfig, configDir string, log *slog.Logger) (storage.Driver, error) {
	switch strings.ToLower(c.Provider) {
	case "", StorageFile:
		dir, err := resolveDir(c.Dir, configDir)
		if err != nil {
			return nil, err
		}
		log.Info("using file storage", "dir", dir)
		return file.NewDriver(file.Options{Dir: dir, Names: memory.FileNames})

	case StorageSQLite:
		path := c.SQLitePath
		if path == "" {
			dir, err := resolveDir("", configDir)
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, sqliteFile)
		}
		d, err := sqlite.NewSQLiteDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return d, nil

	case StoragePostgres:
		if c.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for postgres storage")
		}
		d, err := postgres.NewDriver(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storage: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return d, nil

	case StorageBadger:
		dir := c.Dir
		if dir == "" {
			base, err := resolveDir("", configDir)
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "badger")
		}
		d, err := badger.NewDriver(badger.Options{Dir: dir, Logger: log})
		if err != nil {
			return nil, err
		}
		log.Info("using badger storage", "dir", dir)
		return d, nil

	case StorageInMemory:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", c.Provider)
	}
}

func resolveDir(dir, configDir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving jarvis dir: %w", err)
	}
	return target, nil
}

func newClient(ctx context.Context, c config.ModelConfig, log *slog.Logger) llm.Client {
	client, err := provider.New(ctx, provider.Config{
		Provider: c.Provider,
		Model:    c.Name,
		BaseURL:  c.Upstream,
		Logger:   log,
	})
	switch {
	case errors.Is(err, provider.ErrNoClient):
		log.Info("no model provider configured, answering from memory only")
		return nil
	case err != nil:
		log.Error("failed to initialize model client", "provider", c.Provider, "error", err)
		return nil
	}
	return client
}

func newPublisher(c config.EventStreamConfig) (eventstream.Publisher, error) {
	switch strings.ToLower(c.Provider) {
	case "", EventStreamNop:
		return nop.NewPublisher(), nil
	case EventStreamKafka:
		p, err := kafka.NewPublisher(kafka.Config{Brokers: c.BrokerList(), Topic: c.Topic})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q", c.Provider)
	}
}

func modelName(c config.ModelConfig) string {
	if c.Name != "" {
		return c.Name
	}
	return provider.DefaultModel(c.Provider)
}
