// Package servecmder provides the serve command for running the Jarvis API.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/jarvis/api"
	"github.com/papercomputeco/jarvis/pkg/config"
	"github.com/papercomputeco/jarvis/pkg/jarvis"
	"github.com/papercomputeco/jarvis/pkg/logger"
)

type serveCommander struct {
	debug     bool
	configDir string
	noMCP     bool
	logFile   string

	listen      string
	provider    string
	model       string
	upstream    string
	storage     string
	storageDir  string
	sqlitePath  string
	postgresDSN string
	watch       bool
	eventStream string
	brokers     string
	topic       string

	logger *slog.Logger
}

const serveLongDesc string = `Run the Jarvis HTTP API.

Endpoints:
  GET  /ping                 Health check
  POST /chat                 {"message": "..."} -> {"reply": "...", "source": "..."}
  GET  /knowledge?q=&k=      Knowledge snippets ranked against q
  GET  /history?limit=       Trailing conversation turns
  GET  /stats                Memory sizes
  /mcp                       MCP server (knowledge_search, qa_lookup)

Examples:
  jarvis serve
  jarvis serve --provider anthropic --listen :8080
  jarvis serve --storage sqlite --sqlite ./jarvis.db
  jarvis serve --watch
  jarvis serve --log-file ~/.jarvis/jarvis.log`

const serveShortDesc string = "Run the Jarvis API server"

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagProvider,
	config.FlagModel,
	config.FlagUpstream,
	config.FlagStorage,
	config.FlagStorageDir,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagWatch,
	config.FlagEventStream,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cfg, err := config.Resolve(cmder.configDir, cmd, serveFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmder.run(cmd.Context(), cfg)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDir, &cmder.storageDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddBoolFlag(cmd, config.Flags, config.FlagWatch, &cmder.watch)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &cmder.topic)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP server at /mcp")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	log, closeLog, err := newLogger(os.Stderr, c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := jarvis.New(ctx, jarvis.Options{
		Config:    cfg,
		ConfigDir: c.configDir,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.logger.Error("shutdown failed", "error", err)
		}
	}()

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		DisableMCP: c.noMCP,
	}, rt.Assistant, c.logger)
	if err != nil {
		return err
	}

	errChan := make(chan error, 2)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	go func() {
		if err := rt.Watch(ctx); err != nil {
			errChan <- fmt.Errorf("watcher error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		_ = server.Shutdown()
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return server.Shutdown()
	}
}

// newLogger writes pretty records to stderr and, when logFile is set, JSON
// records to that file too.
func newLogger(stderr io.Writer, debug bool, logFile string) (*slog.Logger, func() error, error) {
	pretty := logger.New(logger.WithDebug(debug), logger.WithPretty(true), logger.WithWriter(stderr))
	if logFile == "" {
		return pretty, func() error { return nil }, nil
	}

	f, err := logger.OpenFile(logFile)
	if err != nil {
		return nil, nil, err
	}
	file := logger.New(logger.WithDebug(debug), logger.WithJSON(true), logger.WithWriter(f))

	return logger.Multi(pretty, file), f.Close, nil
}
