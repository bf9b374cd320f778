// Package initcmder provides the init command for initializing a local .jarvis
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/jarvis/pkg/cliui"
	"github.com/papercomputeco/jarvis/pkg/config"
)

const (
	dirName = ".jarvis"

	fetchTimeout = 10 * time.Second
	maxRemoteCfg = 1 << 20
)

const initLongDesc string = `Initialize a new .jarvis/ directory in the current working directory.

Creates a local .jarvis/ directory that takes precedence over the default
~/.jarvis/ directory for configuration and memory collections, then writes
a config.toml with default values.

An existing config.toml is left untouched unless --preset is given. The
preset is either a model provider name (gemini, anthropic, openai, ollama)
or an http(s) URL pointing at a config.toml to download.

Examples:
  jarvis init
  jarvis init --preset anthropic
  jarvis init --preset https://example.com/jarvis/config.toml`

const initShortDesc string = "Initialize a local .jarvis/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Model preset name or URL of a config.toml ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(ctx context.Context, w io.Writer, preset string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// A bad preset leaves nothing on disk.
	var cfg *config.Config
	if preset != "" {
		cfg, err = resolvePreset(ctx, preset)
		if err != nil {
			return err
		}
	}

	dir := filepath.Join(cwd, dirName)
	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("creating .jarvis directory: %w", err)
	}

	if cfg == nil {
		if _, err := os.Stat(cfger.GetTarget()); err == nil {
			fmt.Fprintf(w, "Already initialized: %s\n", dir)
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
		cfg = config.NewDefaultConfig()
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Initialized .jarvis directory: %s\n", cliui.SuccessMark, dir)
	fmt.Fprintf(w, "    %s %s\n", cliui.KeyStyle.Render("model.provider"), cliui.ValueStyle.Render(cfg.Model.Provider))
	return nil
}

func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	if strings.HasPrefix(preset, "http://") || strings.HasPrefix(preset, "https://") {
		return fetchPreset(ctx, preset)
	}
	return config.PresetConfig(preset)
}

func fetchPreset(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteCfg))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
