// Package configcmder provides the config command for managing persistent
// jarvis configuration stored in the .jarvis/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent jarvis configuration.

Configuration is stored as config.toml in the .jarvis/ directory and provides
default values for command flags. CLI flags and JARVIS_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.dir, storage.sqlite_path,
  storage.postgres_dsn, storage.watch,
  model.provider, model.name, model.upstream,
  api.listen, assistant.name, assistant.owner,
  memory.top_k, memory.context_window,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  jarvis config set <key> <value>    Set a configuration value
  jarvis config get <key>            Get a configuration value
  jarvis config list                 List all configuration values

Examples:
  jarvis config set model.provider anthropic
  jarvis config set memory.top_k 5
  jarvis config get storage.provider
  jarvis config list`

const configShortDesc string = "Manage persistent jarvis configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func configDirFlag(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}
