package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/jarvis/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the JARVIS_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (JARVIS_API_LISTEN, JARVIS_MODEL_PROVIDER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper builds a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Provider:    v.GetString("storage.provider"),
			Dir:         v.GetString("storage.dir"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			Watch:       v.GetBool("storage.watch"),
		},
		Model: ModelConfig{
			Provider: v.GetString("model.provider"),
			Name:     v.GetString("model.name"),
			Upstream: v.GetString("model.upstream"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Assistant: AssistantConfig{
			Name:  v.GetString("assistant.name"),
			Owner: v.GetString("assistant.owner"),
		},
		Memory: MemoryConfig{
			TopK:          v.GetUint("memory.top_k"),
			ContextWindow: v.GetUint("memory.context_window"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetString("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.watch", d.Storage.Watch)

	// Model
	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.upstream", d.Model.Upstream)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Assistant
	v.SetDefault("assistant.name", d.Assistant.Name)
	v.SetDefault("assistant.owner", d.Assistant.Owner)

	// Memory
	v.SetDefault("memory.top_k", d.Memory.TopK)
	v.SetDefault("memory.context_window", d.Memory.ContextWindow)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// Resolve loads the configuration for cmd: defaults, config.toml in
// configDir, JARVIS_* environment variables, then the flags in keys.
func Resolve(configDir string, cmd *cobra.Command, keys []string) (*Config, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}
	BindRegisteredFlags(v, cmd, Flags, keys)
	return FromViper(v), nil
}
