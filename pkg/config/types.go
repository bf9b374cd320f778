package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Config represents the persistent jarvis configuration stored as config.toml
// in the .jarvis/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Model       ModelConfig       `toml:"model"`
	API         APIConfig         `toml:"api"`
	Assistant   AssistantConfig   `toml:"assistant"`
	Memory      MemoryConfig      `toml:"memory"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// StorageConfig selects the collection store.
type StorageConfig struct {
	// Provider is one of file, sqlite, postgres, badger or inmemory.
	Provider string `toml:"provider,omitempty"`

	// Dir holds the JSON collection files (file provider) or the badger
	// database (badger provider). Empty means the .jarvis/ directory.
	Dir string `toml:"dir,omitempty"`

	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`

	// Watch reloads facts, biography and local knowledge when their files
	// change. Only honoured by the file provider.
	Watch bool `toml:"watch,omitempty"`
}

// ModelConfig holds language model settings. API keys are read from the
// environment, never from config.toml.
type ModelConfig struct {
	Provider string `toml:"provider,omitempty"`
	Name     string `toml:"name,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// AssistantConfig names the assistant and its owner in the context preamble.
type AssistantConfig struct {
	Name  string `toml:"name,omitempty"`
	Owner string `toml:"owner,omitempty"`
}

// MemoryConfig tunes retrieval and context assembly.
type MemoryConfig struct {
	TopK          uint `toml:"top_k,omitempty"`
	ContextWindow uint `toml:"context_window,omitempty"`
}

// EventStreamConfig configures turn event publishing.
type EventStreamConfig struct {
	// Provider is nop or kafka.
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma-separated list of host:port addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// BrokerList splits Brokers on commas, dropping blanks.
func (e EventStreamConfig) BrokerList() []string {
	var out []string
	for b := range strings.SplitSeq(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Accepted provider values per section.
var (
	StorageProviders     = []string{"file", "sqlite", "postgres", "badger", "inmemory"}
	ModelProviders       = []string{"gemini", "vertex", "anthropic", "openai", "ollama", "none"}
	EventStreamProviders = []string{"nop", "kafka"}
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// enumKey accepts only the listed values, compared case-insensitively and
// stored lowercase.
func enumKey(name string, field func(c *Config) *string, allowed ...string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if !slices.Contains(allowed, v) {
				return fmt.Errorf("invalid value for %s: %q (valid: %s)", name, v, strings.Join(allowed, ", "))
			}
			*field(c) = v
			return nil
		},
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     enumKey("storage.provider", func(c *Config) *string { return &c.Storage.Provider }, StorageProviders...),
	"storage.dir":          stringKey(func(c *Config) *string { return &c.Storage.Dir }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"storage.watch":        boolKey("storage.watch", func(c *Config) *bool { return &c.Storage.Watch }),

	"model.provider": enumKey("model.provider", func(c *Config) *string { return &c.Model.Provider }, ModelProviders...),
	"model.name":     stringKey(func(c *Config) *string { return &c.Model.Name }),
	"model.upstream": stringKey(func(c *Config) *string { return &c.Model.Upstream }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"assistant.name":  stringKey(func(c *Config) *string { return &c.Assistant.Name }),
	"assistant.owner": stringKey(func(c *Config) *string { return &c.Assistant.Owner }),

	"memory.top_k":          uintKey("memory.top_k", func(c *Config) *uint { return &c.Memory.TopK }),
	"memory.context_window": uintKey("memory.context_window", func(c *Config) *uint { return &c.Memory.ContextWindow }),

	"eventstream.provider": enumKey("eventstream.provider", func(c *Config) *string { return &c.EventStream.Provider }, EventStreamProviders...),
	"eventstream.brokers":  stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":    stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}

// orderedKeys is the stable listing order, matching the TOML section layout.
var orderedKeys = []string{
	"storage.provider",
	"storage.dir",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"storage.watch",
	"model.provider",
	"model.name",
	"model.upstream",
	"api.listen",
	"assistant.name",
	"assistant.owner",
	"memory.top_k",
	"memory.context_window",
	"eventstream.provider",
	"eventstream.brokers",
	"eventstream.topic",
}
