package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --provider
// on both "jarvis serve" and "jarvis chat").
type Flag struct {
	// Name is the long flag name (e.g. "provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "model.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPIListen      = "api-listen"
	FlagProvider       = "provider"
	FlagModel          = "model"
	FlagUpstream       = "upstream"
	FlagStorage        = "storage"
	FlagStorageDir     = "storage-dir"
	FlagSQLite         = "sqlite"
	FlagPostgres       = "postgres"
	FlagWatch          = "watch"
	FlagTopK           = "top-k"
	FlagEventStream    = "eventstream"
	FlagEventBrokers   = "eventstream-brokers"
	FlagEventTopic     = "eventstream-topic"
	FlagAssistantName  = "name"
	FlagAssistantOwner = "owner"
)

// Flags is the registry shared by every jarvis command.
var Flags = FlagSet{
	FlagAPIListen:      {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagProvider:       {Name: "provider", Shorthand: "p", ViperKey: "model.provider", Description: "Model provider (gemini, vertex, anthropic, openai, ollama, none)"},
	FlagModel:          {Name: "model", Shorthand: "m", ViperKey: "model.name", Description: "Model name (defaults per provider)"},
	FlagUpstream:       {Name: "upstream", ViperKey: "model.upstream", Description: "Model API base URL override"},
	FlagStorage:        {Name: "storage", ViperKey: "storage.provider", Description: "Collection store (file, sqlite, postgres, badger, inmemory)"},
	FlagStorageDir:     {Name: "storage-dir", ViperKey: "storage.dir", Description: "Directory for file or badger collections"},
	FlagSQLite:         {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database"},
	FlagPostgres:       {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagWatch:          {Name: "watch", ViperKey: "storage.watch", Description: "Reload memory inputs when their files change"},
	FlagTopK:           {Name: "top-k", Shorthand: "k", ViperKey: "memory.top_k", Description: "Number of knowledge snippets to retrieve"},
	FlagEventStream:    {Name: "eventstream", ViperKey: "eventstream.provider", Description: "Turn event publisher (nop, kafka)"},
	FlagEventBrokers:   {Name: "eventstream-brokers", ViperKey: "eventstream.brokers", Description: "Comma-separated Kafka brokers"},
	FlagEventTopic:     {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for turn events"},
	FlagAssistantName:  {Name: "name", ViperKey: "assistant.name", Description: "Assistant name"},
	FlagAssistantOwner: {Name: "owner", ViperKey: "assistant.owner", Description: "Name of the person the assistant serves"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
