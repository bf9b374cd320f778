package config

const (
	defaultStorageProvider = "file"
	defaultModelProvider   = "gemini"
	defaultAPIListen       = ":5000"

	defaultAssistantName  = "Jarvis"
	defaultAssistantOwner = "Aarush"

	defaultTopK          = 3
	defaultContextWindow = 6

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "jarvis.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		Model: ModelConfig{
			Provider: defaultModelProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Assistant: AssistantConfig{
			Name:  defaultAssistantName,
			Owner: defaultAssistantOwner,
		},
		Memory: MemoryConfig{
			TopK:          defaultTopK,
			ContextWindow: defaultContextWindow,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
