package provider

// Supported provider type constants
const (
	Gemini    = "gemini"
	Vertex    = "vertex"
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Ollama    = "ollama"
	None      = "none"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini, Vertex, Anthropic, OpenAI, Ollama, None}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(providerType string) string {
	switch providerType {
	case Gemini, Vertex:
		return "gemini-pro-latest"
	case Anthropic:
		return "claude-sonnet-4-5"
	case OpenAI:
		return "gpt-4o-mini"
	case Ollama:
		return "llama3.2"
	default:
		return ""
	}
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func APIKeyEnv(providerType string) string {
	switch providerType {
	case Gemini:
		return "GEMINI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	case OpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
