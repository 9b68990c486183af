// Package provider implements the LLM backends behind model.Provider.
//
// tinygen drives a fixed multi-pass conversation against one backend per
// process. Each backend maps the provider-agnostic model.Message history to its
// SDK's request shape, streams the reply back through model.StreamCallback and
// makes exactly one attempt per call: SDK-level retries are disabled so a failed
// pass surfaces to the caller immediately.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - AnthropicProvider, OpenAIProvider, OpenRouterProvider, OllamaProvider and
//     GeminiProvider implement it
//   - NewProvider() creates a provider from Config
//
// # Usage
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeAnthropic,
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	}
//	p, err := provider.NewProvider(cfg)
//	if err != nil {
//	    // handle error
//	}
//	err = p.Chat(ctx, messages, callback)
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeGemini     ProviderType = "gemini"
)

// DefaultMaxTokens is the output budget of a single pass.
const DefaultMaxTokens = 4096

// Config holds provider-specific configuration.
type Config struct {
	Type        ProviderType
	BaseURL     string
	Model       string
	APIKey      string // Unused for Ollama
	Temperature float64
	MaxTokens   int // Zero means DefaultMaxTokens
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
