package model

import "context"

// Provider abstracts LLM provider implementations (Anthropic, OpenAI, OpenRouter,
// Ollama, Gemini) using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and consumers such as the
// analyzer depend on the interface without importing the provider package.
type Provider interface {
	// Chat sends messages and streams the reply back via callback.
	// A leading system message carries the instruction for this call and is
	// mapped to the provider's native system field.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// ListModels returns available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of a streamed response.
// Returning an error aborts the stream.
type StreamCallback func(chunk string) error

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name     string
	Size     int64
	Provider string // Provider ID: "ollama", "openai", "openrouter", "anthropic", "gemini"
}
