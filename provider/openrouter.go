package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"tinygen/model"
)

// OpenRouterProvider implements the Provider interface using OpenAI's official Go SDK.
// It connects to OpenRouter's API which is OpenAI-compatible.
type OpenRouterProvider struct {
	client      openai.Client
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Defaults:
//   - BaseURL: "https://openrouter.ai/api/v1"
//   - Model: "anthropic/claude-sonnet-4.5"
//
// Returns an error if the API key is missing.
func NewOpenRouterProvider(cfg Config) (*OpenRouterProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "anthropic/claude-sonnet-4.5"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)

	return &OpenRouterProvider{
		client:      client,
		model:       modelName,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
	}, nil
}

// Chat implements Provider.Chat with streaming support.
// OpenRouter still expects the legacy max_tokens field.
func (p *OpenRouterProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages:    ConvertToOpenAIMessages(messages),
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(p.temperature),
		MaxTokens:   openai.Int(int64(p.maxTokens)),
	}

	if err := streamChatCompletion(ctx, p.client, params, callback); err != nil {
		return fmt.Errorf("OpenRouter streaming error: %w", err)
	}
	return nil
}

// ListModels implements Provider.ListModels.
func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	models, err := listOpenAIModels(ctx, p.client, ProviderTypeOpenRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to list OpenRouter models: %w", err)
	}
	return models, nil
}

// GetModel implements Provider.GetModel.
// Returns the full name with vendor prefix (e.g., "qwen/qwen3-coder:free").
func (p *OpenRouterProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OpenRouterProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenRouterProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenRouter ping failed: %w", err)
	}
	return nil
}
