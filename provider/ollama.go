package provider

import (
	"context"
	"fmt"

	"tinygen/model"
	"tinygen/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// Ollama accepts a system role inline, so the stage instruction travels as the
// first message of the request.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// An empty BaseURL defaults to "http://localhost:11434" and an empty Model to
// "llama3.1:latest". Returns an error if the BaseURL is invalid.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	client, err := ollama.NewClient(cfg.BaseURL, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	client.SetSampling(cfg.Temperature, cfg.maxTokens())

	return &OllamaProvider{
		client: client,
	}, nil
}

// Chat implements Provider.Chat by converting messages and forwarding chunks.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	ollamaMessages := ConvertToOllamaMessages(messages)

	ollamaCallback := func(chunk string) error {
		if callback == nil {
			return nil
		}
		return callback(chunk)
	}

	if err := p.client.Chat(ctx, ollamaMessages, ollamaCallback); err != nil {
		return fmt.Errorf("Ollama streaming error: %w", err)
	}
	return nil
}

// ListModels implements Provider.ListModels.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.ModelInfo, len(models))
	for i, m := range models {
		result[i] = model.ModelInfo{
			Name:     m.Name,
			Size:     m.Size,
			Provider: string(ProviderTypeOllama),
		}
	}
	return result, nil
}

// GetModel implements Provider.GetModel (direct passthrough).
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel (direct passthrough).
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping (direct passthrough).
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
