package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tinygen/model"
)

// GeminiProvider implements the Provider interface using the Google GenAI SDK.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGeminiProvider creates a new Gemini provider instance.
//
// An empty Model defaults to "gemini-2.5-pro". BaseURL is optional and only
// needed for proxies. Returns an error if the API key is missing.
func NewGeminiProvider(cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       modelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
	}, nil
}

// Chat implements Provider.Chat with streaming support.
func (p *GeminiProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	contents, system := ConvertToGeminiContents(messages)

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(p.temperature)),
		MaxOutputTokens:   int32(p.maxTokens),
	}

	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, genCfg) {
		if err != nil {
			return fmt.Errorf("Gemini streaming error: %w", err)
		}
		text := resp.Text()
		if text == "" || callback == nil {
			continue
		}
		if err := callback(text); err != nil {
			return err
		}
	}

	return nil
}

// ListModels implements Provider.ListModels.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	page, err := p.client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to list Gemini models: %w", err)
	}

	result := make([]model.ModelInfo, 0, len(page.Items))
	for _, m := range page.Items {
		result = append(result, model.ModelInfo{
			Name:     strings.TrimPrefix(m.Name, "models/"),
			Provider: string(ProviderTypeGemini),
		})
	}
	return result, nil
}

// GetModel implements Provider.GetModel.
func (p *GeminiProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *GeminiProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}
