package provider_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tinygen/model"
	"tinygen/provider"
)

// ExampleNewProvider demonstrates creating an Ollama provider using the factory.
func ExampleNewProvider() {
	cfg := provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "qwen2.5-coder",
	}

	p, err := provider.NewProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Provider created: %T\n", p)
	fmt.Printf("Model: %s\n", p.GetModel())
	// Output:
	// Provider created: *provider.OllamaProvider
	// Model: qwen2.5-coder
}

// ExampleMapProviderIDToType shows the accepted spellings of provider IDs.
func ExampleMapProviderIDToType() {
	for _, id := range []string{"Anthropic", "claude", "google", " openrouter "} {
		fmt.Println(provider.MapProviderIDToType(id))
	}
	// Output:
	// anthropic
	// anthropic
	// gemini
	// openrouter
}

// ExampleOllamaProvider_Chat demonstrates one pass: a system instruction
// followed by the conversation so far.
//
// Note: This example doesn't actually run because it requires a live Ollama server.
// It's provided for documentation purposes.
func ExampleOllamaProvider_Chat() {
	p, err := provider.NewOllamaProvider(provider.Config{Model: "llama3.1"})
	if err != nil {
		log.Fatal(err)
	}

	messages := []model.Message{
		model.SystemMessage("You are an expert programmer."),
		model.UserMessage("Summarize this code base."),
	}

	var reply strings.Builder
	err = p.Chat(context.Background(), messages, func(chunk string) error {
		reply.WriteString(chunk)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.String())
}
