package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"tinygen/provider"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// APIKeyEnvVar returns the conventional API key variable of a provider.
func APIKeyEnvVar(providerID string) string {
	switch provider.MapProviderIDToType(providerID) {
	case provider.ProviderTypeAnthropic:
		return "ANTHROPIC_API_KEY"
	case provider.ProviderTypeOpenAI:
		return "OPENAI_API_KEY"
	case provider.ProviderTypeOpenRouter:
		return "OPENROUTER_API_KEY"
	case provider.ProviderTypeGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// resolveAPIKey picks TINYGEN_API_KEY, then the configured key, then the
// provider's conventional variable.
func resolveAPIKey(providerID, configured string) string {
	if key := os.Getenv("TINYGEN_API_KEY"); key != "" {
		return key
	}
	if configured != "" {
		return configured
	}
	if name := APIKeyEnvVar(providerID); name != "" {
		return os.Getenv(name)
	}
	return ""
}
