package config

import "tinygen/provider"

func Default() *Config {
	return &Config{
		DataDirectory: "~/.local/share/tinygen",
		Provider: ProviderSection{
			Type:      string(provider.ProviderTypeAnthropic),
			MaxTokens: provider.DefaultMaxTokens,
		},
		Server: ServerSection{
			Addr: ":8000",
		},
		Clone: CloneSection{
			Depth: 1,
		},
		Records: RecordsSection{
			Enabled: true,
			Limit:   20,
		},
	}
}

func GenerateConfigTemplate() string {
	return `# tinygen Configuration
# Location: ~/.config/tinygen/settings.toml
# This file uses TOML format: https://toml.io

# Directory for the analysis database and debug log
data_directory = "~/.local/share/tinygen"

[provider]
# One of: anthropic, openai, openrouter, ollama, gemini
type = "anthropic"

# Empty uses the provider default
model = ""

# Empty uses the provider default (Ollama: http://localhost:11434)
base_url = ""

# Prefer ANTHROPIC_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY,
# GEMINI_API_KEY or TINYGEN_API_KEY over storing the key here
api_key = ""

temperature = 0.0
max_tokens = 4096

[server]
addr = ":8000"

[clone]
# Commits of history to fetch; 0 clones everything
depth = 1

# Token for private HTTPS repositories (or set GITHUB_TOKEN)
token = ""

# Parent of per-request clone directories; empty uses the cache directory
work_dir = ""

[records]
# Keep a history of analyses in <data_directory>/analyses.db
enabled = true
limit = 20
`
}
