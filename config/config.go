package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"tinygen/provider"
)

type ProviderSection struct {
	Type        string  `toml:"type"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type ServerSection struct {
	Addr string `toml:"addr"`
}

type CloneSection struct {
	Depth   int    `toml:"depth"`
	Token   string `toml:"token"`
	WorkDir string `toml:"work_dir"`
}

type RecordsSection struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"`
}

type Config struct {
	DataDirectory string          `toml:"data_directory"`
	Provider      ProviderSection `toml:"provider"`
	Server        ServerSection   `toml:"server"`
	Clone         CloneSection    `toml:"clone"`
	Records       RecordsSection  `toml:"records"`

	// Set from the environment or the --debug flag, never from the file.
	Debug bool `toml:"-"`
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// CloneRoot is the parent directory of per-request clone directories.
func (c *Config) CloneRoot() string {
	if c.Clone.WorkDir != "" {
		return ExpandPath(c.Clone.WorkDir)
	}
	return GetTempDir()
}

// ProviderConfig converts the [provider] section for provider.NewProvider.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		Type:        provider.MapProviderIDToType(c.Provider.Type),
		BaseURL:     c.Provider.BaseURL,
		Model:       c.Provider.Model,
		APIKey:      c.Provider.APIKey,
		Temperature: c.Provider.Temperature,
		MaxTokens:   c.Provider.MaxTokens,
	}
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("TINYGEN_PROVIDER"); p != "" {
		c.Provider.Type = p
	}
	if m := os.Getenv("TINYGEN_MODEL"); m != "" {
		c.Provider.Model = m
	}
	if u := os.Getenv("TINYGEN_BASE_URL"); u != "" {
		c.Provider.BaseURL = u
	}
	if addr := os.Getenv("TINYGEN_ADDR"); addr != "" {
		c.Server.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if dataDir := os.Getenv("TINYGEN_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && c.Clone.Token == "" {
		c.Clone.Token = token
	}
	if CheckDebug() {
		c.Debug = true
	}
	c.Provider.APIKey = resolveAPIKey(c.Provider.Type, c.Provider.APIKey)
}

func (c *Config) validate() error {
	switch provider.MapProviderIDToType(c.Provider.Type) {
	case provider.ProviderTypeOllama, provider.ProviderTypeOpenRouter, provider.ProviderTypeOpenAI,
		provider.ProviderTypeAnthropic, provider.ProviderTypeGemini:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Type)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider temperature %v out of range [0, 2]", c.Provider.Temperature)
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("provider max_tokens must not be negative")
	}
	if c.Clone.Depth < 0 {
		return fmt.Errorf("clone depth must not be negative")
	}
	return nil
}

func CheckDebug() bool {
	debug := strings.ToLower(os.Getenv("TINYGEN_DEBUG"))
	if debug == "true" {
		return true
	}
	n, err := strconv.Atoi(debug)
	return err == nil && n > 0
}

// Load reads the settings file at its default location.
func Load() (*Config, error) {
	return LoadFrom(GetSettingsFilePath())
}

// LoadFrom reads settings from path, creating it from the template when it
// does not exist, then applies environment overrides and prepares the data
// directory.
func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	dataDir := cfg.DataDir()
	if err := EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
